package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// APIKeys is a fixed set of keys loaded from configuration. Only hashes
// are kept in memory.
type APIKeys struct {
	header string
	hashes []string
}

func NewAPIKeys(header string, keys []string) *APIKeys {
	if header == "" {
		header = "X-API-Key"
	}
	a := &APIKeys{header: header}
	for _, k := range keys {
		a.hashes = append(a.hashes, HashAPIKey(k))
	}
	return a
}

func (a *APIKeys) Header() string { return a.header }

// Match compares against every key so timing does not reveal which one
// matched.
func (a *APIKeys) Match(key string) (*Principal, bool) {
	hash := HashAPIKey(key)
	matched := -1
	for i, h := range a.hashes {
		if subtle.ConstantTimeCompare([]byte(h), []byte(hash)) == 1 {
			matched = i
		}
	}
	if matched < 0 {
		return nil, false
	}
	return &Principal{Subject: "api-key:" + hash[:8], Scopes: []string{ScopeAll}, Method: "api_key"}, true
}

func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
