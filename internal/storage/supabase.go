package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseStorage talks to the Supabase Storage REST API with a service
// key. URL returns a public link, or a signed one when signExpiry is set.
type SupabaseStorage struct {
	baseURL    string
	serviceKey string
	bucket     string
	signExpiry time.Duration
	httpClient *http.Client
}

func NewSupabaseStorage(supabaseURL, serviceKey, bucket string, signExpiry time.Duration) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL:    strings.TrimRight(supabaseURL, "/") + "/storage/v1",
		serviceKey: serviceKey,
		bucket:     bucket,
		signExpiry: signExpiry,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// do sends one request for key under route ("object", "object/sign").
// The caller owns the body of a successful response.
func (s *SupabaseStorage) do(ctx context.Context, method, route, key string, body io.Reader, size int64, header http.Header) (*http.Response, error) {
	target := fmt.Sprintf("%s/%s/%s/%s", s.baseURL, route, s.bucket, key)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if body != nil && size >= 0 {
		req.ContentLength = size
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	// Supabase reports a missing object as 400 with a 404 inside the body.
	if resp.StatusCode == http.StatusNotFound || bytes.Contains(msg, []byte(`"statusCode":"404"`)) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func (s *SupabaseStorage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	header := http.Header{}
	header.Set("Content-Type", contentType)
	// Retried jobs reuse their key.
	header.Set("x-upsert", "true")
	resp, err := s.do(ctx, http.MethodPost, "object", key, data, size, header)
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	resp.Body.Close()
	return nil
}

func (s *SupabaseStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, "object", key, nil, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return resp.Body, nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, key string) error {
	resp, err := s.do(ctx, http.MethodDelete, "object", key, nil, 0, nil)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	resp.Body.Close()
	return nil
}

func (s *SupabaseStorage) URL(ctx context.Context, key string) (string, error) {
	if s.signExpiry <= 0 {
		return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, key), nil
	}

	body, _ := json.Marshal(map[string]int{"expiresIn": int(s.signExpiry.Seconds())})
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	resp, err := s.do(ctx, http.MethodPost, "object/sign", key, bytes.NewReader(body), int64(len(body)), header)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	defer resp.Body.Close()

	var signed struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil || signed.SignedURL == "" {
		return "", fmt.Errorf("sign %s: malformed response", key)
	}
	// The returned path is relative to the storage API root.
	return s.baseURL + "/" + strings.TrimLeft(signed.SignedURL, "/"), nil
}
