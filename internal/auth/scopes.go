package auth

import (
	"net/http"
	"slices"
)

const (
	ScopePodcastsRead  = "podcasts:read"
	ScopePodcastsWrite = "podcasts:write"
	ScopeAll           = "*"
)

// HasScope treats a token without scopes as read-only. Write implies read.
func (p *Principal) HasScope(scope string) bool {
	if p == nil {
		return false
	}
	if len(p.Scopes) == 0 {
		return scope == ScopePodcastsRead
	}
	if slices.Contains(p.Scopes, ScopeAll) || slices.Contains(p.Scopes, scope) {
		return true
	}
	return scope == ScopePodcastsRead && slices.Contains(p.Scopes, ScopePodcastsWrite)
}

func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}
			if !p.HasScope(scope) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
