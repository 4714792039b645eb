// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package gate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// UserResolver resolves a session token to its user. Defined as the
// subset of auth.Service the middleware needs.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*auth.User, error)
}

// Middleware returns a handler wrapper that enforces the exemption
// policy. Exempt paths pass through anonymously. All other paths must
// present a session cookie that resolves to a user; the user is
// injected into the request context. Requests without a valid session
// get 403.
func Middleware(policy *ExemptionPolicy, resolver UserResolver, cookieName string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !policy.RequiresAuth(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := SessionCookie(r, cookieName)
			if token == "" {
				writeForbidden(w)
				return
			}

			user, err := resolver.CurrentUser(r.Context(), token)
			if err != nil {
				if logger != nil {
					logger.Debug("session resolution failed",
						"path", r.URL.Path,
						"error", err)
				}
				writeForbidden(w)
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeForbidden writes the 403 error body.
func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Forbidden"})
}
