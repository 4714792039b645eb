// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package gate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/gate"
)

const testCookieName = "_gatehouse_session"

// stubResolver resolves a single known token.
type stubResolver struct {
	token string
	user  *auth.User
}

func (s *stubResolver) CurrentUser(_ context.Context, token string) (*auth.User, error) {
	if token == s.token {
		return s.user, nil
	}
	return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
}

func newMiddlewareHandler(t *testing.T, patterns []string, resolver gate.UserResolver) http.Handler {
	t.Helper()

	policy, err := gate.NewExemptionPolicy(patterns)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := gate.UserFromContext(r.Context()); ok {
			w.Header().Set("X-User-Email", user.Email)
		}
		w.WriteHeader(http.StatusOK)
	})
	return gate.Middleware(policy, resolver, testCookieName, nil)(next)
}

func TestMiddleware(t *testing.T) {
	user := &auth.User{ID: ulid.Make(), Email: "bob@example.com"}
	resolver := &stubResolver{token: "valid-token", user: user}

	t.Run("exempt path passes through anonymously", func(t *testing.T) {
		handler := newMiddlewareHandler(t, []string{"/status"}, resolver)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-User-Email"))
	})

	t.Run("protected path without cookie is forbidden", func(t *testing.T) {
		handler := newMiddlewareHandler(t, []string{"/status"}, resolver)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())
	})

	t.Run("protected path with unknown token is forbidden", func(t *testing.T) {
		handler := newMiddlewareHandler(t, []string{"/status"}, resolver)

		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "bogus"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("valid session injects user into context", func(t *testing.T) {
		handler := newMiddlewareHandler(t, []string{"/status"}, resolver)

		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "valid-token"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "bob@example.com", rec.Header().Get("X-User-Email"))
	})

	t.Run("empty exemption list protects everything", func(t *testing.T) {
		handler := newMiddlewareHandler(t, nil, resolver)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUserFromContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		user := &auth.User{ID: ulid.Make(), Email: "bob@example.com"}
		ctx := gate.ContextWithUser(context.Background(), user)

		got, ok := gate.UserFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, user, got)
	})

	t.Run("absent user", func(t *testing.T) {
		_, ok := gate.UserFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("nil user is not ok", func(t *testing.T) {
		ctx := gate.ContextWithUser(context.Background(), nil)
		_, ok := gate.UserFromContext(ctx)
		assert.False(t, ok)
	})
}
