// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package gate

import (
	"context"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// contextKey is a type-safe key for request context values.
type contextKey string

// userContextKey carries the authenticated user through the request
// context.
var userContextKey = contextKey("user")

// ContextWithUser injects an authenticated user into the context.
// Used by the middleware and by tests that bypass it.
func ContextWithUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user from the request
// context. Only valid for requests that passed the middleware.
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	user, ok := ctx.Value(userContextKey).(*auth.User)
	return user, ok && user != nil
}
