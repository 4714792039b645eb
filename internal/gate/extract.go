// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package gate

import "net/http"

// AuthorizationHeader returns the raw Authorization header value, or ""
// when absent. No scheme parsing happens here; callers interpret the
// value.
func AuthorizationHeader(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("Authorization")
}

// SessionCookie returns the value of the session cookie named by
// cookieName, or "" when absent. The cookie name comes from
// configuration; it is never hardcoded here.
func SessionCookie(r *http.Request, cookieName string) string {
	if r == nil || cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
