// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package gate decides which requests must carry a valid session and
// enforces that decision as HTTP middleware.
//
// The exemption policy is fail closed: a path requires authentication
// unless it matches a configured exemption pattern. The middleware
// resolves the session cookie to a user and injects it into the
// request context; everything downstream reads the user from there.
package gate
