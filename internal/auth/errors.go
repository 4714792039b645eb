// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import "errors"

// Sentinel errors matched with errors.Is at the service and HTTP
// boundaries. Repositories wrap them with oops codes for context.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUser is returned when registering an email that is
	// already taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so callers cannot distinguish the two cases.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidInput is returned when a required argument is missing or
	// malformed. Callers map it to a 400 response.
	ErrInvalidInput = errors.New("invalid input")
)
