// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package auth provides the credential and session authentication core
// for Gatehouse.
//
// # Domain Types
//
// Domain types (User, Session, PasswordReset) should be created using
// their respective constructors:
//   - NewUser - creates a User with a validated email and password hash
//   - NewSession - creates a Session with a validated user and expiry
//   - NewPasswordReset - creates a PasswordReset with a validated user and expiry
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - registration, login, session issuance and revocation
//   - PasswordResetService - reset token issuance and consumption
//
// Services are created with New*Service constructors that validate
// dependencies.
//
// # Lookup failures
//
// Repositories report a missing record by wrapping ErrNotFound; services
// match on it with errors.Is and convert the miss into a caller-visible
// result (ErrInvalidCredentials, a failed logout) instead of letting
// storage errors escape the package boundary.
package auth
