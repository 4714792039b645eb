// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// PasswordResetService handles password reset operations.
type PasswordResetService struct {
	users  UserRepository
	resets PasswordResetRepository
	hasher PasswordHasher
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(users UserRepository, resets PasswordResetRepository, hasher PasswordHasher) (*PasswordResetService, error) {
	if users == nil {
		return nil, oops.Code("RESET_NIL_DEPENDENCY").Errorf("users repository is required")
	}
	if resets == nil {
		return nil, oops.Code("RESET_NIL_DEPENDENCY").Errorf("resets repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("RESET_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	return &PasswordResetService{
		users:  users,
		resets: resets,
		hasher: hasher,
	}, nil
}

// RequestReset issues a reset token for the account with the given email
// and returns the plaintext token for delivery (sending email is NOT this
// service's job). An unknown email fails with ErrNotFound. Any token
// previously issued for the user is superseded: exactly one reset token
// is live per account.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code("RESET_UNKNOWN_EMAIL").Wrap(ErrNotFound)
		}
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, hash, err := GenerateResetToken()
	if err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Wrap(err)
	}

	reset, err := NewPasswordReset(user.ID, hash, time.Now().Add(ResetTokenExpiry))
	if err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "create password reset").
			Wrap(err)
	}

	// Supersede any earlier token before storing the new one.
	if err := s.resets.DeleteByUser(ctx, user.ID); err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "delete prior resets").
			Wrap(err)
	}

	if err := s.resets.Create(ctx, reset); err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "persist reset").
			Wrap(err)
	}

	return token, nil
}

// ValidateToken validates a reset token and returns the associated user ID.
// Returns an error if the token is invalid, expired, or not found.
func (s *PasswordResetService) ValidateToken(ctx context.Context, token string) (ulid.ULID, error) {
	if token == "" {
		return ulid.ULID{}, oops.Code("RESET_TOKEN_EMPTY").Wrap(ErrInvalidInput)
	}

	reset, err := s.resets.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ulid.ULID{}, oops.Code("RESET_TOKEN_INVALID").Wrap(ErrNotFound)
		}
		return ulid.ULID{}, oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "get reset by token hash").
			Wrap(err)
	}

	if reset.IsExpired() {
		return ulid.ULID{}, oops.Code("RESET_TOKEN_EXPIRED").Wrap(ErrNotFound)
	}

	return reset.UserID, nil
}

// ResetPassword sets a new password using a valid reset token. The token
// is single-use: all reset tokens for the user are cleared once the
// password is updated.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return oops.Code("RESET_PASSWORD_EMPTY").Wrap(ErrInvalidInput)
	}

	userID, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	// Cleanup of consumed tokens - the password update already succeeded,
	// so a failure here must not fail the operation.
	//nolint:errcheck // Cleanup failure is acceptable; password was already updated
	s.resets.DeleteByUser(ctx, userID)

	return nil
}
