// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides registration, login, and session operations.
type Service struct {
	users      UserRepository
	sessions   SessionRepository
	hasher     PasswordHasher
	logger     *slog.Logger
	sessionTTL time.Duration
}

// NewService creates a new Service with the default logger.
func NewService(users UserRepository, sessions SessionRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(users, sessions, hasher, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, sessions SessionRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("logger is required")
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		logger:     logger,
		sessionTTL: SessionTokenExpiry,
	}, nil
}

// SetSessionTTL overrides the default session lifetime. Non-positive
// values keep the default. Call during wiring, before serving traffic.
func (s *Service) SetSessionTTL(ttl time.Duration) {
	if ttl > 0 {
		s.sessionTTL = ttl
	}
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a new user with a freshly hashed password.
// An email that is already taken fails with ErrDuplicateUser.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, oops.Code("AUTH_DUPLICATE_USER").
				With("email", email).
				Wrap(ErrDuplicateUser)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	s.logger.Info("user registered", "user_id", user.ID.String())
	return user, nil
}

// UserByEmail looks up a user by their exact email address.
// Returns ErrNotFound when no account exists for the email.
func (s *Service) UserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_USER_NOT_FOUND").
				With("email", email).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	return user, nil
}

// ValidLogin reports whether the email/password pair is valid. Unknown
// emails verify against a dummy hash so the lookup miss does not leak
// through timing, and storage misses never surface as errors.
func (s *Service) ValidLogin(ctx context.Context, email, password string) bool {
	user, err := s.users.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	exists := false
	if err == nil {
		targetHash = user.PasswordHash
		exists = true
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Error("login lookup failed", "error", err)
		return false
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		return false
	}
	return exists && valid
}

// Login authenticates a user and creates a session.
// Returns the session and the plaintext token to hand to the client.
// Unknown email and wrong password both fail with ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, string, error) {
	user, lookupErr := s.users.GetByEmail(ctx, email)

	// Determine which hash to verify against (real or dummy for timing attack prevention)
	targetHash := dummyPasswordHash
	exists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		exists = true
	}

	// Always verify the password to keep response time consistent
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !exists {
			return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !exists || !valid {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	// Transparently re-hash if the stored credential predates argon2id.
	// Login succeeds even if the upgrade write fails.
	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
				s.logger.Warn("password hash upgrade failed", "user_id", user.ID.String(), "error", err)
			}
		}
	}

	session, token, err := s.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID.String(), "session_id", session.ID.String())
	return session, token, nil
}

// CreateSession issues a fresh session for the user and returns the
// session plus the plaintext token. A zero user ID fails with
// ErrInvalidInput. Existing sessions for the user stay live.
func (s *Service) CreateSession(ctx context.Context, userID ulid.ULID) (*Session, string, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, "", oops.Code("SESSION_INVALID_USER").Wrap(ErrInvalidInput)
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(userID, tokenHash, time.Now().Add(s.sessionTTL))
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return session, token, nil
}

// CurrentUser resolves a session token to its user. This is a pure read
// path apart from the last-seen timestamp; a missing token, unknown or
// expired session, or vanished user record all fail with ErrNotFound.
func (s *Service) CurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, oops.Code("SESSION_TOKEN_EMPTY").Wrap(ErrNotFound)
	}

	session, err := s.validSession(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_USER_GONE").
				With("session_id", session.ID.String()).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	// Update last seen timestamp (non-blocking, ignore errors)
	_ = s.sessions.UpdateLastSeen(ctx, session.ID, time.Now()) //nolint:errcheck // Best effort, resolution succeeds regardless

	return user, nil
}

// Logout revokes the session named by the token. An absent or unknown
// token fails with ErrNotFound; revoking an already-gone session is a
// reported failure, not an internal error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return oops.Code("SESSION_TOKEN_EMPTY").Wrap(ErrNotFound)
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost the race with a concurrent logout; the session is gone either way.
			return oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			With("session_id", session.ID.String()).
			Wrap(err)
	}

	s.logger.Info("user logged out", "session_id", session.ID.String())
	return nil
}

// RevokeAll removes every live session for the user.
func (s *Service) RevokeAll(ctx context.Context, userID ulid.ULID) error {
	if userID.Compare(ulid.ULID{}) == 0 {
		return oops.Code("SESSION_INVALID_USER").Wrap(ErrInvalidInput)
	}
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return oops.Code("SESSION_REVOKE_ALL_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// validSession looks up a live session by its plaintext token.
func (s *Service) validSession(ctx context.Context, token string) (*Session, error) {
	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").Wrap(ErrNotFound)
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpired() {
		return nil, oops.Code("SESSION_EXPIRED").Wrap(ErrNotFound)
	}

	return session, nil
}
