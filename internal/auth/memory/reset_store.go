// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// ResetStore implements auth.PasswordResetRepository with a
// mutex-guarded map keyed by token hash.
type ResetStore struct {
	mu     sync.RWMutex
	byHash map[string]auth.PasswordReset
}

// NewResetStore creates an empty ResetStore.
func NewResetStore() *ResetStore {
	return &ResetStore{byHash: make(map[string]auth.PasswordReset)}
}

// Create stores a new password reset record.
func (s *ResetStore) Create(_ context.Context, reset *auth.PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byHash[reset.TokenHash]; exists {
		return oops.Code("RESET_CREATE_FAILED").Errorf("duplicate token hash")
	}
	s.byHash[reset.TokenHash] = *reset
	return nil
}

// GetByUser retrieves the reset record for a user, if any.
func (s *ResetStore) GetByUser(_ context.Context, userID ulid.ULID) (*auth.PasswordReset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, reset := range s.byHash {
		if reset.UserID.Compare(userID) == 0 {
			copied := reset
			return &copied, nil
		}
	}
	return nil, oops.Code("RESET_NOT_FOUND").
		With("user_id", userID.String()).
		Wrap(auth.ErrNotFound)
}

// GetByTokenHash retrieves a reset record by its token hash.
func (s *ResetStore) GetByTokenHash(_ context.Context, tokenHash string) (*auth.PasswordReset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reset, ok := s.byHash[tokenHash]
	if !ok {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return &reset, nil
}

// Delete removes a reset record by ID.
func (s *ResetStore) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, reset := range s.byHash {
		if reset.ID.Compare(id) == 0 {
			delete(s.byHash, hash)
			return nil
		}
	}
	return oops.Code("RESET_NOT_FOUND").
		With("reset_id", id.String()).
		Wrap(auth.ErrNotFound)
}

// DeleteByUser removes all reset records for a user.
func (s *ResetStore) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, reset := range s.byHash {
		if reset.UserID.Compare(userID) == 0 {
			delete(s.byHash, hash)
		}
	}
	return nil
}

// DeleteExpired removes all expired reset records and returns the count.
func (s *ResetStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var deleted int64
	for hash, reset := range s.byHash {
		if now.After(reset.ExpiresAt) {
			delete(s.byHash, hash)
			deleted++
		}
	}
	return deleted, nil
}

var _ auth.PasswordResetRepository = (*ResetStore)(nil)
