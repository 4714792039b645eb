// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package memory provides in-memory repository implementations, used in
// dev mode and as a fast backing store for tests. All operations are
// safe for concurrent use; a session is always observed fully present
// or fully gone.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// SessionStore implements auth.SessionRepository with a mutex-guarded map.
// It is an explicitly owned store object constructed at startup and
// injected into the service, not package-level shared state.
type SessionStore struct {
	mu     sync.RWMutex
	byHash map[string]auth.Session    // tokenHash → session
	hashes map[ulid.ULID]string       // session ID → tokenHash
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		byHash: make(map[string]auth.Session),
		hashes: make(map[ulid.ULID]string),
	}
}

// Create stores a new session. A duplicate token hash or session ID is
// rejected rather than silently overwritten.
func (s *SessionStore) Create(_ context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byHash[session.TokenHash]; exists {
		return oops.Code("SESSION_CREATE_FAILED").Errorf("duplicate token hash")
	}
	if _, exists := s.hashes[session.ID]; exists {
		return oops.Code("SESSION_CREATE_FAILED").
			With("session_id", session.ID.String()).
			Errorf("duplicate session ID")
	}

	s.byHash[session.TokenHash] = *session
	s.hashes[session.ID] = session.TokenHash
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (s *SessionStore) GetByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.byHash[tokenHash]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return &session, nil
}

// GetByUser retrieves all sessions for a user, newest first.
func (s *SessionStore) GetByUser(_ context.Context, userID ulid.ULID) ([]*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []*auth.Session
	for _, session := range s.byHash {
		if session.UserID.Compare(userID) == 0 {
			copied := session
			sessions = append(sessions, &copied)
		}
	}
	return sessions, nil
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (s *SessionStore) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.hashes[id]
	if !ok {
		return oops.Code("SESSION_NOT_FOUND").
			With("session_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	session := s.byHash[hash]
	session.LastSeenAt = lastSeen
	s.byHash[hash] = session
	return nil
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.hashes[id]
	if !ok {
		return oops.Code("SESSION_NOT_FOUND").
			With("session_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	delete(s.byHash, hash)
	delete(s.hashes, id)
	return nil
}

// DeleteByUser removes all sessions for a user.
func (s *SessionStore) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, session := range s.byHash {
		if session.UserID.Compare(userID) == 0 {
			delete(s.byHash, hash)
			delete(s.hashes, session.ID)
		}
	}
	return nil
}

// DeleteExpired removes all expired sessions and returns the count of
// deleted records.
func (s *SessionStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var deleted int64
	for hash, session := range s.byHash {
		if now.After(session.ExpiresAt) {
			delete(s.byHash, hash)
			delete(s.hashes, session.ID)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of live sessions. Exposed for metrics.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byHash)
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionStore)(nil)
