// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
)

func TestGenerateResetToken(t *testing.T) {
	t.Run("generates secure token and hash", func(t *testing.T) {
		token, hash, err := auth.GenerateResetToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
		assert.Len(t, hash, 64)
		assert.NotEqual(t, token, hash)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		token1, _, err := auth.GenerateResetToken()
		require.NoError(t, err)
		token2, _, err := auth.GenerateResetToken()
		require.NoError(t, err)
		assert.NotEqual(t, token1, token2)
	})
}

func TestVerifyResetToken(t *testing.T) {
	t.Run("matching token verifies", func(t *testing.T) {
		token, hash, err := auth.GenerateResetToken()
		require.NoError(t, err)
		assert.True(t, auth.VerifyResetToken(token, hash))
	})

	t.Run("wrong token fails", func(t *testing.T) {
		_, hash, err := auth.GenerateResetToken()
		require.NoError(t, err)
		assert.False(t, auth.VerifyResetToken("deadbeef", hash))
	})

	t.Run("empty inputs fail", func(t *testing.T) {
		assert.False(t, auth.VerifyResetToken("", "hash"))
		assert.False(t, auth.VerifyResetToken("token", ""))
	})
}

func TestNewPasswordReset(t *testing.T) {
	userID := ulid.Make()

	t.Run("creates validated reset", func(t *testing.T) {
		reset, err := auth.NewPasswordReset(userID, "tokenhash", time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, userID, reset.UserID)
		assert.NotEqual(t, ulid.ULID{}, reset.ID)
	})

	t.Run("rejects zero user ID", func(t *testing.T) {
		_, err := auth.NewPasswordReset(ulid.ULID{}, "tokenhash", time.Now().Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("rejects empty token hash", func(t *testing.T) {
		_, err := auth.NewPasswordReset(userID, "", time.Now().Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("rejects zero expiry", func(t *testing.T) {
		_, err := auth.NewPasswordReset(userID, "tokenhash", time.Time{})
		assert.Error(t, err)
	})
}

func TestPasswordReset_IsExpired(t *testing.T) {
	userID := ulid.Make()

	t.Run("not expired in future", func(t *testing.T) {
		reset, err := auth.NewPasswordReset(userID, "hash", time.Now().Add(auth.ResetTokenExpiry))
		require.NoError(t, err)
		assert.False(t, reset.IsExpired())
	})

	t.Run("expired in past", func(t *testing.T) {
		reset, err := auth.NewPasswordReset(userID, "hash", time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, reset.IsExpired())
	})
}
