// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/gate"
)

func newPolicy(t *testing.T, patterns []string) *gate.ExemptionPolicy {
	t.Helper()

	policy, err := gate.NewExemptionPolicy(patterns)
	require.NoError(t, err)
	return policy
}

func TestExemptionPolicy_RequiresAuth(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{
			name:     "empty path always requires auth",
			patterns: []string{"/status"},
			path:     "",
			want:     true,
		},
		{
			name:     "empty exemption list requires auth everywhere",
			patterns: nil,
			path:     "/status",
			want:     true,
		},
		{
			name:     "exact match is exempt",
			patterns: []string{"/status"},
			path:     "/status",
			want:     false,
		},
		{
			name:     "trailing slash on path is normalized",
			patterns: []string{"/status"},
			path:     "/status/",
			want:     false,
		},
		{
			name:     "trailing slash on pattern is normalized",
			patterns: []string{"/status/"},
			path:     "/status",
			want:     false,
		},
		{
			name:     "non-matching path requires auth",
			patterns: []string{"/status"},
			path:     "/users",
			want:     true,
		},
		{
			name:     "prefix is not a match without wildcard",
			patterns: []string{"/status"},
			path:     "/status/extended",
			want:     true,
		},
		{
			name:     "wildcard matches any suffix",
			patterns: []string{"/api/v1/stat*"},
			path:     "/api/v1/status",
			want:     false,
		},
		{
			name:     "wildcard matches sibling path",
			patterns: []string{"/api/v1/stat*"},
			path:     "/api/v1/stats",
			want:     false,
		},
		{
			name:     "wildcard spans path separators",
			patterns: []string{"/api/v1/stat*"},
			path:     "/api/v1/status/extended",
			want:     false,
		},
		{
			name:     "wildcard matches bare prefix",
			patterns: []string{"/api/v1/stat*"},
			path:     "/api/v1/stat",
			want:     false,
		},
		{
			name:     "wildcard does not match different prefix",
			patterns: []string{"/api/v1/stat*"},
			path:     "/api/v1/users",
			want:     true,
		},
		{
			name:     "matching is case-sensitive",
			patterns: []string{"/status"},
			path:     "/Status",
			want:     true,
		},
		{
			name:     "second pattern in list matches",
			patterns: []string{"/status", "/api/v1/unauthorized/"},
			path:     "/api/v1/unauthorized",
			want:     false,
		},
		{
			name:     "glob metacharacters in path are literal",
			patterns: []string{"/files/[abc]"},
			path:     "/files/[abc]",
			want:     false,
		},
		{
			name:     "empty patterns in the list are skipped",
			patterns: []string{"", "/status"},
			path:     "/status",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := newPolicy(t, tt.patterns)
			assert.Equal(t, tt.want, policy.RequiresAuth(tt.path))
		})
	}
}

func TestExemptionPolicy_OnlyStrippingOneSlash(t *testing.T) {
	policy := newPolicy(t, []string{"/status"})

	// Two trailing slashes only lose one; "/status/" != "/status".
	assert.True(t, policy.RequiresAuth("/status//"))
}
