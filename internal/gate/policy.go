// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package gate

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// compiledExemption holds an exemption pattern and its compiled glob.
type compiledExemption struct {
	pattern string
	glob    glob.Glob
}

// ExemptionPolicy reports whether a request path requires
// authentication. Patterns are compiled once at construction and the
// policy is immutable afterwards, so it is safe for concurrent use.
//
// Matching rules: one trailing slash is stripped from both path and
// pattern, then a pattern matches either exactly or, when it ends in
// "*", as a literal prefix. Matching is case-sensitive.
type ExemptionPolicy struct {
	exemptions []compiledExemption
}

// NewExemptionPolicy compiles the exemption patterns. An empty or nil
// list yields a policy under which every path requires authentication.
func NewExemptionPolicy(patterns []string) (*ExemptionPolicy, error) {
	exemptions := make([]compiledExemption, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		normalized := trimOneTrailingSlash(pattern)

		var expr string
		if rest, found := strings.CutSuffix(normalized, "*"); found {
			// Prefix match: quote the literal part and let "*" span
			// every character, "/" included.
			expr = glob.QuoteMeta(rest) + "*"
		} else {
			expr = glob.QuoteMeta(normalized)
		}

		g, err := glob.Compile(expr)
		if err != nil {
			return nil, oops.Code("GATE_INVALID_PATTERN").
				With("pattern", pattern).
				Wrap(err)
		}
		exemptions = append(exemptions, compiledExemption{pattern: normalized, glob: g})
	}
	return &ExemptionPolicy{exemptions: exemptions}, nil
}

// RequiresAuth reports whether path requires authentication. An empty
// path or an empty exemption list always requires it.
func (p *ExemptionPolicy) RequiresAuth(path string) bool {
	if path == "" || len(p.exemptions) == 0 {
		return true
	}

	normalized := trimOneTrailingSlash(path)
	for _, e := range p.exemptions {
		if e.glob.Match(normalized) {
			return false
		}
	}
	return true
}

// trimOneTrailingSlash removes at most one trailing "/".
func trimOneTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s[:len(s)-1]
	}
	return s
}
