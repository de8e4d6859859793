package filter

import (
	"fmt"
	"strings"
)

// MatchMode decides how pid, user and name tokens compare.
type MatchMode int

const (
	// MatchSubstring matches when the field contains the literal.
	MatchSubstring MatchMode = iota
	// MatchExact matches when the field equals the literal.
	MatchExact
)

// String returns the config spelling of the mode.
func (m MatchMode) String() string {
	if m == MatchExact {
		return "exact"
	}
	return "substring"
}

// Toggle returns the other mode.
func (m MatchMode) Toggle() MatchMode {
	if m == MatchExact {
		return MatchSubstring
	}
	return MatchExact
}

// ParseMatchMode accepts "substring" or "exact", case-insensitively.
// An empty string is substring.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "substring", "contains":
		return MatchSubstring, nil
	case "exact":
		return MatchExact, nil
	}
	return MatchSubstring, fmt.Errorf("unknown match mode %q (want substring or exact)", s)
}
