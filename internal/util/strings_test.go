package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	assert.Equal(t, "process", Pluralize(1, "process", "processes"))
	assert.Equal(t, "processes", Pluralize(0, "process", "processes"))
	assert.Equal(t, "processes", Pluralize(2, "process", "processes"))
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "cpu", 3},
		{"mem", "", 3},
		{"cpu", "cpu", 0},
		{"cpu", "cup", 2},        // transposition (2 edits)
		{"thread", "threads", 1}, // insertion
		{"threads", "thread", 1}, // deletion
		{"mem", "Mem", 1},        // case difference
		{"kitten", "sitting", 3}, // classic example
		{"drivés", "drives", 1},  // runes, not bytes
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	candidates := []string{"name", "pid", "cpu", "mem", "threads"}

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"typo", "cpus", []string{"cpu"}},
		{"missing char", "thread", []string{"threads"}},
		{"closest first", "pd", []string{"pid", "cpu"}},
		{"no close match", "uptime", nil},
		{"empty input", "  ", nil},
		{"case insensitive", "MEM", []string{"mem"}},
		{"exact match alone", "cpu", []string{"cpu"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestSimilar(tt.input, candidates, 2))
		})
	}
}

func TestSuggestSimilar_EmptyCandidates(t *testing.T) {
	assert.Nil(t, SuggestSimilar("cpu", nil, 2))
	assert.Nil(t, SuggestSimilar("cpu", []string{}, 2))
}
