// Package util provides small string helpers shared by the CLI.
package util

import (
	"sort"
	"strings"
)

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// LevenshteinDistance counts the single-rune edits that turn a into b.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// SuggestSimilar returns the candidates within maxDistance edits of input,
// closest first. Comparison ignores case. An exact match is returned alone.
func SuggestSimilar(input string, candidates []string, maxDistance int) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		name string
		dist int
	}
	var matches []scored
	for _, c := range candidates {
		d := LevenshteinDistance(input, strings.ToLower(c))
		if d == 0 {
			return []string{c}
		}
		if d <= maxDistance {
			matches = append(matches, scored{c, d})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].dist < matches[j].dist
	})
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
