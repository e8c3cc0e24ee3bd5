// Package fuzzy provides the approximate string matching used to rank item
// names against free-text queries and to suggest names for typos.
package fuzzy

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Match represents a fuzzy match result with its similarity score.
type Match struct {
	Value      string
	Similarity float64
}

// LevenshteinDistance returns the case-insensitive edit distance between s1
// and s2, counted in runes.
func LevenshteinDistance(s1, s2 string) int {
	return levenshtein.ComputeDistance(strings.ToLower(s1), strings.ToLower(s2))
}

// Similarity returns a similarity score between 0.0 and 1.0 derived from the
// edit distance. 1.0 means equal ignoring case.
func Similarity(s1, s2 string) float64 {
	s1Lower := strings.ToLower(s1)
	s2Lower := strings.ToLower(s2)
	if s1Lower == s2Lower {
		return 1.0
	}

	maxLen := max(utf8.RuneCountInString(s1Lower), utf8.RuneCountInString(s2Lower))
	distance := levenshtein.ComputeDistance(s1Lower, s2Lower)
	return 1.0 - float64(distance)/float64(maxLen)
}

// IsSubstring checks if query is a substring of target (case-insensitive).
func IsSubstring(query, target string) bool {
	return strings.Contains(strings.ToLower(target), strings.ToLower(query))
}

// FindSimilar finds strings similar to the query from a list of candidates.
// It returns matches with similarity >= threshold, sorted by similarity (highest first).
// Substring matches are also included with a boosted score.
func FindSimilar(query string, candidates []string, threshold float64) []Match {
	var matches []Match
	seen := make(map[string]bool)

	for _, candidate := range candidates {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true

		sim := Similarity(query, candidate)

		// The boost is proportional to how much of the candidate the query covers
		if query != "" && IsSubstring(query, candidate) {
			coverage := float64(utf8.RuneCountInString(query)) / float64(utf8.RuneCountInString(candidate))
			sim = max(sim, 0.5+coverage*0.5)
		}

		if sim >= threshold {
			matches = append(matches, Match{
				Value:      candidate,
				Similarity: sim,
			})
		}
	}

	// Sort by similarity (highest first), then alphabetically for ties
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Value < matches[j].Value
	})

	return matches
}

// FindSimilarNames returns just the names of similar matches.
func FindSimilarNames(query string, candidates []string, threshold float64) []string {
	matches := FindSimilar(query, candidates, threshold)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Value
	}
	return names
}
