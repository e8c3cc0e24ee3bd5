package fuzzy

import "strings"

// Match rank tiers. Every fuzzy rank lies in [RankFuzzy, RankFuzzy+1].
const (
	RankExact     = 0
	RankPrefix    = 1
	RankSubstring = 2
	RankFuzzy     = 3
)

// MatchRank orders name against query, lower is better. Both strings are
// case-folded, then:
//
//	0  exact match
//	1  name starts with query
//	2  name contains query
//	3+ 3 + (1 - JaroWinkler(name, query))
//
// An empty query ranks every name 0, leaving the order untouched.
func MatchRank(name, query string) float64 {
	if query == "" {
		return RankExact
	}
	a := strings.ToLower(name)
	b := strings.ToLower(query)

	switch {
	case a == b:
		return RankExact
	case strings.HasPrefix(a, b):
		return RankPrefix
	case strings.Contains(a, b):
		return RankSubstring
	}
	return RankFuzzy + (1 - JaroWinkler(a, b))
}

// RankSimilarity maps a match rank onto (0, 1] as 1/(1+rank), so an exact
// match scores 1 and every fuzzy match scores at most 1/4.
func RankSimilarity(name, query string) float64 {
	return 1 / (1 + MatchRank(name, query))
}
