package fuzzy

// DefaultPrefixScale is the standard Winkler prefix weight.
const DefaultPrefixScale = 0.1

// maxPrefix caps the common prefix that earns the Winkler bonus.
const maxPrefix = 4

// Jaro returns the Jaro similarity of a and b in [0, 1], comparing runes
// exactly (callers fold case first when they want it ignored).
func Jaro(a, b string) float64 {
	if a == b {
		return 1
	}
	r1, r2 := []rune(a), []rune(b)
	l1, l2 := len(r1), len(r2)
	if l1 == 0 || l2 == 0 {
		return 0
	}

	window := max(max(l1, l2)/2-1, 0)
	m1 := make([]bool, l1)
	m2 := make([]bool, l2)

	matches := 0
	for i := 0; i < l1; i++ {
		start := max(0, i-window)
		end := min(i+window+1, l2)
		for j := start; j < end; j++ {
			if !m2[j] && r1[i] == r2[j] {
				m1[i], m2[j] = true, true
				matches++
				break
			}
		}
	}
	if matches == 0 {
		return 0
	}

	// Half the number of matched runes that appear out of order.
	transpositions := 0
	k := 0
	for i := 0; i < l1; i++ {
		if !m1[i] {
			continue
		}
		for !m2[k] {
			k++
		}
		if r1[i] != r2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(l1) + m/float64(l2) + (m-t)/m) / 3
}

// JaroWinkler returns the Jaro–Winkler similarity with the default prefix
// scale of 0.1.
func JaroWinkler(a, b string) float64 {
	return JaroWinklerScaled(a, b, DefaultPrefixScale)
}

// JaroWinklerScaled boosts the Jaro score by prefix*scale*(1-jaro), where
// prefix is the common prefix length capped at four runes. The scale should
// not exceed 0.25; the result is clamped to 1 regardless.
func JaroWinklerScaled(a, b string, scale float64) float64 {
	j := Jaro(a, b)

	r1, r2 := []rune(a), []rune(b)
	limit := min(maxPrefix, len(r1), len(r2))
	prefix := 0
	for prefix < limit && r1[prefix] == r2[prefix] {
		prefix++
	}

	return min(j+float64(prefix)*scale*(1-j), 1)
}
