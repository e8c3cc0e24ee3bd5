// Package duration converts between the shorthand duration grammar used for
// recipe times ("1h30m", "2d 3h", "90") and an integer number of seconds.
package duration

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	Second = 1
	Minute = 60 * Second
	Hour   = 60 * Minute
	Day    = 24 * Hour
	Week   = 7 * Day
)

var (
	bareNumber = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	tokenRun   = regexp.MustCompile(`^(?:\d+(?:\.\d+)?[wdhms])+$`)
	token      = regexp.MustCompile(`(\d+(?:\.\d+)?)([wdhms])`)
	whitespace = regexp.MustCompile(`\s+`)
)

// units in greedy formatting order
var units = []struct {
	suffix  string
	seconds int
}{
	{"w", Week},
	{"d", Day},
	{"h", Hour},
	{"m", Minute},
	{"s", Second},
}

func unitSeconds(u byte) int {
	switch u {
	case 'w':
		return Week
	case 'd':
		return Day
	case 'h':
		return Hour
	case 'm':
		return Minute
	default:
		return Second
	}
}

// Parse reads a duration and returns the total number of seconds.
//
// A bare integer or decimal is taken as seconds. Otherwise the input must be
// a run of <number><unit> tokens with units w, d, h, m and s. Case and
// whitespace are ignored. Repeated units are summed, so "1h1h" is two hours.
// ok is false for empty, malformed or overflowing input.
func Parse(text string) (seconds int, ok bool) {
	s := whitespace.ReplaceAllString(strings.ToLower(text), "")
	if s == "" {
		return 0, false
	}

	if bareNumber.MatchString(s) {
		return parseToken(s, Second)
	}

	if !tokenRun.MatchString(s) {
		return 0, false
	}

	// Integer tokens are summed exactly; only decimal tokens go through
	// float64, and their sum is rounded once at the end.
	total, frac := 0, 0.0
	for _, m := range token.FindAllStringSubmatch(s, -1) {
		unit := unitSeconds(m[2][0])
		if strings.Contains(m[1], ".") {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return 0, false
			}
			frac += v * float64(unit)
			continue
		}
		v, ok := parseToken(m[1], unit)
		if !ok {
			return 0, false
		}
		if total, ok = add(total, v); !ok {
			return 0, false
		}
	}
	if frac > 0 {
		r, ok := round(frac)
		if !ok {
			return 0, false
		}
		return add(total, r)
	}
	return total, true
}

// parseToken converts one number in the given unit to seconds.
func parseToken(num string, unit int) (int, bool) {
	if strings.Contains(num, ".") {
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return round(v * float64(unit))
	}
	v, err := strconv.ParseInt(num, 10, 64)
	if err != nil || v > math.MaxInt/int64(unit) {
		return 0, false
	}
	return int(v) * unit, true
}

func add(a, b int) (int, bool) {
	if b > math.MaxInt-a {
		return 0, false
	}
	return a + b, true
}

func round(v float64) (int, bool) {
	r := math.Floor(v + 0.5)
	if math.IsInf(r, 0) || math.IsNaN(r) || r >= math.MaxInt64 {
		return 0, false
	}
	return int(r), true
}

// Format renders seconds largest unit first, emitting only non-zero
// components: 90061 -> "1d1h1m1s". Zero and negative values give "0s".
func Format(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}

	var b strings.Builder
	rest := seconds
	for _, u := range units {
		v := rest / u.seconds
		if v > 0 {
			b.WriteString(strconv.Itoa(v))
			b.WriteString(u.suffix)
			rest -= v * u.seconds
		}
	}
	return b.String()
}

// Normalize parses text and formats the result again, giving the canonical
// spelling of a duration ("90m" -> "1h30m").
func Normalize(text string) (string, bool) {
	secs, ok := Parse(text)
	if !ok {
		return "", false
	}
	return Format(secs), true
}
