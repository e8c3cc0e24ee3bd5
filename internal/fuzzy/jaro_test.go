package fuzzy

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-5
}

func TestJaro(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"", "abc", 0},
		{"abc", "", 0},
		{"abc", "abc", 1},
		{"a", "b", 0},
		{"martha", "marhta", 0.944444},
		{"dixon", "dicksonx", 0.766667},
		{"jellyfish", "smellyfish", 0.896296},
		{"abc", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := Jaro(tt.a, tt.b); !approx(got, tt.want) {
				t.Errorf("Jaro(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaroWinkler(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"martha", "marhta", 0.961111},
		{"dixon", "dicksonx", 0.813333},
		{"jellyfish", "smellyfish", 0.896296},
		{"plank", "plank", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := JaroWinkler(tt.a, tt.b); !approx(got, tt.want) {
				t.Errorf("JaroWinkler(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaroWinklerIdentity(t *testing.T) {
	for _, s := range []string{"a", "wood", "Iron Ingot", "ünïcödé", "aaaaaaaaaa"} {
		if got := JaroWinkler(s, s); got != 1 {
			t.Errorf("JaroWinkler(%q, %q) = %f, want 1", s, s, got)
		}
	}
}

func TestJaroWinklerRange(t *testing.T) {
	words := []string{"", "a", "ab", "wood", "wooden plank", "plank", "iron ore", "ore", "xyz", "aaaa", "aaab"}
	for _, a := range words {
		for _, b := range words {
			got := JaroWinkler(a, b)
			if got < 0 || got > 1 {
				t.Errorf("JaroWinkler(%q, %q) = %f, outside [0, 1]", a, b, got)
			}
		}
	}
}

func TestJaroWinklerScaledClamps(t *testing.T) {
	if got := JaroWinklerScaled("abcdx", "abcdy", 1); got > 1 {
		t.Errorf("JaroWinklerScaled with scale 1 = %f, want <= 1", got)
	}
}

func TestJaroWinklerPrefixCap(t *testing.T) {
	// Prefixes longer than four runes earn no extra bonus.
	j := Jaro("abcdefgx", "abcdefgy")
	want := j + 4*DefaultPrefixScale*(1-j)
	if got := JaroWinkler("abcdefgx", "abcdefgy"); !approx(got, want) {
		t.Errorf("JaroWinkler prefix bonus = %f, want %f", got, want)
	}
}
