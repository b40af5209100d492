package detectors

import (
	"math"
	"unicode/utf8"
)

// Entropy returns the Shannon entropy of s in bits per character, computed
// over its rune frequency distribution.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	count := map[rune]int{}
	for _, r := range s {
		count[r]++
	}
	H := 0.0
	n := float64(utf8.RuneCountInString(s))
	for _, c := range count {
		p := float64(c) / n
		H += -p * math.Log2(p)
	}
	return H
}
