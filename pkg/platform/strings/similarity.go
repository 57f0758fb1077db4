package strings

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Ratio computes a length-weighted similarity between two strings in [0, 1].
// With the default edit costs (substitution = 2) the Levenshtein ratio reduces
// to 2*LCS / (len(a)+len(b)), so the score is symmetric and weighted by the
// longest common subsequence. Two empty strings are considered identical.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}
