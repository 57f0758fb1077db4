// Package watchlist matches candidate names against a static list of
// politically exposed or sanctioned persons. In a production deployment the
// entries would come from an external screening feed; the matcher itself only
// needs the immutable slice it is constructed with.
package watchlist

import (
	"math"
	"strings"

	platformstrings "veridoc/pkg/platform/strings"
)

// Entry is one watchlist person. DOB is optional; entries without one match
// by name alone.
type Entry struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	DOB       *string `json:"dob"`
}

// strong name matches qualify for the DOB boost
const dobBoostThreshold = 0.8

// Matcher scores candidate names against its entries. It is safe for
// concurrent use: the entry slice is never mutated after construction.
type Matcher struct {
	entries []Entry
}

// NewMatcher builds a matcher over a static entry list. The slice is copied
// so later mutation by the caller cannot affect scoring.
func NewMatcher(entries []Entry) *Matcher {
	return &Matcher{entries: append([]Entry(nil), entries...)}
}

// DefaultEntries returns the built-in screening list used when no external
// feed is configured.
func DefaultEntries() []Entry {
	dob1 := "1980-01-15"
	dob2 := "1975-08-22"
	return []Entry{
		{FirstName: "JOHN", LastName: "DOE", DOB: &dob1},
		{FirstName: "JANE", LastName: "SMITH"},
		{FirstName: "IVAN", LastName: "PETROV", DOB: &dob2},
	}
}

// Score returns the maximum similarity between the candidate name and any
// entry, rounded to 2 decimals. A strong name match (similarity above 0.8)
// whose entry DOB equals the candidate's is boosted by averaging with 1.0.
// An empty candidate name or an empty watchlist scores exactly 0.0.
func (m *Matcher) Score(firstName, lastName string, dob *string) float64 {
	candidate := normalizeName(firstName, lastName)
	if candidate == "" || len(m.entries) == 0 {
		return 0.0
	}

	maxScore := 0.0
	for _, entry := range m.entries {
		entryName := normalizeName(entry.FirstName, entry.LastName)
		if entryName == "" {
			continue
		}

		score := platformstrings.Ratio(candidate, entryName)
		if score > dobBoostThreshold && entry.DOB != nil && dob != nil && *entry.DOB == *dob {
			score = (score + 1.0) / 2
		}

		if score > maxScore {
			maxScore = score
		}
	}

	return math.Round(maxScore*100) / 100
}

// normalizeName case-folds, trims, and concatenates the name pair. Symmetry
// of the underlying ratio guarantees candidate/entry order does not matter.
func normalizeName(first, last string) string {
	first = strings.ToUpper(strings.TrimSpace(first))
	last = strings.ToUpper(strings.TrimSpace(last))
	return first + last
}
