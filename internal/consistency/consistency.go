// Package consistency cross-checks holder names across the documents of one
// batch submission.
package consistency

import (
	"fmt"

	"veridoc/internal/document"
	platformstrings "veridoc/pkg/platform/strings"
)

const (
	threshold = 0.60
	penalty   = 25
)

// Adjustment is the optional batch-level contribution of a failed name
// consistency check.
type Adjustment struct {
	Points int
	Flag   string
}

// Evaluate compares names across the batch. The most recently encountered
// valid name is the base; the average similarity between the base and every
// other valid name must reach the threshold. Fewer than two valid names
// yields no adjustment.
func Evaluate(records []*document.Record) *Adjustment {
	var names []string
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if name := rec.NormalizedName(); name != "" {
			names = append(names, name)
		}
	}
	if len(names) < 2 {
		return nil
	}

	base := names[len(names)-1]
	total := 0.0
	for _, name := range names[:len(names)-1] {
		total += platformstrings.Ratio(base, name)
	}
	avg := total / float64(len(names)-1)

	if avg >= threshold {
		return nil
	}
	return &Adjustment{
		Points: penalty,
		Flag:   fmt.Sprintf("Low name consistency across documents (Score: %.2f)", avg),
	}
}
