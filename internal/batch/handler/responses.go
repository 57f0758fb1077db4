package handler

import (
	"veridoc/internal/batch"
)

// cumulativeRecord is the trailing element of the response list.
type cumulativeRecord struct {
	CumulativeValidation batch.Cumulative `json:"cumulative_validation"`
}

// FromResult renders a batch result as the wire contract: one envelope per
// document, in submission order, followed by the cumulative record.
func FromResult(result batch.Result) []any {
	out := make([]any, 0, len(result.Envelopes)+1)
	for _, env := range result.Envelopes {
		out = append(out, env)
	}
	out = append(out, cumulativeRecord{CumulativeValidation: result.Cumulative})
	return out
}
