package batch

import (
	"veridoc/internal/consistency"
	"veridoc/internal/validation"
	platformstrings "veridoc/pkg/platform/strings"
)

// Aggregate folds the per-document results into one cumulative decision.
// Error envelopes carry no validation result and are skipped. Flag messages
// are deduplicated in first-seen order. The consistency adjustment, when
// present, contributes its points and flag but never changes the status.
func Aggregate(envelopes []Envelope, adj *consistency.Adjustment) Cumulative {
	cum := Cumulative{Status: validation.StatusPass, Flags: []string{}}

	for _, env := range envelopes {
		if env.IsError() {
			continue
		}
		cum.Status = validation.MaxStatus(cum.Status, env.Validation.Status)
		cum.RiskScore += env.Validation.RiskScore
		for _, flag := range env.Validation.Flags {
			cum.Flags = append(cum.Flags, flag.Message)
		}
	}

	cum.Flags = platformstrings.Dedupe(cum.Flags)

	if adj != nil {
		cum.RiskScore += adj.Points
		cum.Flags = append(cum.Flags, adj.Flag)
	}
	return cum
}
