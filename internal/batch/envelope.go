// Package batch orchestrates the full decisioning pipeline for one submitted
// batch: extraction, per-document rule evaluation, cross-document consistency,
// cumulative aggregation, persistence, and audit.
package batch

import (
	"encoding/json"

	"veridoc/internal/document"
	"veridoc/internal/validation"
)

// Envelope pairs a document with its outcome. Exactly one of Validation or
// Diagnostic is set; a diagnostic envelope marks an unextractable document
// and is excluded from aggregation and persistence.
type Envelope struct {
	Document   *document.Record
	Validation *validation.Result
	Diagnostic *validation.Diagnostic
}

func (e Envelope) IsError() bool { return e.Diagnostic != nil }

// MarshalJSON renders both envelope kinds under the same "validation" key.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Diagnostic != nil {
		return json.Marshal(struct {
			Document   *document.Record      `json:"document"`
			Validation validation.Diagnostic `json:"validation"`
		}{e.Document, *e.Diagnostic})
	}
	return json.Marshal(struct {
		Document   *document.Record   `json:"document"`
		Validation *validation.Result `json:"validation"`
	}{e.Document, e.Validation})
}

// Cumulative is the batch-level decision appended after the per-document
// envelopes.
type Cumulative struct {
	Status    validation.Status `json:"status"`
	RiskScore int               `json:"risk_score"`
	Flags     []string          `json:"flags"`
}
