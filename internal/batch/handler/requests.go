package handler

import (
	"strings"
	"time"

	"veridoc/internal/document"
	dErrors "veridoc/pkg/domain-errors"
)

// maxBatchDocuments bounds one submission; larger cases are split upstream.
const maxBatchDocuments = 25

const referenceDateLayout = "2006-01-02"

// EvaluateRequest is the HTTP request body for POST /batches/evaluate.
type EvaluateRequest struct {
	BatchID   string               `json:"batch_id"`
	Documents []document.RawFields `json:"documents"`

	// ReferenceDate pins "today" for expiry and age rules; empty means now.
	ReferenceDate string `json:"reference_date"`

	// Parsed values (populated by Validate)
	parsedReferenceDate time.Time
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.BatchID = strings.TrimSpace(r.BatchID)

	if len(r.Documents) == 0 {
		return dErrors.New(dErrors.CodeValidation, "documents is required")
	}
	if len(r.Documents) > maxBatchDocuments {
		return dErrors.New(dErrors.CodeValidation, "documents exceeds the batch limit")
	}

	r.ReferenceDate = strings.TrimSpace(r.ReferenceDate)
	if r.ReferenceDate != "" {
		ref, err := time.Parse(referenceDateLayout, r.ReferenceDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "reference_date must be formatted as YYYY-MM-DD")
		}
		r.parsedReferenceDate = ref
	}

	return nil
}

// ParsedReferenceDate returns the validated reference date, zero when unset.
func (r *EvaluateRequest) ParsedReferenceDate() time.Time {
	return r.parsedReferenceDate
}
