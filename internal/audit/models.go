package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what happened.
type Action string

const (
	// ActionDocumentDecided records one document's final validation result.
	ActionDocumentDecided Action = "document_decided"
	// ActionBatchEvaluated records the cumulative decision for a batch.
	ActionBatchEvaluated Action = "batch_evaluated"
)

// Event is emitted from decision logic to capture key outcomes. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	BatchID   string    `json:"batch_id"`
	Action    Action    `json:"action"`

	// DocType and Page identify the document within the batch; empty for
	// batch-level events.
	DocType string `json:"doc_type,omitempty"`
	Page    int    `json:"page,omitempty"`

	Status    string   `json:"status"`
	RiskScore int      `json:"risk_score"`
	Flags     []string `json:"flags,omitempty"`
}
