package validation

import (
	"strings"
	"time"

	"veridoc/internal/document"
)

// Config tunes the evaluation engine. Zero values fall back to the built-in
// jurisdiction list and the wall clock.
type Config struct {
	// ReferenceDate anchors all date comparisons. Zero means time.Now at
	// evaluation time.
	ReferenceDate time.Time
	// HighRiskJurisdictions overrides the built-in list when non-empty.
	HighRiskJurisdictions []string
}

// Engine evaluates a single document record against the ordered rule set.
// It is pure: no I/O, no clock reads when a reference date is configured,
// and the input record is never mutated.
type Engine struct {
	cfg   Config
	rules []Rule
}

func NewEngine(cfg Config) *Engine {
	jurisdictions := cfg.HighRiskJurisdictions
	if len(jurisdictions) == 0 {
		jurisdictions = DefaultJurisdictions()
	}
	return &Engine{cfg: cfg, rules: rules(jurisdictions)}
}

// Evaluate runs the rule chain with the configured reference date, or the
// current time when none is set.
func (e *Engine) Evaluate(rec *document.Record) Result {
	ref := e.cfg.ReferenceDate
	if ref.IsZero() {
		ref = time.Now().UTC()
	}
	return e.EvaluateAt(rec, ref)
}

// EvaluateAt folds the ordered rule deltas into a Result. The first terminal
// delta fixes the score and ends the fold; non-terminal deltas accumulate
// points, raise the status monotonically, and union their flags.
func (e *Engine) EvaluateAt(rec *document.Record, ref time.Time) Result {
	res := Result{Status: StatusPass, RiskScore: 0, Flags: []Flag{}}

	for _, rule := range e.rules {
		delta := rule.Eval(rec, ref)
		if delta == nil {
			continue
		}
		if delta.Terminal {
			res.Status = delta.Status
			res.RiskScore = delta.SetPoints
			res.Flags = appendFlags(res.Flags, delta.Flags)
			return res
		}
		res.RiskScore += delta.AddPoints
		if delta.Status != "" {
			res.Status = MaxStatus(res.Status, delta.Status)
		}
		res.Flags = appendFlags(res.Flags, delta.Flags)
	}
	return res
}

// RiskBucket maps a cumulative score onto the coarse reporting scale.
func RiskBucket(score int) string {
	switch {
	case score > 60:
		return "High"
	case score > 25:
		return "Medium"
	default:
		return "Low"
	}
}

// Diagnostic is the envelope attached to documents that never produced a
// structured record. It is excluded from cumulative aggregation and from
// persistence.
type Diagnostic struct {
	Status    Status `json:"status"`
	RiskScore int    `json:"risk_score"`
	Bucket    string `json:"risk_bucket"`
	Reason    string `json:"reason,omitempty"`
}

// NewDiagnostic builds the fixed worst-case envelope for an unextractable
// document.
func NewDiagnostic(reason string) Diagnostic {
	return Diagnostic{
		Status:    StatusError,
		RiskScore: 100,
		Bucket:    "High",
		Reason:    strings.TrimSpace(reason),
	}
}
