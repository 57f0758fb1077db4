package validation

// Status enumerates the possible per-document decisions.
type Status string

const (
	StatusPass     Status = "Pass"
	StatusEscalate Status = "Escalate"
	StatusRejected Status = "Rejected"

	// StatusError marks diagnostic results produced when extraction could not
	// yield a canonical record. It never comes out of the rule engine.
	StatusError Status = "Error"
)

// statusPriority orders statuses for merging: Rejected > Escalate > Pass.
// Error results are excluded from cumulative aggregation and rank lowest here.
func statusPriority(s Status) int {
	switch s {
	case StatusRejected:
		return 3
	case StatusEscalate:
		return 2
	case StatusPass:
		return 1
	default:
		return 0
	}
}

// MaxStatus returns the higher-priority of two statuses. Escalate never
// overrides Rejected; nothing overrides Rejected.
func MaxStatus(a, b Status) Status {
	if statusPriority(b) > statusPriority(a) {
		return b
	}
	return a
}

// Flag is one explanatory finding attached to a result. RuleID is optional;
// messages are unique within a result.
type Flag struct {
	RuleID  string `json:"rule_id,omitempty"`
	Message string `json:"message"`
}

// Result is the outcome of evaluating one document. It is immutable once
// returned by the engine.
type Result struct {
	Status    Status `json:"status"`
	RiskScore int    `json:"risk_score"`
	Flags     []Flag `json:"flags"`
}

// appendFlags adds flags whose messages are not already present, preserving
// first-seen order.
func appendFlags(existing []Flag, add []Flag) []Flag {
	for _, f := range add {
		dup := false
		for _, e := range existing {
			if e.Message == f.Message {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, f)
		}
	}
	return existing
}
