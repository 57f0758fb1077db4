package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"veridoc/internal/document"
)

// Category classifies how a rule's delta is merged.
type Category string

const (
	// CategoryHardFail rules fix status and score and stop evaluation.
	CategoryHardFail Category = "hard_fail"
	// CategorySoft rules add points; one of them may force Rejected.
	CategorySoft Category = "soft"
	// CategoryEscalation rules may raise status to Escalate, never to Rejected.
	CategoryEscalation Category = "escalation"
)

// Delta is the immutable contribution of one rule. Terminal deltas carry a
// fixed score and end evaluation; non-terminal deltas add points, propose a
// status, and append flags.
type Delta struct {
	Terminal  bool
	SetPoints int
	AddPoints int
	Status    Status
	Flags     []Flag
}

// Rule pairs a predicate/effect function with its identity. Eval returns nil
// when the rule does not apply.
type Rule struct {
	ID       string
	Category Category
	Eval     func(rec *document.Record, ref time.Time) *Delta
}

// hardFailScore is the fixed sentinel score for terminal rejections; it is
// not additive.
const hardFailScore = 100

var (
	panFormat     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	nonNameChars  = regexp.MustCompile(`[^A-Z\s]`)
	digitsOnly    = regexp.MustCompile(`^\d+$`)
	dateLayout    = "2006-01-02"
	maxValidYears = 15
)

// DefaultJurisdictions is the built-in high-risk jurisdiction set: ISO codes,
// alpha-3 codes, and country-name keywords matched as substrings.
func DefaultJurisdictions() []string {
	return []string{
		"IR", "IRN", "IRAN",
		"KP", "PRK", "NORTH KOREA",
		"SY", "SYR", "SYRIA",
		"RU", "RUS", "RUSSIA", "RUSSIAN FEDERATION",
	}
}

func parseDate(p *string) (time.Time, bool) {
	s := strings.TrimSpace(document.String(p))
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// rules builds the ordered rule list. Order matters: the hard-fail group is
// evaluated as a whole before any soft or escalation rule, and the first
// terminal delta wins.
func rules(jurisdictions []string) []Rule {
	upper := make([]string, 0, len(jurisdictions))
	for _, j := range jurisdictions {
		upper = append(upper, strings.ToUpper(strings.TrimSpace(j)))
	}

	return []Rule{
		// --- hard-fail group, fixed order ---
		{ID: "R001", Category: CategoryHardFail, Eval: expiredDocument},
		{Category: CategoryHardFail, Eval: missingDocType},
		{ID: "R007", Category: CategoryHardFail, Eval: panMalformed},
		{ID: "R007", Category: CategoryHardFail, Eval: panSurnameMismatch},
		{ID: "R008", Category: CategoryHardFail, Eval: dobInFuture},
		{ID: "R009", Category: CategoryHardFail, Eval: issueAfterExpiry},

		// --- soft-additive group ---
		{ID: "R002", Category: CategorySoft, Eval: highRiskJurisdiction(upper)},
		{ID: "R005", Category: CategorySoft, Eval: watchlistHit},
		{ID: "R006", Category: CategorySoft, Eval: poorImageQuality},

		// --- escalation group ---
		{ID: "R010", Category: CategoryEscalation, Eval: longValidityWindow},
		{ID: "R011", Category: CategoryEscalation, Eval: suspiciousNameChars},
		{ID: "R014", Category: CategoryEscalation, Eval: shortDocNumber},
		{ID: "R016", Category: CategoryEscalation, Eval: badAddress},
		{Category: CategoryEscalation, Eval: manualEscalation},
	}
}

func reject(message string) *Delta {
	return &Delta{
		Terminal:  true,
		SetPoints: hardFailScore,
		Status:    StatusRejected,
		Flags:     []Flag{{Message: message}},
	}
}

// expiredDocument rejects documents whose expiry date precedes the reference
// date. An unparseable expiry fails open here; the issue/expiry format flag
// is raised by issueAfterExpiry instead.
func expiredDocument(rec *document.Record, ref time.Time) *Delta {
	expiry, ok := parseDate(rec.ExpiryDate)
	if !ok {
		return nil
	}
	if expiry.Before(ref) {
		d := reject(fmt.Sprintf("Document expired on %s", document.String(rec.ExpiryDate)))
		d.Flags[0].RuleID = "R001"
		return d
	}
	return nil
}

func missingDocType(rec *document.Record, _ time.Time) *Delta {
	if rec.DocTypeResolved() {
		return nil
	}
	return reject("Missing document type")
}

// panNumber returns the document number when it is plausibly a PAN: upper-cased,
// 10 characters. Format correctness is checked by the rules themselves.
func panNumber(rec *document.Record) (string, bool) {
	n := strings.ToUpper(strings.TrimSpace(document.String(rec.DocNumber)))
	if n == "" {
		return "", false
	}
	return n, true
}

// panMalformed rejects PAN-type documents whose number does not match the
// 5-letters + 4-digits + 1-letter format.
func panMalformed(rec *document.Record, _ time.Time) *Delta {
	if !isPANDocument(rec) {
		return nil
	}
	n, ok := panNumber(rec)
	if !ok {
		return nil
	}
	if !panFormat.MatchString(n) {
		d := reject("Invalid PAN format")
		d.Flags[0].RuleID = "R007"
		return d
	}
	return nil
}

// panSurnameMismatch rejects a well-formed PAN whose fifth letter does not
// match the initial of the normalized surname. Skipped when the surname is
// unknown.
func panSurnameMismatch(rec *document.Record, _ time.Time) *Delta {
	if !isPANDocument(rec) {
		return nil
	}
	n, ok := panNumber(rec)
	if !ok || !panFormat.MatchString(n) {
		return nil
	}
	surname := rec.NormalizedSurname()
	if surname == "" {
		return nil
	}
	if n[4] != surname[0] {
		d := reject("PAN surname mismatch (possible tampering)")
		d.Flags[0].RuleID = "R007"
		return d
	}
	return nil
}

func isPANDocument(rec *document.Record) bool {
	t := strings.ToUpper(strings.TrimSpace(document.String(rec.DocType)))
	return t == "PAN" || t == "PAN CARD"
}

func dobInFuture(rec *document.Record, ref time.Time) *Delta {
	s := strings.TrimSpace(document.String(rec.DOB))
	if s == "" {
		return nil
	}
	dob, ok := parseDate(rec.DOB)
	if !ok {
		// Fail open: bad format is flagged, not rejected.
		return &Delta{Flags: []Flag{{RuleID: "R008", Message: "Invalid DOB format"}}}
	}
	if dob.After(ref) {
		d := reject("DOB is in the future (tampering suspected)")
		d.Flags[0].RuleID = "R008"
		return d
	}
	return nil
}

func issueAfterExpiry(rec *document.Record, _ time.Time) *Delta {
	issueRaw := strings.TrimSpace(document.String(rec.IssueDate))
	expiryRaw := strings.TrimSpace(document.String(rec.ExpiryDate))
	if issueRaw == "" || expiryRaw == "" {
		return nil
	}
	issue, okIssue := parseDate(rec.IssueDate)
	expiry, okExpiry := parseDate(rec.ExpiryDate)
	if !okIssue || !okExpiry {
		return &Delta{Flags: []Flag{{RuleID: "R009", Message: "Invalid issue/expiry date format"}}}
	}
	if issue.After(expiry) {
		d := reject("Issue date after expiry date (tampering suspected)")
		d.Flags[0].RuleID = "R009"
		return d
	}
	return nil
}

// highRiskJurisdiction adds 20 points and forces Rejected when the country
// code is in the configured set or a jurisdiction keyword appears in the
// place of birth or address. One delta regardless of how many signals match;
// later rules still run (status simply cannot climb back down).
func highRiskJurisdiction(jurisdictions []string) func(*document.Record, time.Time) *Delta {
	return func(rec *document.Record, _ time.Time) *Delta {
		country := strings.ToUpper(strings.TrimSpace(document.String(rec.CountryCode)))
		place := strings.ToUpper(document.String(rec.PlaceOfBirth))
		address := strings.ToUpper(document.String(rec.Address))

		matched := false
		for _, j := range jurisdictions {
			if j == "" {
				continue
			}
			if country == j {
				matched = true
				break
			}
			if (place != "" && strings.Contains(place, j)) ||
				(address != "" && strings.Contains(address, j)) {
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}
		return &Delta{
			AddPoints: 20,
			Status:    StatusRejected,
			Flags:     []Flag{{RuleID: "R002", Message: "High-risk country"}},
		}
	}
}

func watchlistHit(rec *document.Record, _ time.Time) *Delta {
	if rec.WatchlistMatchScore <= 0.5 {
		return nil
	}
	return &Delta{
		AddPoints: 30,
		Flags:     []Flag{{RuleID: "R005", Message: "Watchlist hit"}},
	}
}

func poorImageQuality(rec *document.Record, _ time.Time) *Delta {
	iq := rec.ImageQuality
	if iq == nil {
		return nil
	}
	blurry := iq.BlurScore != nil && *iq.BlurScore > 0.60
	washedOut := iq.ContrastScore != nil && *iq.ContrastScore < 0.30
	if !blurry && !washedOut {
		return nil
	}
	return &Delta{
		AddPoints: 15,
		Flags:     []Flag{{RuleID: "R006", Message: "Poor image quality"}},
	}
}

func escalate(ruleID, message string) *Delta {
	return &Delta{
		Status: StatusEscalate,
		Flags:  []Flag{{RuleID: ruleID, Message: message}},
	}
}

func longValidityWindow(rec *document.Record, ref time.Time) *Delta {
	expiry, ok := parseDate(rec.ExpiryDate)
	if !ok {
		return nil
	}
	if expiry.Sub(ref) > time.Duration(maxValidYears)*365*24*time.Hour {
		return escalate("R010", "Unusually long document validity period")
	}
	return nil
}

func suspiciousNameChars(rec *document.Record, _ time.Time) *Delta {
	fields := []struct {
		name  string
		value *string
	}{
		{"first_name", rec.FirstName},
		{"last_name", rec.LastName},
		{"father_name", rec.FatherName},
		{"mother_name", rec.MotherName},
	}

	var delta *Delta
	for _, f := range fields {
		v := document.String(f.value)
		if v == "" {
			continue
		}
		if nonNameChars.MatchString(strings.ToUpper(v)) {
			d := escalate("R011", fmt.Sprintf("Suspicious characters in %s (tampering suspected)", f.name))
			if delta == nil {
				delta = d
			} else {
				delta.Flags = append(delta.Flags, d.Flags...)
			}
		}
	}
	return delta
}

func shortDocNumber(rec *document.Record, _ time.Time) *Delta {
	n := document.String(rec.DocNumber)
	if n == "" || len(n) >= 6 {
		return nil
	}
	return escalate("R014", "Suspiciously short document number")
}

// badAddress escalates when the address is digits-only or missing entirely.
func badAddress(rec *document.Record, _ time.Time) *Delta {
	addr := strings.TrimSpace(document.String(rec.Address))
	if addr == "" {
		return escalate("R016", "Missing address field")
	}
	if digitsOnly.MatchString(addr) {
		return escalate("R016", "Address contains only digits (tampering suspected)")
	}
	return nil
}

func manualEscalation(rec *document.Record, _ time.Time) *Delta {
	if !rec.Escalate {
		return nil
	}
	return escalate("", "Escalated for manual review")
}
