package extraction

import (
	"regexp"
	"strings"
)

// Repairer attempts one text-level fix of a malformed JSON candidate. It
// returns the rewritten text and whether anything changed; it never parses.
// Keeping repairs behind this interface isolates them from decision logic so
// a schema-validation layer can replace them later.
type Repairer interface {
	Repair(candidate string) (string, bool)
}

// RepairChain applies repairers in order, feeding each one the previous
// output. Changed is true when any step rewrote the text.
type RepairChain []Repairer

func (c RepairChain) Repair(candidate string) (string, bool) {
	changed := false
	for _, r := range c {
		var ok bool
		candidate, ok = r.Repair(candidate)
		changed = changed || ok
	}
	return candidate, changed
}

// DefaultRepairers is the standard chain: drop trailing commas, complete a
// half-written document type, then truncate unterminated objects to the last
// complete field.
func DefaultRepairers() RepairChain {
	return RepairChain{
		trailingCommaRepairer{},
		enumCompletionRepairer{},
		truncationRepairer{},
	}
}

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

type trailingCommaRepairer struct{}

func (trailingCommaRepairer) Repair(candidate string) (string, bool) {
	out := trailingComma.ReplaceAllString(candidate, "$1")
	return out, out != candidate
}

// docTypeEnum lists the document types the schema instruction names; a
// truncated value is completed to the unique type it prefixes.
var docTypeEnum = []string{"Passport", "Aadhaar", "PAN", "Tax Invoice"}

type enumCompletionRepairer struct{}

func (enumCompletionRepairer) Repair(candidate string) (string, bool) {
	if strings.Count(candidate, "{") <= strings.Count(candidate, "}") {
		return candidate, false
	}
	idx := strings.LastIndex(candidate, `"doc_type":`)
	if idx < 0 {
		return candidate, false
	}
	rest := candidate[idx+len(`"doc_type":`):]
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, `"`) {
		return candidate, false
	}
	partial := rest[1:]
	if strings.Contains(partial, `"`) {
		// Value is already terminated; nothing to complete.
		return candidate, false
	}
	match := ""
	for _, v := range docTypeEnum {
		if partial != "" && strings.HasPrefix(v, partial) {
			if match != "" {
				return candidate, false
			}
			match = v
		}
	}
	if match == "" {
		return candidate, false
	}
	out := candidate[:idx] + `"doc_type":"` + match + `"` + "}"
	return out, true
}

type truncationRepairer struct{}

// Repair truncates an unterminated object back to its last complete field and
// closes it. It is the last resort before the deterministic fallback.
func (truncationRepairer) Repair(candidate string) (string, bool) {
	if strings.Count(candidate, "{") <= strings.Count(candidate, "}") {
		return candidate, false
	}
	lastQuote := strings.LastIndex(candidate, `"`)
	if lastQuote < 0 {
		return candidate, false
	}
	colon := strings.LastIndex(candidate[:lastQuote], ":")
	if colon < 0 {
		return candidate, false
	}
	comma := strings.LastIndex(candidate[:colon], ",")
	if comma < 0 {
		return candidate, false
	}
	return strings.TrimRight(candidate[:comma], ", \t\r\n") + "}", true
}
