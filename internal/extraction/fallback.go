package extraction

import (
	"strings"

	"veridoc/internal/document"
)

// Fallback builds a canonical record straight from the raw field bag without
// any external call. It is pure and total: the same bag always yields the
// same record, and a nil record means even the document type could not be
// resolved.
func Fallback(raw document.RawFields) *document.Record {
	docType := strings.TrimSpace(raw.DocType)
	if docType == "" || strings.EqualFold(docType, "unknown") {
		return nil
	}

	rec := &document.Record{
		DocType:    document.Ptr(docType),
		DocNumber:  document.Ptr(firstNonBlank(raw.DocNumber, first(raw.DocNumberCandidates))),
		DOB:        document.Ptr(firstNonBlank(raw.DOB, first(raw.DOBCandidates))),
		FatherName: document.Ptr(strings.TrimSpace(raw.FatherNameGuess)),
	}

	if first, last, ok := splitNameGuess(raw.NameGuess); ok {
		rec.FirstName = document.Ptr(first)
		rec.LastName = document.Ptr(last)
	}

	carryOver(rec, raw)
	return rec
}

// splitNameGuess breaks a free-text name guess into first and last
// components: first token and remainder. A single token yields no usable
// name pair.
func splitNameGuess(guess string) (string, string, bool) {
	fields := strings.Fields(guess)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], strings.Join(fields[1:], " "), true
}

func first(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstNonBlank(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}
