package extraction

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"veridoc/internal/document"
)

var (
	// ErrNoJSON means no candidate JSON object could be located in the text.
	ErrNoJSON = errors.New("extraction: no json object in response")
	// ErrMissingDocType means a record parsed but carries no usable doc_type.
	ErrMissingDocType = errors.New("extraction: record missing document type")
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// recordPayload is the wire shape the generative service is asked to emit.
// Everything is nullable; normalization happens after decode.
type recordPayload struct {
	DocType      *string `json:"doc_type"`
	DocNumber    *string `json:"doc_number"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	DOB          *string `json:"dob"`
	FatherName   *string `json:"father_name"`
	MotherName   *string `json:"mother_name"`
	PlaceOfBirth *string `json:"place_of_birth"`
	IssueDate    *string `json:"issue_date"`
	ExpiryDate   *string `json:"expiry_date"`
	Address      *string `json:"address"`
	CountryCode  *string `json:"country_code"`
}

// ExtractFenced returns the first fenced JSON block in the text.
func ExtractFenced(text string) (string, bool) {
	m := fencedBlock.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractBalanced returns the first brace-balanced object in the text,
// tracking string literals and escapes so braces inside values do not count.
func ExtractBalanced(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// decodeRecord parses candidate JSON into a canonical record. The parsed
// record must at least resolve a document type.
func decodeRecord(candidate string, raw document.RawFields) (*document.Record, error) {
	var p recordPayload
	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return nil, err
	}
	rec := &document.Record{
		DocType:      clean(p.DocType),
		DocNumber:    clean(p.DocNumber),
		FirstName:    clean(p.FirstName),
		LastName:     clean(p.LastName),
		DOB:          clean(p.DOB),
		FatherName:   clean(p.FatherName),
		MotherName:   clean(p.MotherName),
		PlaceOfBirth: clean(p.PlaceOfBirth),
		IssueDate:    clean(p.IssueDate),
		ExpiryDate:   clean(p.ExpiryDate),
		Address:      clean(p.Address),
		CountryCode:  clean(p.CountryCode),
	}
	carryOver(rec, raw)
	if !rec.DocTypeResolved() {
		return nil, ErrMissingDocType
	}
	return rec, nil
}

// carryOver copies the passthrough fields the generative service never sees
// back onto the structured record.
func carryOver(rec *document.Record, raw document.RawFields) {
	rec.ImageQuality = raw.ImageQuality
	rec.OCRConfidenceMean = raw.OCRConfMean
	rec.Page = raw.Page
	rec.Escalate = raw.Escalate
}

func clean(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}
