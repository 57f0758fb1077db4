// Package document defines the canonical document record produced by
// structured extraction and consumed by the validation engine, plus the raw
// OCR field bag the extraction service supplies per page.
package document

import "strings"

// ImageQuality carries per-page quality scores in [0, 1]. Pointers encode
// "not measured", which rules must treat as never firing.
type ImageQuality struct {
	BlurScore     *float64 `json:"blur_score"`
	ContrastScore *float64 `json:"contrast_score"`
}

// Record is the normalized document attribute set, independent of original OCR
// phrasing. It is created once after extraction and never mutated by the
// validation engine; all string fields are nullable and all dates are
// calendar dates in YYYY-MM-DD form.
type Record struct {
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

	// Carried through from the raw field bag when the model omits them.
	ImageQuality      *ImageQuality `json:"image_quality,omitempty"`
	OCRConfidenceMean *float64      `json:"ocr_confidence_mean,omitempty"`
	Page              int           `json:"page,omitempty"`

	// WatchlistMatchScore is computed by the watchlist matcher at record
	// creation time, rounded to 2 decimals.
	WatchlistMatchScore float64 `json:"watchlist_match_score"`

	// Escalate is an externally supplied manual-review request.
	Escalate bool `json:"escalate,omitempty"`
}

// RawFields is the per-page field bag supplied by the upstream OCR service.
type RawFields struct {
	RawText             string        `json:"raw_text"`
	DocNumberCandidates []string      `json:"doc_number_candidates"`
	NameGuess           string        `json:"name_guess"`
	DOBCandidates       []string      `json:"dob_candidates"`
	FatherNameGuess     string        `json:"father_name_guess"`
	DocType             string        `json:"doc_type"`
	DocNumber           string        `json:"doc_number"`
	DOB                 string        `json:"dob"`
	ImageQuality        *ImageQuality `json:"image_quality"`
	OCRConfMean         *float64      `json:"ocr_conf_mean"`
	Page                int           `json:"page"`
	Escalate            bool          `json:"escalate,omitempty"`
}

// String dereferences a nullable string field, returning "" for nil.
func String(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Ptr returns a pointer to s, or nil when s is blank after trimming. It keeps
// record construction sites terse.
func Ptr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// HasName reports whether both name components are present and non-blank.
func (r *Record) HasName() bool {
	return strings.TrimSpace(String(r.FirstName)) != "" &&
		strings.TrimSpace(String(r.LastName)) != ""
}

// NormalizedName returns the case-folded, trimmed first+last concatenation
// used by the watchlist matcher and the consistency check. Empty when either
// component is missing.
func (r *Record) NormalizedName() string {
	if !r.HasName() {
		return ""
	}
	first := strings.ToUpper(strings.TrimSpace(String(r.FirstName)))
	last := strings.ToUpper(strings.TrimSpace(String(r.LastName)))
	return first + last
}

// NormalizedSurname returns the upper-cased, trimmed last name, or "".
func (r *Record) NormalizedSurname() string {
	return strings.ToUpper(strings.TrimSpace(String(r.LastName)))
}

// DocTypeResolved reports whether the document type is present and not the
// extraction placeholder "Unknown".
func (r *Record) DocTypeResolved() bool {
	t := strings.TrimSpace(String(r.DocType))
	return t != "" && !strings.EqualFold(t, "unknown")
}
