package extraction

import (
	"encoding/json"
	"fmt"

	"veridoc/internal/document"
)

// SystemInstruction is the standing instruction sent with every structuring
// request. The generated output is still treated as untrusted text.
const SystemInstruction = `You are an expert in document information extraction for banking KYC.
Given OCR JSON of an ID/passport/bank statement, normalize it into structured JSON.
Output only valid JSON matching the schema. No explanations.`

const recordSchema = `{
  "doc_type": "...",
  "doc_number": "...",
  "first_name": "...",
  "last_name": "...",
  "dob": "...",
  "father_name": "...",
  "mother_name": "...",
  "place_of_birth": "...",
  "issue_date": "...",
  "expiry_date": "...",
  "address": "...",
  "country_code": "..."
}`

// BuildPrompt renders the structuring request for one page's raw field bag.
func BuildPrompt(raw document.RawFields) (string, error) {
	bag, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("marshal raw fields: %w", err)
	}
	return fmt.Sprintf(`Clean and extract structured details from this OCR JSON.
Ensure correct names, dates, numbers, and document type.
Return only valid JSON based on the schema provided.
If a field is missing, put null. Do not add extra commentary.

OCR JSON:
%s

SCHEMA:
%s`, bag, recordSchema), nil
}
