package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/document"
)

func TestExtractFenced(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "json fence",
			text: "here you go\n```json\n{\"doc_type\":\"Passport\"}\n```\nthanks",
			want: `{"doc_type":"Passport"}`,
			ok:   true,
		},
		{
			name: "bare fence",
			text: "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "no fence",
			text: `{"doc_type":"Passport"}`,
		},
		{
			name: "unterminated fence",
			text: "```json\n{\"doc_type\":\"Pass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFenced(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "object with prose around it",
			text: `Sure! {"doc_type":"PAN","doc_number":"ABCDE1234F"} hope that helps`,
			want: `{"doc_type":"PAN","doc_number":"ABCDE1234F"}`,
			ok:   true,
		},
		{
			name: "nested object",
			text: `{"a":{"b":1},"c":2}`,
			want: `{"a":{"b":1},"c":2}`,
			ok:   true,
		},
		{
			name: "braces inside string values do not count",
			text: `{"address":"12 {Baker} St"} trailing`,
			want: `{"address":"12 {Baker} St"}`,
			ok:   true,
		},
		{
			name: "escaped quote inside string",
			text: `{"name":"O\"Brien"}`,
			want: `{"name":"O\"Brien"}`,
			ok:   true,
		},
		{
			name: "truncated object",
			text: `{"doc_type":"Passport","doc_number":"AB12`,
		},
		{
			name: "no object",
			text: "nothing here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBalanced(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	raw := document.RawFields{
		ImageQuality: &document.ImageQuality{BlurScore: fptr(0.2)},
		Page:         3,
		Escalate:     true,
	}

	t.Run("full record with carryover", func(t *testing.T) {
		rec, err := decodeRecord(`{
			"doc_type": "Passport",
			"doc_number": "AB123456",
			"first_name": "John",
			"last_name": "Doe",
			"dob": "1990-04-01",
			"mother_name": null,
			"country_code": "AU"
		}`, raw)

		require.NoError(t, err)
		assert.Equal(t, "Passport", document.String(rec.DocType))
		assert.Equal(t, "John", document.String(rec.FirstName))
		assert.Nil(t, rec.MotherName)
		assert.Equal(t, "AU", document.String(rec.CountryCode))
		assert.Equal(t, 3, rec.Page)
		assert.True(t, rec.Escalate)
		require.NotNil(t, rec.ImageQuality)
		assert.Equal(t, 0.2, *rec.ImageQuality.BlurScore)
	})

	t.Run("literal null string treated as missing", func(t *testing.T) {
		rec, err := decodeRecord(`{"doc_type":"PAN","dob":"null"}`, raw)

		require.NoError(t, err)
		assert.Nil(t, rec.DOB)
	})

	t.Run("missing doc type", func(t *testing.T) {
		_, err := decodeRecord(`{"doc_number":"AB123456"}`, raw)
		assert.ErrorIs(t, err, ErrMissingDocType)
	})

	t.Run("unknown doc type", func(t *testing.T) {
		_, err := decodeRecord(`{"doc_type":"Unknown"}`, raw)
		assert.ErrorIs(t, err, ErrMissingDocType)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := decodeRecord(`{"doc_type":`, raw)
		assert.Error(t, err)
	})
}

func fptr(f float64) *float64 { return &f }
