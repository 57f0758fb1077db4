package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/document"
)

func TestFallback(t *testing.T) {
	t.Run("builds record from raw fields", func(t *testing.T) {
		raw := document.RawFields{
			DocType:         "Passport",
			DocNumber:       "AB123456",
			NameGuess:       "John Michael Doe",
			DOB:             "1990-04-01",
			FatherNameGuess: "Richard Doe",
			ImageQuality:    &document.ImageQuality{ContrastScore: fptr(0.8)},
			OCRConfMean:     fptr(0.91),
			Page:            2,
		}

		rec := Fallback(raw)

		require.NotNil(t, rec)
		assert.Equal(t, "Passport", document.String(rec.DocType))
		assert.Equal(t, "AB123456", document.String(rec.DocNumber))
		assert.Equal(t, "John", document.String(rec.FirstName))
		assert.Equal(t, "Michael Doe", document.String(rec.LastName))
		assert.Equal(t, "1990-04-01", document.String(rec.DOB))
		assert.Equal(t, "Richard Doe", document.String(rec.FatherName))
		assert.Equal(t, 2, rec.Page)
		require.NotNil(t, rec.OCRConfidenceMean)
		assert.Equal(t, 0.91, *rec.OCRConfidenceMean)
	})

	t.Run("falls back to candidate lists", func(t *testing.T) {
		raw := document.RawFields{
			DocType:             "Aadhaar",
			DocNumberCandidates: []string{"", "1234 5678 9012"},
			DOBCandidates:       []string{"1985-11-30"},
		}

		rec := Fallback(raw)

		require.NotNil(t, rec)
		assert.Equal(t, "1234 5678 9012", document.String(rec.DocNumber))
		assert.Equal(t, "1985-11-30", document.String(rec.DOB))
	})

	t.Run("single token name guess yields no name pair", func(t *testing.T) {
		rec := Fallback(document.RawFields{DocType: "PAN", NameGuess: "Doe"})

		require.NotNil(t, rec)
		assert.Nil(t, rec.FirstName)
		assert.Nil(t, rec.LastName)
	})

	t.Run("unresolved doc type yields nil", func(t *testing.T) {
		assert.Nil(t, Fallback(document.RawFields{}))
		assert.Nil(t, Fallback(document.RawFields{DocType: "unknown"}))
		assert.Nil(t, Fallback(document.RawFields{DocType: "  "}))
	})

	t.Run("deterministic", func(t *testing.T) {
		raw := document.RawFields{
			DocType:   "Passport",
			NameGuess: "Jane Smith",
			DOB:       "1992-02-02",
			Escalate:  true,
		}

		first := Fallback(raw)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Fallback(raw))
		}
	})
}
