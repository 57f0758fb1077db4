package extraction

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/document"
)

type fakeClient struct {
	text  string
	err   error
	calls int
}

func (f *fakeClient) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func passportBag() document.RawFields {
	return document.RawFields{
		RawText:   "REPUBLIC OF EXAMPLE PASSPORT AB123456 DOE JOHN",
		DocType:   "Passport",
		DocNumber: "AB123456",
		NameGuess: "John Doe",
		DOB:       "1990-04-01",
		Page:      1,
	}
}

func TestStructure_FencedResponse(t *testing.T) {
	client := &fakeClient{text: "```json\n" + `{
		"doc_type": "Passport",
		"doc_number": "AB123456",
		"first_name": "John",
		"last_name": "Doe",
		"dob": "1990-04-01",
		"expiry_date": "2030-01-01",
		"country_code": "AU"
	}` + "\n```"}
	r := NewRequester(client, Config{}, discardLogger())

	out := r.Structure(context.Background(), passportBag())

	require.NotNil(t, out.Record)
	assert.Nil(t, out.Diagnostic)
	assert.Equal(t, "Passport", document.String(out.Record.DocType))
	assert.Equal(t, "John", document.String(out.Record.FirstName))
	assert.Equal(t, "2030-01-01", document.String(out.Record.ExpiryDate))
	assert.Equal(t, 1, out.Record.Page)
	assert.Equal(t, 1, client.calls)
}

func TestStructure_BareObjectWithProse(t *testing.T) {
	client := &fakeClient{text: `Here is the result: {"doc_type":"PAN","doc_number":"ABCDS1234F","last_name":"Smith"}`}
	r := NewRequester(client, Config{}, discardLogger())

	out := r.Structure(context.Background(), passportBag())

	require.NotNil(t, out.Record)
	assert.Equal(t, "PAN", document.String(out.Record.DocType))
	assert.Equal(t, "Smith", document.String(out.Record.LastName))
}

func TestStructure_TruncatedEnumRepaired(t *testing.T) {
	client := &fakeClient{text: `{"doc_number":"1234 5678 9012","doc_type":"Aadh`}
	r := NewRequester(client, Config{}, discardLogger())

	out := r.Structure(context.Background(), passportBag())

	require.NotNil(t, out.Record)
	assert.Equal(t, "Aadhaar", document.String(out.Record.DocType))
	assert.Equal(t, "1234 5678 9012", document.String(out.Record.DocNumber))
}

func TestStructure_TruncatedFieldRepaired(t *testing.T) {
	client := &fakeClient{text: `{"doc_type":"Passport","doc_number":"AB123456","first_name":"Jo`}
	r := NewRequester(client, Config{}, discardLogger())

	out := r.Structure(context.Background(), passportBag())

	require.NotNil(t, out.Record)
	assert.Equal(t, "Passport", document.String(out.Record.DocType))
	assert.Equal(t, "AB123456", document.String(out.Record.DocNumber))
	assert.Nil(t, out.Record.FirstName)
}

func TestStructure_LongResponseUsesFallbackWithoutParsing(t *testing.T) {
	// A long response that contains perfectly valid JSON must still be
	// discarded before any parse attempt.
	valid := `{"doc_type":"Tax Invoice","doc_number":"INV-9"}`
	client := &fakeClient{text: valid + strings.Repeat(" ", 4096)}
	r := NewRequester(client, Config{}, discardLogger())

	out := r.Structure(context.Background(), passportBag())

	require.NotNil(t, out.Record)
	assert.Equal(t, Fallback(passportBag()), out.Record)
}

func TestStructure_ReasoningMarkersUseFallback(t *testing.T) {
	for _, text := range []string{
		`Let me think about this document step by step.`,
		`Looking at the OCR output, the type seems to be {"doc_type":"Passport"}`,
	} {
		client := &fakeClient{text: text}
		r := NewRequester(client, Config{}, discardLogger())

		out := r.Structure(context.Background(), passportBag())

		require.NotNil(t, out.Record)
		assert.Equal(t, Fallback(passportBag()), out.Record)
	}
}

func TestStructure_ClientErrorUsesFallback(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	r := NewRequester(client, Config{}, discardLogger())

	out := r.Structure(context.Background(), passportBag())

	require.NotNil(t, out.Record)
	assert.Nil(t, out.Diagnostic)
	assert.Equal(t, "John", document.String(out.Record.FirstName))
	assert.Equal(t, "Doe", document.String(out.Record.LastName))
}

func TestStructure_MissingDocTypeInResponseUsesFallback(t *testing.T) {
	client := &fakeClient{text: `{"doc_number":"AB123456","first_name":"John"}`}
	r := NewRequester(client, Config{}, discardLogger())

	out := r.Structure(context.Background(), passportBag())

	require.NotNil(t, out.Record)
	assert.Equal(t, Fallback(passportBag()), out.Record)
}

func TestStructure_DiagnosticWhenFallbackCannotResolveType(t *testing.T) {
	client := &fakeClient{err: errors.New("timeout")}
	r := NewRequester(client, Config{}, discardLogger())

	out := r.Structure(context.Background(), document.RawFields{RawText: "illegible"})

	assert.Nil(t, out.Record)
	require.NotNil(t, out.Diagnostic)
	assert.Equal(t, "Error", string(out.Diagnostic.Status))
	assert.Equal(t, 100, out.Diagnostic.RiskScore)
	assert.Equal(t, "High", out.Diagnostic.Bucket)
}

func TestStructure_FallbackPathIsIdempotent(t *testing.T) {
	client := &fakeClient{err: errors.New("unreachable")}
	r := NewRequester(client, Config{}, discardLogger())

	first := r.Structure(context.Background(), passportBag())
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, r.Structure(context.Background(), passportBag()))
	}
}

func TestStructure_BreakerOpensAfterRepeatedFailuresAndProbes(t *testing.T) {
	client := &fakeClient{err: errors.New("upstream down")}
	r := NewRequester(client, Config{}, discardLogger())

	// Five consecutive failures open the breaker.
	for i := 0; i < 5; i++ {
		out := r.Structure(context.Background(), passportBag())
		require.NotNil(t, out.Record)
	}
	assert.Equal(t, 5, client.calls)
	assert.True(t, r.breaker.IsOpen())

	// While open, calls skip the client until the periodic probe.
	for i := 0; i < 4; i++ {
		r.Structure(context.Background(), passportBag())
	}
	assert.Equal(t, 5, client.calls)

	r.Structure(context.Background(), passportBag())
	assert.Equal(t, 6, client.calls)

	// A successful probe closes the breaker again.
	client.err = nil
	client.text = `{"doc_type":"Passport","doc_number":"AB123456"}`
	for i := 0; i < 5; i++ {
		r.Structure(context.Background(), passportBag())
	}
	assert.False(t, r.breaker.IsOpen())
}

type mapCache struct {
	records map[string]*document.Record
	finds   int
	saves   int
}

func newMapCache() *mapCache {
	return &mapCache{records: make(map[string]*document.Record)}
}

func (c *mapCache) Find(_ context.Context, raw document.RawFields) (*document.Record, error) {
	c.finds++
	key, err := CacheKey(raw)
	if err != nil {
		return nil, err
	}
	return c.records[key], nil
}

func (c *mapCache) Save(_ context.Context, raw document.RawFields, rec *document.Record) error {
	c.saves++
	key, err := CacheKey(raw)
	if err != nil {
		return err
	}
	c.records[key] = rec
	return nil
}

func TestStructure_CacheShortCircuitsClient(t *testing.T) {
	client := &fakeClient{text: `{"doc_type":"Passport","doc_number":"AB123456"}`}
	cache := newMapCache()
	r := NewRequester(client, Config{}, discardLogger(), WithCache(cache))

	first := r.Structure(context.Background(), passportBag())
	require.NotNil(t, first.Record)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, cache.saves)

	second := r.Structure(context.Background(), passportBag())
	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, 1, client.calls)
}
