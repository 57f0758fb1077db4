// Package docstore persists finalized document envelopes, one keyed
// collection per document type.
package docstore

import (
	"context"
	"strings"

	"veridoc/internal/document"
	"veridoc/internal/validation"
)

// Collection names by document type. Unrecognized types land in the generic
// collection.
const (
	CollectionAadhaar   = "aadhaar"
	CollectionPassport  = "passport"
	CollectionPAN       = "pan"
	CollectionInvoice   = "invoice"
	CollectionDocuments = "documents"
)

// Entry is the persisted shape: the canonical record plus its final
// per-document validation result.
type Entry struct {
	Document   *document.Record  `json:"document"`
	Validation validation.Result `json:"validation"`
}

// Key is a document's natural identity. Duplicate submissions of the same
// document resolve to the same key.
type Key struct {
	DocType   string
	DocNumber string
	FullName  string
}

// KeyOf derives the natural key from a record.
func KeyOf(rec *document.Record) Key {
	return Key{
		DocType:   strings.ToLower(strings.TrimSpace(document.String(rec.DocType))),
		DocNumber: strings.TrimSpace(document.String(rec.DocNumber)),
		FullName:  rec.NormalizedName(),
	}
}

// Collection returns the collection this key belongs to.
func (k Key) Collection() string {
	switch k.DocType {
	case "aadhaar":
		return CollectionAadhaar
	case "passport":
		return CollectionPassport
	case "pan", "pan card":
		return CollectionPAN
	case "tax invoice":
		return CollectionInvoice
	default:
		return CollectionDocuments
	}
}

// Store is the idempotent persistence contract: lookup by natural key and
// insert-if-absent. Duplicate inserts are no-ops, never conflicts.
type Store interface {
	// Find returns the stored entry for the key, or sentinel.ErrNotFound
	// when absent.
	Find(ctx context.Context, key Key) (*Entry, error)

	// InsertIfAbsent stores the entry unless its key already exists.
	// It reports whether a new row was written.
	InsertIfAbsent(ctx context.Context, entry Entry) (bool, error)
}
