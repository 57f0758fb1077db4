package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"veridoc/pkg/platform/sentinel"
)

// PostgresStore persists envelopes in a single table partitioned logically by
// collection name, with the natural key enforced by a unique constraint.
//
// Expected schema:
//
//	CREATE TABLE IF NOT EXISTS document_envelopes (
//	    collection  TEXT NOT NULL,
//	    doc_type    TEXT NOT NULL,
//	    doc_number  TEXT NOT NULL,
//	    full_name   TEXT NOT NULL,
//	    payload     JSONB NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (collection, doc_type, doc_number, full_name)
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed document store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Find returns the stored entry for the key, or sentinel.ErrNotFound when
// absent.
func (s *PostgresStore) Find(ctx context.Context, key Key) (*Entry, error) {
	query := `
		SELECT payload
		FROM document_envelopes
		WHERE collection = $1 AND doc_type = $2 AND doc_number = $3 AND full_name = $4
	`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query,
		key.Collection(), key.DocType, key.DocNumber, key.FullName,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document envelope: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal document envelope: %w", err)
	}
	return &entry, nil
}

// InsertIfAbsent stores the entry unless its key already exists.
// Idempotent via ON CONFLICT DO NOTHING; it reports whether a row was written.
func (s *PostgresStore) InsertIfAbsent(ctx context.Context, entry Entry) (bool, error) {
	key := KeyOf(entry.Document)

	payload, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("marshal document envelope: %w", err)
	}

	query := `
		INSERT INTO document_envelopes (collection, doc_type, doc_number, full_name, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, doc_type, doc_number, full_name) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		key.Collection(), key.DocType, key.DocNumber, key.FullName, payload,
	)
	if err != nil {
		return false, fmt.Errorf("insert document envelope: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
