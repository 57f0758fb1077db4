//go:build integration

package docstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"veridoc/internal/docstore"
	"veridoc/internal/document"
	"veridoc/internal/validation"
	"veridoc/pkg/platform/sentinel"
	"veridoc/pkg/testutil/containers"
)

const envelopeSchema = `
CREATE TABLE IF NOT EXISTS document_envelopes (
    collection  TEXT NOT NULL,
    doc_type    TEXT NOT NULL,
    doc_number  TEXT NOT NULL,
    full_name   TEXT NOT NULL,
    payload     JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (collection, doc_type, doc_number, full_name)
)`

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *docstore.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), envelopeSchema)
	s.store = docstore.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "document_envelopes")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) entry(docType, number string) docstore.Entry {
	return docstore.Entry{
		Document: &document.Record{
			DocType:   document.Ptr(docType),
			DocNumber: document.Ptr(number),
			FirstName: document.Ptr("John"),
			LastName:  document.Ptr("Doe"),
		},
		Validation: validation.Result{Status: validation.StatusPass, Flags: []validation.Flag{}},
	}
}

func (s *PostgresStoreSuite) TestInsertAndFind() {
	ctx := context.Background()
	entry := s.entry("Passport", "AB123456")

	inserted, err := s.store.InsertIfAbsent(ctx, entry)
	s.Require().NoError(err)
	s.True(inserted)

	found, err := s.store.Find(ctx, docstore.KeyOf(entry.Document))
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal("Passport", document.String(found.Document.DocType))
	s.Equal(validation.StatusPass, found.Validation.Status)
}

func (s *PostgresStoreSuite) TestDuplicateInsertIsNoOp() {
	ctx := context.Background()
	entry := s.entry("PAN", "ABCDS1234F")

	inserted, err := s.store.InsertIfAbsent(ctx, entry)
	s.Require().NoError(err)
	s.True(inserted)

	inserted, err = s.store.InsertIfAbsent(ctx, entry)
	s.Require().NoError(err)
	s.False(inserted)
}

func (s *PostgresStoreSuite) TestFindMissingReturnsNotFound() {
	found, err := s.store.Find(context.Background(), docstore.Key{
		DocType: "passport", DocNumber: "ZZ000000", FullName: "NOBODY",
	})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Nil(found)
}

// TestConcurrentInsert verifies exactly one writer wins under contention.
func (s *PostgresStoreSuite) TestConcurrentInsert() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var insertCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := s.store.InsertIfAbsent(ctx, s.entry("Aadhaar", "1234 5678 9012"))
			s.NoError(err)
			if inserted {
				insertCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), insertCount.Load())
}
