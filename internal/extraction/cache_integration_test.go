//go:build integration

package extraction_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veridoc/internal/document"
	"veridoc/internal/extraction"
	"veridoc/pkg/testutil/containers"
)

type RedisRecordCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *extraction.RedisRecordCache
}

func TestRedisRecordCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisRecordCacheSuite))
}

func (s *RedisRecordCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = extraction.NewRedisRecordCache(s.redis.Client)
}

func (s *RedisRecordCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func passportBag(page int) document.RawFields {
	return document.RawFields{
		RawText:   "PASSPORT ... MORGAN, ALICE",
		DocType:   "Passport",
		DocNumber: "X1234567",
		NameGuess: "Alice Morgan",
		DOB:       "1990-05-04",
		Page:      page,
	}
}

func (s *RedisRecordCacheSuite) TestSaveAndFind() {
	ctx := context.Background()
	bag := passportBag(1)
	rec := &document.Record{
		DocType:   document.Ptr("Passport"),
		DocNumber: document.Ptr("X1234567"),
		FirstName: document.Ptr("Alice"),
		LastName:  document.Ptr("Morgan"),
		DOB:       document.Ptr("1990-05-04"),
		Page:      1,
	}

	s.Require().NoError(s.cache.Save(ctx, bag, rec))

	found, err := s.cache.Find(ctx, bag)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(rec, found)
}

func (s *RedisRecordCacheSuite) TestMissReturnsNil() {
	found, err := s.cache.Find(context.Background(), passportBag(9))
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *RedisRecordCacheSuite) TestDistinctBagsDistinctKeys() {
	ctx := context.Background()
	rec := &document.Record{DocType: document.Ptr("Passport"), Page: 1}

	s.Require().NoError(s.cache.Save(ctx, passportBag(1), rec))

	found, err := s.cache.Find(ctx, passportBag(2))
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *RedisRecordCacheSuite) TestTTLExpiry() {
	ctx := context.Background()
	short := extraction.NewRedisRecordCache(s.redis.Client, extraction.WithTTL(time.Second))
	bag := passportBag(1)
	rec := &document.Record{DocType: document.Ptr("Passport"), Page: 1}

	s.Require().NoError(short.Save(ctx, bag, rec))
	time.Sleep(1500 * time.Millisecond)

	found, err := short.Find(ctx, bag)
	s.Require().NoError(err)
	s.Nil(found)
}
