package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"veridoc/internal/document"
)

const (
	// Redis key prefix for structured records
	recordKeyPrefix = "ext:record:"

	defaultCacheTTL = 24 * time.Hour
)

// RecordCache memoizes structured records keyed by a digest of the raw field
// bag, so reprocessing the same page skips the generative call.
type RecordCache interface {
	Find(ctx context.Context, raw document.RawFields) (*document.Record, error)
	Save(ctx context.Context, raw document.RawFields, rec *document.Record) error
}

// RedisRecordCache is a Redis-backed RecordCache for distributed
// deployments where multiple instances process overlapping submissions.
type RedisRecordCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisRecordCacheOption configures a RedisRecordCache instance.
type RedisRecordCacheOption func(*RedisRecordCache)

// WithTTL overrides the default record expiry.
func WithTTL(ttl time.Duration) RedisRecordCacheOption {
	return func(c *RedisRecordCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedisRecordCache constructs a Redis-backed record cache.
func NewRedisRecordCache(client *redis.Client, opts ...RedisRecordCacheOption) *RedisRecordCache {
	c := &RedisRecordCache{
		client: client,
		ttl:    defaultCacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// CacheKey digests the raw field bag into a stable cache key.
func CacheKey(raw document.RawFields) (string, error) {
	payload, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return recordKeyPrefix + hex.EncodeToString(sum[:]), nil
}

// Find returns the cached record for this bag, or nil on a miss.
func (c *RedisRecordCache) Find(ctx context.Context, raw document.RawFields) (*document.Record, error) {
	key, err := CacheKey(raw)
	if err != nil {
		return nil, err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec document.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save stores a structured record with TTL.
func (c *RedisRecordCache) Save(ctx context.Context, raw document.RawFields, rec *document.Record) error {
	key, err := CacheKey(raw)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}
