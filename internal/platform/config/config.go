// Package config loads all runtime configuration from the environment so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Server     Server
	Extraction Extraction
	Postgres   Postgres
	Redis      Redis
	Kafka      Kafka
	Batch      Batch
	Validation Validation
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// Extraction configures the generative structuring client.
type Extraction struct {
	GeminiAPIKey     string
	GeminiModel      string
	Timeout          time.Duration
	MaxResponseBytes int
	CacheTTL         time.Duration
}

// Postgres configures the envelope store. An empty DSN selects the in-memory
// store.
type Postgres struct {
	DSN string
}

// Redis configures the extraction record cache. An empty URL disables it.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the audit sink. Empty seeds disable it.
type Kafka struct {
	Seeds []string
	Topic string
}

// Batch configures the evaluation pipeline.
type Batch struct {
	Workers     int
	AuditBuffer int
}

// Validation configures the rule engine.
type Validation struct {
	// HighRiskJurisdictions overrides the built-in sanctions list when set.
	HighRiskJurisdictions []string
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envOr("VERIDOC_ADDR", ":8080"),
			JWTSigningKey: envOr("VERIDOC_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     envOr("VERIDOC_JWT_ISSUER", "veridoc"),
			JWTAudience:   envOr("VERIDOC_JWT_AUDIENCE", "veridoc-api"),
		},
		Extraction: Extraction{
			GeminiAPIKey:     os.Getenv("VERIDOC_GEMINI_API_KEY"),
			GeminiModel:      envOr("VERIDOC_GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout:          envDuration("VERIDOC_EXTRACTION_TIMEOUT", 10*time.Second),
			MaxResponseBytes: envInt("VERIDOC_EXTRACTION_MAX_RESPONSE_BYTES", 2048),
			CacheTTL:         envDuration("VERIDOC_EXTRACTION_CACHE_TTL", 24*time.Hour),
		},
		Postgres: Postgres{
			DSN: os.Getenv("VERIDOC_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("VERIDOC_REDIS_URL"),
			PoolSize:     envInt("VERIDOC_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("VERIDOC_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("VERIDOC_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("VERIDOC_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("VERIDOC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Seeds: envList("VERIDOC_KAFKA_SEEDS"),
			Topic: envOr("VERIDOC_KAFKA_AUDIT_TOPIC", "veridoc.audit"),
		},
		Batch: Batch{
			Workers:     envInt("VERIDOC_BATCH_WORKERS", 4),
			AuditBuffer: envInt("VERIDOC_AUDIT_BUFFER", 256),
		},
		Validation: Validation{
			HighRiskJurisdictions: envList("VERIDOC_HIGH_RISK_JURISDICTIONS"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
