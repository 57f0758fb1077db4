package extraction

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"veridoc/internal/document"
	"veridoc/internal/extraction/metrics"
	"veridoc/internal/validation"
	"veridoc/pkg/platform/circuit"
)

// Client is the minimal surface of the generative text service. The returned
// text is untrusted and may be arbitrarily malformed.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config tunes the requester. Zero values use the defaults below.
type Config struct {
	// Timeout bounds each generative call.
	Timeout time.Duration
	// MaxResponseBytes marks longer responses as degraded prose.
	MaxResponseBytes int
	// ReasoningMarkers are case-insensitive substrings that indicate the
	// model drifted into step-by-step prose instead of compact JSON.
	ReasoningMarkers []string
}

const (
	defaultTimeout          = 10 * time.Second
	defaultMaxResponseBytes = 2048

	// While the breaker is open, every probeEvery-th request still tries the
	// primary path so the breaker can close again.
	probeEvery = 5
)

func defaultReasoningMarkers() []string {
	return []string{"step by step", "let me", "looking at"}
}

// Outcome is the requester's total result: exactly one of Record or
// Diagnostic is set. The caller never sees an error.
type Outcome struct {
	Record     *document.Record
	Diagnostic *validation.Diagnostic
}

// Requester converts one page's raw field bag into a canonical record via the
// generative service, self-repairing malformed output and falling back to a
// pure deterministic assessment on any failure.
type Requester struct {
	client  Client
	cfg     Config
	repair  Repairer
	breaker *circuit.Breaker
	cache   RecordCache
	metrics *metrics.Metrics
	logger  *slog.Logger

	skipped atomic.Uint64
}

// Option configures a Requester.
type Option func(*Requester)

// WithCache memoizes structured records across calls.
func WithCache(cache RecordCache) Option {
	return func(r *Requester) { r.cache = cache }
}

// WithMetrics attaches extraction metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Requester) { r.metrics = m }
}

// WithRepairer replaces the default repair chain.
func WithRepairer(rep Repairer) Option {
	return func(r *Requester) { r.repair = rep }
}

// NewRequester builds a requester around the given client.
func NewRequester(client Client, cfg Config, logger *slog.Logger, opts ...Option) *Requester {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = defaultMaxResponseBytes
	}
	if len(cfg.ReasoningMarkers) == 0 {
		cfg.ReasoningMarkers = defaultReasoningMarkers()
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Requester{
		client:  client,
		cfg:     cfg,
		repair:  DefaultRepairers(),
		breaker: circuit.New("extraction"),
		logger:  logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Structure resolves one raw field bag into a canonical record or an
// explicit diagnostic. It never blocks past the configured timeout and never
// returns an error: every failure routes through the deterministic fallback.
func (r *Requester) Structure(ctx context.Context, raw document.RawFields) Outcome {
	if rec := r.fromCache(ctx, raw); rec != nil {
		r.metrics.IncrementOutcome("cached")
		return Outcome{Record: rec}
	}

	if r.breaker.IsOpen() && r.skipped.Add(1)%probeEvery != 0 {
		r.logger.DebugContext(ctx, "extraction breaker open, using fallback", "page", raw.Page)
		return r.fallback(ctx, raw)
	}

	text, ok := r.generate(ctx, raw)
	if !ok {
		return r.fallback(ctx, raw)
	}

	if signal := r.degradationSignal(text); signal != "" {
		r.metrics.IncrementDegraded(signal)
		r.logger.WarnContext(ctx, "degraded generative response, using fallback",
			"signal", signal, "length", len(text), "page", raw.Page)
		return r.fallback(ctx, raw)
	}

	rec, path := r.parse(text, raw)
	if rec == nil {
		return r.fallback(ctx, raw)
	}
	r.metrics.IncrementOutcome(path)
	r.toCache(ctx, raw, rec)
	return Outcome{Record: rec}
}

func (r *Requester) generate(ctx context.Context, raw document.RawFields) (string, bool) {
	prompt, err := BuildPrompt(raw)
	if err != nil {
		r.logger.ErrorContext(ctx, "build extraction prompt", "error", err)
		return "", false
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := r.client.Generate(callCtx, prompt)
	r.metrics.ObserveGenerateLatency(time.Since(start))
	if err != nil {
		_, change := r.breaker.RecordFailure()
		if change.Opened {
			r.metrics.IncrementBreakerTransition("opened")
			r.logger.WarnContext(ctx, "extraction breaker opened",
				"error", err, "category", string(CategoryOf(err)))
		} else {
			r.logger.WarnContext(ctx, "generative call failed, using fallback",
				"error", err, "category", string(CategoryOf(err)), "page", raw.Page)
		}
		return "", false
	}
	_, change := r.breaker.RecordSuccess()
	if change.Closed {
		r.metrics.IncrementBreakerTransition("closed")
		r.logger.InfoContext(ctx, "extraction breaker closed")
	}
	return text, true
}

// degradationSignal reports why a response must not be parsed, or "" when it
// looks like compact JSON.
func (r *Requester) degradationSignal(text string) string {
	if len(text) > r.cfg.MaxResponseBytes {
		return "too_long"
	}
	lower := strings.ToLower(text)
	for _, marker := range r.cfg.ReasoningMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return "reasoning"
		}
	}
	return ""
}

// parse applies the layered strategy: fenced block, first balanced object,
// then text-level repair of the unterminated tail.
func (r *Requester) parse(text string, raw document.RawFields) (*document.Record, string) {
	if candidate, ok := ExtractFenced(text); ok {
		if rec, err := decodeRecord(candidate, raw); err == nil {
			return rec, "parsed"
		}
	}
	candidate, balanced := ExtractBalanced(text)
	if balanced {
		if rec, err := decodeRecord(candidate, raw); err == nil {
			return rec, "parsed"
		}
	} else {
		start := strings.IndexByte(text, '{')
		if start < 0 {
			return nil, ""
		}
		candidate = strings.TrimSpace(text[start:])
	}
	repaired, changed := r.repair.Repair(candidate)
	if !changed {
		return nil, ""
	}
	rec, err := decodeRecord(repaired, raw)
	if err != nil {
		return nil, ""
	}
	return rec, "repaired"
}

// fallback is the pure path: same bag in, same record out. A nil record
// means even the document type could not be resolved, which yields the fixed
// diagnostic envelope instead.
func (r *Requester) fallback(ctx context.Context, raw document.RawFields) Outcome {
	rec := Fallback(raw)
	if rec == nil {
		r.metrics.IncrementOutcome("diagnostic")
		d := validation.NewDiagnostic("document type unresolved after fallback")
		return Outcome{Diagnostic: &d}
	}
	// Fallback records are not cached: the failure may be transient and the
	// generative path should be retried on the next submission.
	r.metrics.IncrementOutcome("fallback")
	return Outcome{Record: rec}
}

func (r *Requester) fromCache(ctx context.Context, raw document.RawFields) *document.Record {
	if r.cache == nil {
		return nil
	}
	rec, err := r.cache.Find(ctx, raw)
	if err != nil {
		r.metrics.IncrementCacheLookup("error")
		r.logger.WarnContext(ctx, "record cache lookup failed", "error", err)
		return nil
	}
	if rec == nil {
		r.metrics.IncrementCacheLookup("miss")
		return nil
	}
	r.metrics.IncrementCacheLookup("hit")
	return rec
}

func (r *Requester) toCache(ctx context.Context, raw document.RawFields, rec *document.Record) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Save(ctx, raw, rec); err != nil {
		r.logger.WarnContext(ctx, "record cache save failed", "error", err)
	}
}
