package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"veridoc/internal/audit"
	"veridoc/internal/batch/metrics"
	"veridoc/internal/consistency"
	"veridoc/internal/docstore"
	"veridoc/internal/document"
	"veridoc/internal/extraction"
	"veridoc/internal/validation"
	"veridoc/internal/watchlist"
)

const defaultWorkers = 4

// Structurer converts one page's raw field bag into a canonical record or a
// diagnostic. Satisfied by extraction.Requester.
type Structurer interface {
	Structure(ctx context.Context, raw document.RawFields) extraction.Outcome
}

// Service runs the decisioning pipeline for submitted batches.
type Service struct {
	structurer Structurer
	engine     *validation.Engine
	matcher    *watchlist.Matcher
	store      docstore.Store
	audit      *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
	workers    int
}

// Option configures a Service.
type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithWorkers bounds the number of documents structured concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func NewService(structurer Structurer, engine *validation.Engine, matcher *watchlist.Matcher, store docstore.Store, publisher *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		structurer: structurer,
		engine:     engine,
		matcher:    matcher,
		store:      store,
		audit:      publisher,
		logger:     logger,
		tracer:     otel.Tracer("veridoc/batch"),
		workers:    defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the complete outcome of one batch evaluation.
type Result struct {
	BatchID    string     `json:"batch_id"`
	Envelopes  []Envelope `json:"documents"`
	Cumulative Cumulative `json:"cumulative_validation"`
}

// Request is one batch submission. A zero ReferenceDate evaluates against
// the current UTC time; pinning it makes reruns deterministic.
type Request struct {
	BatchID       string
	Pages         []document.RawFields
	ReferenceDate time.Time
}

// EvaluateBatch structures every page concurrently, evaluates each record,
// applies the cross-document consistency check, aggregates the cumulative
// decision, persists finalized envelopes, and emits audit events. Documents
// that cannot be structured yield diagnostic envelopes but never fail the
// batch; the only error surface is context cancellation.
func (s *Service) EvaluateBatch(ctx context.Context, req Request) (Result, error) {
	batchID := req.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}
	pages := req.Pages
	ref := req.ReferenceDate
	if ref.IsZero() {
		ref = time.Now().UTC()
	}

	ctx, span := s.tracer.Start(ctx, "batch.evaluate", trace.WithAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.documents", len(pages)),
	))
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.ObserveEvaluateLatency(time.Since(start)) }()
	s.metrics.ObserveBatchSize(len(pages))

	envelopes := make([]Envelope, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			envelopes[i] = s.evaluateDocument(gctx, page, ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	records := make([]*document.Record, len(envelopes))
	for i, env := range envelopes {
		if !env.IsError() {
			records[i] = env.Document
		}
	}
	adj := consistency.Evaluate(records)
	cum := Aggregate(envelopes, adj)

	s.persist(ctx, batchID, envelopes)
	s.publishAudit(ctx, batchID, envelopes, cum)

	for _, env := range envelopes {
		s.metrics.IncrementDocumentOutcome(s.statusOf(env))
	}
	s.metrics.IncrementBatchOutcome(string(cum.Status), validation.RiskBucket(cum.RiskScore))
	span.SetAttributes(attribute.String("batch.status", string(cum.Status)))

	s.logger.InfoContext(ctx, "batch evaluated",
		"batch_id", batchID,
		"documents", len(pages),
		"status", cum.Status,
		"risk_score", cum.RiskScore,
	)

	return Result{BatchID: batchID, Envelopes: envelopes, Cumulative: cum}, nil
}

func (s *Service) evaluateDocument(ctx context.Context, page document.RawFields, ref time.Time) Envelope {
	ctx, span := s.tracer.Start(ctx, "batch.document", trace.WithAttributes(
		attribute.String("document.type", page.DocType),
		attribute.Int("document.page", page.Page),
	))
	defer span.End()

	outcome := s.structurer.Structure(ctx, page)
	if outcome.Diagnostic != nil {
		s.logger.WarnContext(ctx, "document unextractable",
			"doc_type", page.DocType,
			"page", page.Page,
			"reason", outcome.Diagnostic.Reason,
		)
		span.SetAttributes(attribute.String("document.status", string(outcome.Diagnostic.Status)))
		return Envelope{Diagnostic: outcome.Diagnostic}
	}

	rec := outcome.Record
	rec.WatchlistMatchScore = s.matcher.Score(
		document.String(rec.FirstName),
		document.String(rec.LastName),
		rec.DOB,
	)

	res := s.engine.EvaluateAt(rec, ref)
	span.SetAttributes(attribute.String("document.status", string(res.Status)))
	return Envelope{Document: rec, Validation: &res}
}

// persist writes every finalized envelope to its document-type collection.
// Duplicates are silently skipped; store failures are logged but never fail
// the batch, the decision has already been made.
func (s *Service) persist(ctx context.Context, batchID string, envelopes []Envelope) {
	for _, env := range envelopes {
		if env.IsError() {
			continue
		}
		inserted, err := s.store.InsertIfAbsent(ctx, docstore.Entry{
			Document:   env.Document,
			Validation: *env.Validation,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "envelope persistence failed",
				"batch_id", batchID,
				"doc_type", document.String(env.Document.DocType),
				"error", err,
			)
			continue
		}
		if !inserted {
			s.logger.DebugContext(ctx, "duplicate envelope skipped",
				"batch_id", batchID,
				"doc_type", document.String(env.Document.DocType),
			)
		}
	}
}

func (s *Service) publishAudit(ctx context.Context, batchID string, envelopes []Envelope, cum Cumulative) {
	if s.audit == nil {
		return
	}
	for _, env := range envelopes {
		event := audit.Event{
			BatchID: batchID,
			Action:  audit.ActionDocumentDecided,
			Status:  s.statusOf(env),
		}
		if env.IsError() {
			event.RiskScore = env.Diagnostic.RiskScore
		} else {
			event.DocType = document.String(env.Document.DocType)
			event.Page = env.Document.Page
			event.RiskScore = env.Validation.RiskScore
			for _, flag := range env.Validation.Flags {
				event.Flags = append(event.Flags, flag.Message)
			}
		}
		if err := s.audit.Emit(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "batch_id", batchID, "error", err)
		}
	}

	event := audit.Event{
		BatchID:   batchID,
		Action:    audit.ActionBatchEvaluated,
		Status:    string(cum.Status),
		RiskScore: cum.RiskScore,
		Flags:     cum.Flags,
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "batch_id", batchID, "error", err)
	}
}

func (s *Service) statusOf(env Envelope) string {
	if env.IsError() {
		return string(env.Diagnostic.Status)
	}
	return string(env.Validation.Status)
}
