package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veridoc/internal/batch"
	"veridoc/pkg/platform/httputil"
	"veridoc/pkg/requestcontext"
)

// Service defines the interface for batch evaluation operations.
type Service interface {
	EvaluateBatch(ctx context.Context, req batch.Request) (batch.Result, error)
}

// Handler wires batch evaluation endpoints to the batch service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a batch handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts batch endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/batches/evaluate", h.HandleEvaluate)
}

// HandleEvaluate handles POST /batches/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.EvaluateBatch(ctx, batch.Request{
		BatchID:       req.BatchID,
		Pages:         req.Documents,
		ReferenceDate: req.ParsedReferenceDate(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "batch evaluation failed",
			"request_id", requestID,
			"batch_id", req.BatchID,
			"documents", len(req.Documents),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "batch evaluated",
		"request_id", requestID,
		"batch_id", result.BatchID,
		"documents", len(req.Documents),
		"status", result.Cumulative.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	w.Header().Set("X-Batch-Id", result.BatchID)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}
