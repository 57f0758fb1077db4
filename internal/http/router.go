// Package httpapi assembles the HTTP surface: middleware chain, health and
// metrics endpoints, and the authenticated batch evaluation routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	batchhandler "veridoc/internal/batch/handler"
	"veridoc/internal/platform/middleware"
	"veridoc/pkg/platform/httputil"
)

// Check is a named readiness probe for a backing dependency.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// NewRouter wires all endpoints. Evaluation routes sit behind bearer-token
// auth; health and metrics stay open for the platform.
func NewRouter(batchHandler *batchhandler.Handler, validator middleware.JWTValidator, logger *slog.Logger, checks ...Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", handleHealth(logger, checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		batchHandler.Register(r)
	})

	return r
}

func handleHealth(logger *slog.Logger, checks []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		failed := make([]string, 0)
		for _, check := range checks {
			if err := check.Probe(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "check", check.Name, "error", err)
				failed = append(failed, check.Name)
			}
		}

		if len(failed) > 0 {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"failed": failed,
			})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
