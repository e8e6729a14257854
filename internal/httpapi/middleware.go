// internal/httpapi/middleware.go
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"intake-relay/internal/common/errors"
	"intake-relay/internal/common/logger"
	"intake-relay/internal/common/metrics"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// corsMiddleware sets the cross-origin headers from config on every response
// and answers OPTIONS preflights for any path before routing. Headers are
// built per request, never from shared mutable state.
func corsMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
			h.Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware counts and times requests by chi route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// recoverMiddleware converts a handler panic into the sanitized 500 envelope;
// the panic value goes to the log only.
func recoverMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("handler panic", map[string]interface{}{
						"panic":  rec,
						"path":   r.URL.Path,
						"method": r.Method,
					})
					respondError(w, errors.NewInternalError(nil))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// IdempotencyRecorder remembers request keys so retried submissions can be
// deduplicated.
type IdempotencyRecorder interface {
	Record(ctx context.Context, key string) error
}

// NoopIdempotencyRecorder accepts every key without remembering it: the
// Idempotency-Key header is part of the public contract but nothing enforces
// it yet.
// TODO: back this with an Idempotency sheet (or the remote store's own
// dedupe) so resubmitted applications stop creating duplicate rows.
type NoopIdempotencyRecorder struct{}

func (NoopIdempotencyRecorder) Record(context.Context, string) error { return nil }

// idempotencyMiddleware feeds the Idempotency-Key header into the recorder.
func idempotencyMiddleware(recorder IdempotencyRecorder, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := r.Header.Get("Idempotency-Key"); key != "" {
				if err := recorder.Record(r.Context(), key); err != nil {
					log.WithError(err).Warn("idempotency key not recorded", nil)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
