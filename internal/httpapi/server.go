// Package httpapi exposes the relay's HTTP surface: the public intake and
// staff endpoints under /api, the Twilio inbound webhook, and the health and
// metrics endpoints.
package httpapi

import (
	"net/http"

	"intake-relay/internal/common/config"
	"intake-relay/internal/common/errors"
	"intake-relay/internal/common/logger"
	"intake-relay/internal/dispatch"
	"intake-relay/internal/sheets"
	"intake-relay/internal/template"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the handler dependencies.
type Server struct {
	cfg         config.Config
	sheets      *sheets.Client
	sms         dispatch.SMSSender
	templates   template.Store
	dispatcher  *dispatch.Dispatcher
	idempotency IdempotencyRecorder
	log         logger.Logger
}

func NewServer(cfg config.Config, sheetsClient *sheets.Client, sms dispatch.SMSSender, templates template.Store, dispatcher *dispatch.Dispatcher, log logger.Logger) *Server {
	if templates == nil {
		templates = template.DefaultStore()
	}
	return &Server{
		cfg:         cfg,
		sheets:      sheetsClient,
		sms:         sms,
		templates:   templates,
		dispatcher:  dispatcher,
		idempotency: NoopIdempotencyRecorder{},
		log:         log.WithFields(map[string]interface{}{"component": "httpapi"}),
	}
}

// Router assembles the route table. Unmatched paths and mismatched methods
// both answer with the uniform 404 envelope.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(recoverMiddleware(s.log))
	r.Use(corsMiddleware(s.cfg.Server.AllowedOrigin))
	r.Use(metricsMiddleware)
	r.Use(idempotencyMiddleware(s.idempotency, s.log))

	r.Post("/api/applications", s.handleApplications)
	r.Post("/api/second/next-slot", s.handleNextSlot)
	r.Post("/api/sms/send", s.handleSMSSend)
	r.Post("/twilio/inbound-sms", s.handleTwilioInbound)
	r.Get("/api/interviewers", s.handleListInterviewers)
	r.Post("/api/interviewers", s.handleUpsertInterviewer)
	r.Post("/api/decisions", s.handleDecisions)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	notFound := func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, errors.NewRouteNotFoundError())
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}
