// Package httpapi serves the webhook receiver and the report endpoints over
// chi.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	glog "github.com/goliatone/go-logger/glog"
	messenger "github.com/goliatone/go-messenger"
	"github.com/goliatone/go-messenger/core"
)

const (
	defaultMaxWebhookBytes = 1 << 20
	defaultRequestTimeout  = 2 * time.Minute
	webhookSource          = "shortcut"
)

type Dependencies struct {
	ServiceName     string
	Commands        messenger.Commands
	Queries         messenger.Queries
	Logger          core.Logger
	RequestTimeout  time.Duration
	MaxWebhookBytes int64
	Clock           func() time.Time
}

type Server struct {
	deps   Dependencies
	logger core.Logger
	router chi.Router
}

func NewServer(deps Dependencies) *Server {
	if strings.TrimSpace(deps.ServiceName) == "" {
		deps.ServiceName = "go-messenger"
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}
	if deps.MaxWebhookBytes <= 0 {
		deps.MaxWebhookBytes = defaultMaxWebhookBytes
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	s := &Server{
		deps:   deps,
		logger: glog.Ensure(deps.Logger),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.deps.RequestTimeout))

	r.Get("/health", s.healthCheck)
	r.Post("/webhooks/shortcut", s.receiveWebhook)

	r.Route("/api", func(r chi.Router) {
		r.Get("/reports", s.listReports)
		r.Post("/reports", s.createReport)
		r.Get("/reports/{id}", s.getReport)
		r.Get("/iterations/{name}/report", s.buildReport)
	})
	return r
}

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   s.deps.ServiceName,
		"timestamp": s.deps.Clock(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
