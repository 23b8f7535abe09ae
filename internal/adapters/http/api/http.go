// Package api declares the HTTP webhook surface: event intake from the
// chat gateway plus the read endpoints the leaderboard presenter consumes.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kudos/internal/adapters/repository"
	"kudos/internal/domain/model"
	"kudos/pkg/metrics"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Enqueue submits an event for async processing.
	Enqueue(ctx context.Context, e model.Event) error

	// Read operations over the score store's query surface.
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
	Score(ctx context.Context, item string) (repository.Score, error)
	Count(ctx context.Context) int
	QueueLen(ctx context.Context) int
}

// Server wires HTTP routes for the webhook surface.
type Server struct {
	deps     Dependencies
	maxLimit int
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLeaderboardLimit caps GET /leaderboard?limit.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// defaultMaxLimit caps leaderboard reads when not configured.
const defaultMaxLimit = 100

// NewServer creates the API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		maxLimit: defaultMaxLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", MetricsMiddleware(s.handleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/events", MetricsMiddleware(s.handlePostEvent, "events")).Methods(http.MethodPost)
	r.HandleFunc("/leaderboard", MetricsMiddleware(s.handleLeaderboard, "leaderboard")).Methods(http.MethodGet)
	r.HandleFunc("/score/{item}", MetricsMiddleware(s.handleScore, "score")).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
