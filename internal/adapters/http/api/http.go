// Package api is the HTTP presentation adapter for the live match.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/okian/matchday/internal/adapters/repository"
	service "github.com/okian/matchday/internal/app"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/types"
	"github.com/okian/matchday/pkg/logger"
)

const defaultMaxResults = 100

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	StartMatch(ctx context.Context, home, away model.Team) (types.Snapshot, error)
	Release(ctx context.Context) error
	Snapshot(ctx context.Context) (types.Snapshot, error)
	Events(ctx context.Context, since int) (types.EventsPage, error)
	Frame(ctx context.Context) (types.Frame, error)

	Object(ctx context.Context) (match.ObjectionResult, error)
	OpenTactics(ctx context.Context) error
	CloseTactics(ctx context.Context) error
	ResumeSecondHalf(ctx context.Context) error
	Finish(ctx context.Context) (types.Result, error)

	Result(ctx context.Context, matchID string) (types.Result, error)
	Results(ctx context.Context, limit int) ([]types.ResultSummary, error)
}

// Server wires HTTP routes for the match API.
type Server struct {
	match   *MatchHandler
	results *ResultsHandler
	health  *HealthHandler
	stats   *StatsHandler

	corsOrigins []string
	maxResults  int
	logger      logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		corsOrigins: []string{"*"},
		maxResults:  defaultMaxResults,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	s.match = NewMatchHandler(deps, s.logger)
	s.results = NewResultsHandler(deps, s.maxResults)
	s.health = NewHealthHandler()
	s.stats = NewStatsHandler(statsProvider)
	return s
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	s.Register(router)

	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

// Register attaches all routes to router.
func (s *Server) Register(router *mux.Router) {
	router.Use(MetricsMiddleware)

	router.HandleFunc("/healthz", s.health.HandleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", s.health.MetricsHandler()).Methods(http.MethodGet)
	router.HandleFunc("/stats", s.stats.HandleStats).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	m := api.PathPrefix("/match").Subrouter()
	m.HandleFunc("", s.match.HandleStart).Methods(http.MethodPost)
	m.HandleFunc("", s.match.HandleSnapshot).Methods(http.MethodGet)
	m.HandleFunc("", s.match.HandleRelease).Methods(http.MethodDelete)
	m.HandleFunc("/events", s.match.HandleEvents).Methods(http.MethodGet)
	m.HandleFunc("/positions", s.match.HandlePositions).Methods(http.MethodGet)
	m.HandleFunc("/objection", s.match.HandleObjection).Methods(http.MethodPost)
	m.HandleFunc("/tactics/open", s.match.HandleOpenTactics).Methods(http.MethodPost)
	m.HandleFunc("/tactics/close", s.match.HandleCloseTactics).Methods(http.MethodPost)
	m.HandleFunc("/second-half", s.match.HandleSecondHalf).Methods(http.MethodPost)
	m.HandleFunc("/finish", s.match.HandleFinish).Methods(http.MethodPost)

	api.HandleFunc("/results", s.results.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/results/{id}", s.results.HandleGet).Methods(http.MethodGet)
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

// writeDomainError maps domain sentinels to status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, match.ErrUnknownTeams),
		errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNoMatch):
		writeError(w, http.StatusNotFound, "no_match", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrMatchInProgress):
		writeError(w, http.StatusConflict, "match_in_progress", err)
	case errors.Is(err, match.ErrInvalidTransition),
		errors.Is(err, service.ErrMatchReleased):
		writeError(w, http.StatusConflict, "invalid_transition", err)
	case errors.Is(err, service.ErrHandoff):
		writeError(w, http.StatusServiceUnavailable, "backpressure", errors.Join(ErrBackpressure, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
