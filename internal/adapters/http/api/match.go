package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/pkg/logger"
)

// Names used when a start request leaves a team unnamed.
const (
	defaultHomeName = "Home United"
	defaultAwayName = "Away Rovers"
)

type startRequest struct {
	Home model.Team `json:"home"`
	Away model.Team `json:"away"`
}

type objectionResponse struct {
	Route      string             `json:"route"`
	Discipline model.Discipline   `json:"discipline"`
	Events     []model.MatchEvent `json:"events"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// MatchHandler handles the live match routes.
type MatchHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewMatchHandler creates a match handler.
func NewMatchHandler(deps Dependencies, l logger.Logger) *MatchHandler {
	return &MatchHandler{deps: deps, logger: l}
}

// HandleStart handles POST /api/v1/match. An empty body plays two default sides.
func (h *MatchHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_match"
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeDomainError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Home.Name == "" {
		req.Home.Name = defaultHomeName
	}
	if req.Away.Name == "" {
		req.Away.Name = defaultAwayName
	}

	snap, err := h.deps.StartMatch(r.Context(), req.Home, req.Away)
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// HandleSnapshot handles GET /api/v1/match.
func (h *MatchHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, Wrap("api.snapshot", err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleRelease handles DELETE /api/v1/match.
func (h *MatchHandler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Release(r.Context()); err != nil {
		writeDomainError(w, Wrap("api.release", err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "released"})
}

// HandleEvents handles GET /api/v1/match/events?since=N.
func (h *MatchHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.events"
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeDomainError(w, NewKind(op, ErrBadRequest))
			return
		}
		since = n
	}
	page, err := h.deps.Events(r.Context(), since)
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandlePositions handles GET /api/v1/match/positions.
func (h *MatchHandler) HandlePositions(w http.ResponseWriter, r *http.Request) {
	f, err := h.deps.Frame(r.Context())
	if err != nil {
		writeDomainError(w, Wrap("api.positions", err))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// HandleObjection handles POST /api/v1/match/objection.
func (h *MatchHandler) HandleObjection(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Object(r.Context())
	if err != nil {
		writeDomainError(w, Wrap("api.objection", err))
		return
	}
	out := objectionResponse{Route: res.Route, Discipline: res.Discipline, Events: []model.MatchEvent{}}
	for _, c := range res.Changes {
		out.Events = append(out.Events, c.Event)
	}
	h.logger.Debug(r.Context(), "objection", logger.String("route", res.Route))
	writeJSON(w, http.StatusOK, out)
}

// HandleOpenTactics handles POST /api/v1/match/tactics/open.
func (h *MatchHandler) HandleOpenTactics(w http.ResponseWriter, r *http.Request) {
	h.ack(w, r, "api.tactics_open", "paused", h.deps.OpenTactics)
}

// HandleCloseTactics handles POST /api/v1/match/tactics/close.
func (h *MatchHandler) HandleCloseTactics(w http.ResponseWriter, r *http.Request) {
	h.ack(w, r, "api.tactics_close", "resumed", h.deps.CloseTactics)
}

// HandleSecondHalf handles POST /api/v1/match/second-half.
func (h *MatchHandler) HandleSecondHalf(w http.ResponseWriter, r *http.Request) {
	h.ack(w, r, "api.second_half", "resumed", h.deps.ResumeSecondHalf)
}

// HandleFinish handles POST /api/v1/match/finish.
func (h *MatchHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Finish(r.Context())
	if err != nil {
		writeDomainError(w, Wrap("api.finish", err))
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (h *MatchHandler) ack(w http.ResponseWriter, r *http.Request, op, status string, fn func(ctx context.Context) error) {
	if err := fn(r.Context()); err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: status})
}
