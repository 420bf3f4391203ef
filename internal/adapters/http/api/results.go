package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ResultsHandler serves handed-off results.
type ResultsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewResultsHandler creates a results handler.
func NewResultsHandler(deps Dependencies, maxLimit int) *ResultsHandler {
	return &ResultsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleList handles GET /api/v1/results?limit=N.
func (h *ResultsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_results"
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeDomainError(w, NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	list, err := h.deps.Results(r.Context(), limit)
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	if list == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /api/v1/results/{id}.
func (h *ResultsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Result(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, Wrap("api.get_result", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
