package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchday/internal/adapters/http/api"
	"github.com/okian/matchday/internal/adapters/repository"
	service "github.com/okian/matchday/internal/app"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/types"
	"github.com/okian/matchday/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// stubDeps returns canned values and records what it was called with.
type stubDeps struct {
	snapshot types.Snapshot
	err      error
	since    int
	objected match.ObjectionResult
	results  []types.ResultSummary
	result   types.Result
	started  [2]model.Team
}

func (s *stubDeps) StartMatch(_ context.Context, home, away model.Team) (types.Snapshot, error) {
	s.started = [2]model.Team{home, away}
	return types.Snapshot{HomeTeam: home.Name, AwayTeam: away.Name}, s.err
}
func (s *stubDeps) Release(context.Context) error { return s.err }
func (s *stubDeps) Snapshot(context.Context) (types.Snapshot, error) {
	return s.snapshot, s.err
}
func (s *stubDeps) Events(_ context.Context, since int) (types.EventsPage, error) {
	s.since = since
	return types.EventsPage{Since: since, Next: since}, s.err
}
func (s *stubDeps) Frame(context.Context) (types.Frame, error) { return types.Frame{Seq: 3}, s.err }
func (s *stubDeps) Object(context.Context) (match.ObjectionResult, error) {
	return s.objected, s.err
}
func (s *stubDeps) OpenTactics(context.Context) error      { return s.err }
func (s *stubDeps) CloseTactics(context.Context) error     { return s.err }
func (s *stubDeps) ResumeSecondHalf(context.Context) error { return s.err }
func (s *stubDeps) Finish(context.Context) (types.Result, error) {
	return s.result, s.err
}
func (s *stubDeps) Result(_ context.Context, id string) (types.Result, error) {
	if s.err != nil {
		return types.Result{}, s.err
	}
	r := s.result
	r.MatchID = id
	return r, nil
}
func (s *stubDeps) Results(context.Context, int) ([]types.ResultSummary, error) {
	return s.results, s.err
}

type stubStats struct{}

func (stubStats) GetStats(context.Context) map[string]any { return map[string]any{"started": true} }

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}

func TestServerRoutes(t *testing.T) {
	Convey("Given a server over stub dependencies", t, func() {
		deps := &stubDeps{}
		h := api.NewServer(deps, stubStats{}).Handler()

		Convey("Health, stats and metrics respond", func() {
			So(do(h, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodGet, "/stats", "").Body.String(), ShouldContainSubstring, `"started":true`)
			So(do(h, http.MethodGet, "/metrics", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Starting with an empty body uses default names", func() {
			rec := do(h, http.MethodPost, "/api/v1/match", "")
			So(rec.Code, ShouldEqual, http.StatusCreated)
			So(deps.started[0].Name, ShouldEqual, "Home United")
			So(deps.started[1].Name, ShouldEqual, "Away Rovers")
		})

		Convey("Starting with teams passes them through", func() {
			rec := do(h, http.MethodPost, "/api/v1/match", `{"home":{"name":"Lions","formation":"4-3-3"},"away":{"name":"Tigers"}}`)
			So(rec.Code, ShouldEqual, http.StatusCreated)
			So(deps.started[0].Formation, ShouldEqual, "4-3-3")
		})

		Convey("Malformed JSON is a bad request", func() {
			So(do(h, http.MethodPost, "/api/v1/match", `{"home":`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Events parse the since cursor", func() {
			So(do(h, http.MethodGet, "/api/v1/match/events?since=4", "").Code, ShouldEqual, http.StatusOK)
			So(deps.since, ShouldEqual, 4)
			So(do(h, http.MethodGet, "/api/v1/match/events?since=-1", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/v1/match/events?since=x", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Objection returns the route and emitted events", func() {
			deps.objected = match.ObjectionResult{
				Route:      match.RouteDiscipline,
				Discipline: model.DisciplineYellow,
				Changes:    []match.Change{{Event: model.NewEvent(20, model.EventCardYellow, "Lions", "Manager booked")}},
			}
			rec := do(h, http.MethodPost, "/api/v1/match/objection", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Route      string             `json:"route"`
				Discipline string             `json:"discipline"`
				Events     []model.MatchEvent `json:"events"`
			}
			So(decode(rec, &body), ShouldBeNil)
			So(body.Route, ShouldEqual, "discipline")
			So(body.Discipline, ShouldEqual, "YELLOW")
			So(body.Events, ShouldHaveLength, 1)
		})

		Convey("Results list and get by id", func() {
			deps.results = []types.ResultSummary{{MatchID: "m1"}}
			So(do(h, http.MethodGet, "/api/v1/results?limit=5", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodGet, "/api/v1/results?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/v1/results?limit=1000", "").Code, ShouldEqual, http.StatusBadRequest)

			rec := do(h, http.MethodGet, "/api/v1/results/abc", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var got types.Result
			So(decode(rec, &got), ShouldBeNil)
			So(got.MatchID, ShouldEqual, "abc")
		})

		Convey("Wrong methods are rejected by the router", func() {
			So(do(h, http.MethodGet, "/api/v1/match/finish", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("CORS preflight is answered", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/match", nil)
			req.Header.Set("Origin", "http://viewer.local")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrNoMatch, http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{service.ErrMatchInProgress, http.StatusConflict},
		{fmt.Errorf("%w: %w", match.ErrInvalidTransition, match.ErrTacticsOpen), http.StatusConflict},
		{fmt.Errorf("%w: x", match.ErrUnknownTeams), http.StatusBadRequest},
		{fmt.Errorf("%w: full", service.ErrHandoff), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		Convey(fmt.Sprintf("Given dependencies failing with %v", tc.err), t, func() {
			h := api.NewServer(&stubDeps{err: tc.err}, stubStats{}).Handler()
			So(do(h, http.MethodPost, "/api/v1/match/tactics/open", "").Code, ShouldEqual, tc.code)
		})
	}
}

func TestServerWithService(t *testing.T) {
	Convey("Given the API over a real service", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewMemoryStore(),
			service.WithMinuteInterval(time.Hour),
			service.WithFrameInterval(time.Millisecond),
			service.WithSeed(3),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()
		h := api.NewServer(svc, svc, api.WithCORSOrigins([]string{"http://viewer.local"})).Handler()

		So(do(h, http.MethodGet, "/api/v1/match", "").Code, ShouldEqual, http.StatusNotFound)

		rec := do(h, http.MethodPost, "/api/v1/match", `{"home":{"name":"Lions"},"away":{"name":"Tigers"}}`)
		So(rec.Code, ShouldEqual, http.StatusCreated)
		var snap types.Snapshot
		So(decode(rec, &snap), ShouldBeNil)
		So(snap.Phase, ShouldEqual, model.PhaseFirstHalf)
		So(snap.HomeTeam, ShouldEqual, "Lions")
		So(rec.Body.String(), ShouldContainSubstring, `"phase":"FIRST_HALF"`)

		So(do(h, http.MethodPost, "/api/v1/match", "").Code, ShouldEqual, http.StatusConflict)
		So(do(h, http.MethodPost, "/api/v1/match/tactics/open", "").Code, ShouldEqual, http.StatusOK)
		So(do(h, http.MethodPost, "/api/v1/match/tactics/open", "").Code, ShouldEqual, http.StatusConflict)
		So(do(h, http.MethodPost, "/api/v1/match/second-half", "").Code, ShouldEqual, http.StatusConflict)
		So(do(h, http.MethodPost, "/api/v1/match/finish", "").Code, ShouldEqual, http.StatusConflict)

		pos := do(h, http.MethodGet, "/api/v1/match/positions", "")
		So(pos.Code, ShouldEqual, http.StatusOK)
		var frame struct {
			Entities []any `json:"entities"`
		}
		So(decode(pos, &frame), ShouldBeNil)
		So(frame.Entities, ShouldHaveLength, 22)

		So(do(h, http.MethodDelete, "/api/v1/match", "").Code, ShouldEqual, http.StatusOK)
		So(do(h, http.MethodGet, "/api/v1/match/events", "").Code, ShouldEqual, http.StatusNotFound)
		So(do(h, http.MethodGet, "/api/v1/results/unknown", "").Code, ShouldEqual, http.StatusNotFound)
	})
}
