package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/stats"
	"github.com/okian/matchday/internal/domain/types"
)

func sampleResult(id string, finished time.Time) types.Result {
	st := stats.New()
	st.MVP = "Striker"
	return types.Result{
		MatchID:  id,
		HomeTeam: "Lions",
		AwayTeam: "Tigers",
		Score:    model.Score{Home: 2, Away: 1},
		Events: []model.MatchEvent{
			model.Info(0, "Kick off"),
			{ID: "g1", Minute: 12, Type: model.EventGoal, TeamName: "Lions", Scorer: "Striker"},
		},
		Stats:      st,
		FinishedAt: finished,
	}
}

func openTempSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return openTempSQLite(t) },
	}

	for name, open := range stores {
		Convey("Given a "+name+" results store", t, func() {
			ctx := context.Background()
			store := open(t)
			base := time.Date(2026, time.March, 1, 15, 0, 0, 0, time.UTC)

			Convey("Record then Get returns the full result", func() {
				So(store.Record(ctx, sampleResult("m1", base)), ShouldBeNil)

				got, err := store.Get(ctx, "m1")
				So(err, ShouldBeNil)
				So(got.HomeTeam, ShouldEqual, "Lions")
				So(got.Score, ShouldResemble, model.Score{Home: 2, Away: 1})
				So(got.Events, ShouldHaveLength, 2)
				So(got.Events[1].Scorer, ShouldEqual, "Striker")
				So(got.Stats.MVP, ShouldEqual, "Striker")
				So(got.FinishedAt.Equal(base), ShouldBeTrue)
			})

			Convey("Recording the same match twice keeps the first result", func() {
				first := sampleResult("m1", base)
				second := sampleResult("m1", base)
				second.Score = model.Score{Home: 0, Away: 5}

				So(store.Record(ctx, first), ShouldBeNil)
				So(store.Record(ctx, second), ShouldBeNil)

				got, err := store.Get(ctx, "m1")
				So(err, ShouldBeNil)
				So(got.Score.Home, ShouldEqual, 2)
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})

			Convey("Unknown match ids are not found", func() {
				_, err := store.Get(ctx, "nope")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})

			Convey("A result without id is rejected", func() {
				So(errors.Is(store.Record(ctx, sampleResult("", base)), ErrEmptyMatchID), ShouldBeTrue)
			})

			Convey("List orders by finish time and honours the limit", func() {
				for i := range 3 {
					So(store.Record(ctx, sampleResult(fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Hour))), ShouldBeNil)
				}

				all, err := store.List(ctx, 0)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 3)
				So(all[0].MatchID, ShouldEqual, "m2")
				So(all[2].MatchID, ShouldEqual, "m0")

				top, err := store.List(ctx, 1)
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 1)
				So(top[0].MatchID, ShouldEqual, "m2")

				_, err = store.List(ctx, -1)
				So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
			})
		})
	}
}

func TestMemoryStoreCopiesEvents(t *testing.T) {
	s := NewMemoryStore()
	r := sampleResult("m1", time.Now())
	if err := s.Record(context.Background(), r); err != nil {
		t.Fatalf("record: %v", err)
	}
	r.Events[1].Scorer = "changed"

	got, err := s.Get(context.Background(), "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Events[1].Scorer != "Striker" {
		t.Fatalf("stored events aliased caller slice: %q", got.Events[1].Scorer)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), "  "); !errors.Is(err, ErrStorePath) {
		t.Fatalf("expected ErrStorePath, got %v", err)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	ctx := context.Background()

	s, err := OpenSQLite(ctx, path, WithBusyTimeout(time.Second), WithClock(func() time.Time { return time.Unix(0, 0) }))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Record(ctx, sampleResult("m1", time.Now())); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.Get(ctx, "m1"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}
