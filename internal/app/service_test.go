package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

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

func quiet(int64) match.Generator {
	return match.GeneratorFunc(func(int, model.Team, model.Team, model.Score) *model.MatchEvent { return nil })
}

// reviewAt flags a home goal for review at minute.
func reviewAt(minute int, outcome model.VAROutcome) service.GeneratorFactory {
	return func(int64) match.Generator {
		return match.GeneratorFunc(func(m int, home, _ model.Team, _ model.Score) *model.MatchEvent {
			if m != minute {
				return nil
			}
			ev := model.NewEvent(m, model.EventVAR, home.Name, "Possible goal")
			ev.Scorer = home.Starters[10].Name
			ev.VAROutcome = outcome
			return &ev
		})
	}
}

func newFastService(store repository.Store, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithMinuteInterval(time.Millisecond),
		service.WithFrameInterval(time.Millisecond),
		service.WithVARDelay(time.Millisecond),
		service.WithSeed(7),
		service.WithGenerator(quiet),
	}
	return service.New(store, append(base, opts...)...)
}

func waitSnapshot(svc *service.Service, cond func(types.Snapshot) bool) (types.Snapshot, bool) {
	deadline := time.Now().Add(5 * time.Second)
	for {
		snap, err := svc.Snapshot(context.Background())
		if err == nil && cond(snap) {
			return snap, true
		}
		if time.Now().After(deadline) {
			return snap, false
		}
		time.Sleep(time.Millisecond)
	}
}

func atPhase(p model.Phase) func(types.Snapshot) bool {
	return func(s types.Snapshot) bool { return s.Phase == p }
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newFastService(store)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Reads without a mounted match fail", func() {
			_, err := svc.Snapshot(ctx)
			So(errors.Is(err, service.ErrNoMatch), ShouldBeTrue)
			_, err = svc.Events(ctx, 0)
			So(errors.Is(err, service.ErrNoMatch), ShouldBeTrue)
			So(errors.Is(svc.OpenTactics(ctx), service.ErrNoMatch), ShouldBeTrue)
		})

		Convey("When a match is started", func() {
			snap, err := svc.StartMatch(ctx, service.DemoTeam("Lions", "4-3-3", 60), model.Team{Name: "Tigers"})
			So(err, ShouldBeNil)
			So(snap.HomeTeam, ShouldEqual, "Lions")
			So(snap.Phase, ShouldEqual, model.PhaseFirstHalf)

			Convey("A second match cannot start", func() {
				_, err := svc.StartMatch(ctx, service.DemoTeam("A", "", 50), service.DemoTeam("B", "", 50))
				So(errors.Is(err, service.ErrMatchInProgress), ShouldBeTrue)
			})

			Convey("Frames carry both line-ups", func() {
				f, err := svc.Frame(ctx)
				So(err, ShouldBeNil)
				So(f.Entities, ShouldHaveLength, 22)
			})

			Convey("Finish before full time is rejected", func() {
				_, err := svc.Finish(ctx)
				So(errors.Is(err, match.ErrNotFullTime), ShouldBeTrue)
				So(service.IsInvalidTransition(err), ShouldBeTrue)
			})

			Convey("The clock reaches half time and waits", func() {
				snap, ok := waitSnapshot(svc, atPhase(model.PhaseHalftime))
				So(ok, ShouldBeTrue)
				So(snap.Minute, ShouldEqual, 45)

				time.Sleep(10 * time.Millisecond)
				again, _ := svc.Snapshot(ctx)
				So(again.Phase, ShouldEqual, model.PhaseHalftime)
				So(again.Minute, ShouldEqual, 45)

				Convey("Then the second half plays to full time and hands off once", func() {
					So(svc.ResumeSecondHalf(ctx), ShouldBeNil)
					_, ok := waitSnapshot(svc, atPhase(model.PhaseFullTime))
					So(ok, ShouldBeTrue)

					res, err := svc.Finish(ctx)
					So(err, ShouldBeNil)
					So(res.HomeTeam, ShouldEqual, "Lions")

					again, err := svc.Finish(ctx)
					So(err, ShouldBeNil)
					So(again.MatchID, ShouldEqual, res.MatchID)

					So(svc.Stop(ctx), ShouldBeNil)
					n, err := store.Count(ctx)
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 1)
					stored, err := store.Get(ctx, res.MatchID)
					So(err, ShouldBeNil)
					So(stored.Events[len(stored.Events)-1].Text, ShouldEqual, "Full time")

					page, err := svc.Events(ctx, 0)
					So(errors.Is(err, service.ErrNoMatch), ShouldBeTrue)
					So(page.Events, ShouldBeEmpty)
				})
			})

			Convey("Opening tactics freezes the clock", func() {
				So(svc.OpenTactics(ctx), ShouldBeNil)
				frozen, _ := svc.Snapshot(ctx)
				time.Sleep(10 * time.Millisecond)
				later, _ := svc.Snapshot(ctx)
				So(later.Minute, ShouldEqual, frozen.Minute)
				So(later.TacticsOpen, ShouldBeTrue)

				So(svc.CloseTactics(ctx), ShouldBeNil)
				_, ok := waitSnapshot(svc, func(s types.Snapshot) bool { return s.Minute > frozen.Minute })
				So(ok, ShouldBeTrue)
			})

			Convey("Release unmounts the match", func() {
				So(svc.Release(ctx), ShouldBeNil)
				_, err := svc.Snapshot(ctx)
				So(errors.Is(err, service.ErrNoMatch), ShouldBeTrue)
				So(errors.Is(svc.Release(ctx), service.ErrNoMatch), ShouldBeTrue)
			})
		})
	})
}

func TestService_VARReview(t *testing.T) {
	Convey("Given a generator that flags a confirmed goal at minute 3", t, func() {
		ctx := context.Background()
		svc := newFastService(nil, service.WithGenerator(reviewAt(3, model.VARGoal)))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		_, err := svc.StartMatch(ctx, service.DemoTeam("Lions", "", 50), service.DemoTeam("Tigers", "", 50))
		So(err, ShouldBeNil)

		Convey("The review resolves into exactly one goal at the trigger minute", func() {
			snap, ok := waitSnapshot(svc, func(s types.Snapshot) bool { return s.Score.Home == 1 && !s.VAR.Active })
			So(ok, ShouldBeTrue)
			So(snap.Stats.Home.Shots, ShouldEqual, 1)
			So(snap.Stats.Home.ShotsOnTarget, ShouldEqual, 1)

			page, err := svc.Events(ctx, 0)
			So(err, ShouldBeNil)
			var goals []model.MatchEvent
			for _, ev := range page.Events {
				So(ev.Type, ShouldNotEqual, model.EventVAR)
				if ev.IsGoal() {
					goals = append(goals, ev)
				}
			}
			So(goals, ShouldHaveLength, 1)
			So(goals[0].Minute, ShouldEqual, 3)
		})
	})
}

func TestService_Objection(t *testing.T) {
	Convey("Given a running match", t, func() {
		ctx := context.Background()
		svc := newFastService(nil)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()
		_, err := svc.StartMatch(ctx, service.DemoTeam("Lions", "", 50), service.DemoTeam("Tigers", "", 50))
		So(err, ShouldBeNil)

		Convey("Objections without a fresh goal go to discipline until the lock", func() {
			var last model.Discipline
			for range 200 {
				res, err := svc.Object(ctx)
				if err != nil {
					So(errors.Is(err, match.ErrObjectionLocked), ShouldBeTrue)
					break
				}
				So(res.Route, ShouldEqual, match.RouteDiscipline)
				So(res.Discipline, ShouldBeGreaterThanOrEqualTo, last)
				last = res.Discipline
			}
			snap, _ := svc.Snapshot(ctx)
			So(snap.Discipline, ShouldEqual, model.DisciplineRed)
			So(snap.ObjectionLocked, ShouldBeTrue)
			So(snap.Stats.ManagerCards, ShouldEqual, "RED")
			So(errors.Is(svc.OpenTactics(ctx), match.ErrObjectionLocked), ShouldBeTrue)
		})
	})
}

func TestService_StatsDuringRestart(t *testing.T) {
	svc := newFastService(nil)
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 200 {
			stats := svc.GetStats(ctx)
			if _, ok := stats["started"]; !ok {
				t.Error("stats without started flag")
				return
			}
		}
	}()
	for range 20 {
		if err := svc.Stop(ctx); err != nil {
			t.Fatalf("stop: %v", err)
		}
		if err := svc.Start(ctx); err != nil {
			t.Fatalf("restart: %v", err)
		}
	}
	<-done
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestService_NotStarted(t *testing.T) {
	svc := service.New(nil)
	_, err := svc.StartMatch(context.Background(), service.DemoTeam("A", "", 50), service.DemoTeam("B", "", 50))
	if !errors.Is(err, service.ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}

func TestDemoTeam(t *testing.T) {
	team := service.DemoTeam("Red Lions", "3-5-2", 70)
	if len(team.Starters) != 11 {
		t.Fatalf("expected 11 starters, got %d", len(team.Starters))
	}
	if team.Starters[0].Role != model.RoleGK || team.Starters[10].Role != model.RoleFWD {
		t.Fatalf("unexpected roles: %s .. %s", team.Starters[0].Role, team.Starters[10].Role)
	}
	if team.ID != "red-lions" || team.Formation != "3-5-2" {
		t.Fatalf("unexpected team %+v", team)
	}
}
