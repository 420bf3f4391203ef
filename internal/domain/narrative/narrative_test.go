package narrative

import (
	"math/rand"
	"testing"

	"github.com/okian/matchday/internal/domain/model"
)

type seq struct {
	vals []float64
	i    int
}

func (s *seq) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestOnEventGoalRestartsWithConcedingSide(t *testing.T) {
	b := model.Ball{Point: model.Point{X: 10, Y: 99}, Possession: model.SideHome}
	got := OnEvent(b, model.SideHome, model.MatchEvent{Type: model.EventGoal}, &seq{vals: []float64{0.1}})
	if got.Point != (model.Point{X: 50, Y: 50}) || got.Possession != model.SideAway {
		t.Fatalf("after home goal got %+v", got)
	}
}

func TestOnEventCornerGoesToAttackingFlag(t *testing.T) {
	got := OnEvent(KickOff(model.SideHome), model.SideAway, model.MatchEvent{Type: model.EventCorner}, &seq{vals: []float64{0.9}})
	if got.X != 99 || got.Y != 1 || got.Possession != model.SideAway {
		t.Fatalf("away corner got %+v", got)
	}
}

func TestOnEventSaveHandsBallToKeeper(t *testing.T) {
	got := OnEvent(KickOff(model.SideHome), model.SideHome, model.MatchEvent{Type: model.EventSave}, &seq{vals: []float64{0}})
	if got.Y != 95 || got.Possession != model.SideAway {
		t.Fatalf("home shot saved got %+v", got)
	}
}

func TestOnEventFoulTurnsOver(t *testing.T) {
	b := model.Ball{Point: model.Point{X: 30, Y: 40}, Possession: model.SideAway}
	got := OnEvent(b, model.SideAway, model.MatchEvent{Type: model.EventFoul}, &seq{vals: []float64{0}})
	if got.Point != b.Point || got.Possession != model.SideHome {
		t.Fatalf("foul got %+v", got)
	}
}

func TestOnEventWithoutSideIsIgnored(t *testing.T) {
	b := KickOff(model.SideHome)
	if got := OnEvent(b, model.SideNone, model.MatchEvent{Type: model.EventGoal}, &seq{vals: []float64{0}}); got != b {
		t.Fatalf("expected unchanged ball, got %+v", got)
	}
}

func TestDriftMovesTowardAttackingGoal(t *testing.T) {
	home := Drift(KickOff(model.SideHome), &seq{vals: []float64{0.9, 1, 0.5}})
	if home.Y <= 50 {
		t.Fatalf("home drift should increase y, got %+v", home)
	}
	away := Drift(KickOff(model.SideAway), &seq{vals: []float64{0.9, 1, 0.5}})
	if away.Y >= 50 {
		t.Fatalf("away drift should decrease y, got %+v", away)
	}
}

func TestDriftTurnover(t *testing.T) {
	got := Drift(KickOff(model.SideHome), &seq{vals: []float64{0.001}})
	if got.Possession != model.SideAway {
		t.Fatalf("expected turnover, got %+v", got)
	}
}

func TestDriftStaysOnPitch(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	b := KickOff(model.SideNone)
	for i := 0; i < 10000; i++ {
		b = Drift(b, r)
		if b.X < 0 || b.X > 100 || b.Y < 0 || b.Y > 100 {
			t.Fatalf("ball left the pitch at frame %d: %+v", i, b)
		}
		if b.Possession == model.SideNone && i > 0 {
			t.Fatalf("ball stayed loose at frame %d", i)
		}
	}
}
