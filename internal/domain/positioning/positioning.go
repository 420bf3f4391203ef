// Package positioning computes on-pitch player coordinates every frame.
//
// Each frame every entity gets a target from its anchor, role, the ball and
// the side in possession, then moves a role-dependent fraction of the way
// there. Targets are computed in team-relative space, where the team's own
// goal is at y=0; the away side is mirrored top to bottom.
package positioning

import (
	"math"

	"github.com/okian/matchday/internal/domain/model"
)

// Rand is the randomness the engine needs. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// PitchEntity is one on-pitch player for one frame.
type PitchEntity struct {
	PlayerID string      `json:"playerId"`
	Name     string      `json:"name"`
	Side     model.Side  `json:"side"`
	Slot     int         `json:"slot"`
	Role     model.Role  `json:"role"`
	Anchor   model.Point `json:"-"`
	Pos      model.Point `json:"pos"`
}

const (
	pressRadius = 6.0
	snapRadius  = 8.0
	// defenderGap is how far attacking defenders hold behind the ball.
	defenderGap = 5.0
	// defensiveFloor keeps defenders out of the goalkeeper box.
	defensiveFloor = 18.0
	jitterSpan     = 0.04
	maxStarters    = 11
)

// moveFactor is the fraction of the remaining distance covered per frame.
var moveFactor = map[model.Role]float64{ //nolint:gochecknoglobals // static table
	model.RoleGK:  0.05,
	model.RoleDEF: 0.08,
	model.RoleMID: 0.12,
	model.RoleFWD: 0.10,
}

// situation is what a role target function sees, all team-relative.
type situation struct {
	anchor    model.Point
	pos       model.Point
	ball      model.Point
	attacking bool
}

type targetFunc func(situation) model.Point

var roleTargets = map[model.Role]targetFunc{ //nolint:gochecknoglobals // static table
	model.RoleGK:  goalkeeperTarget,
	model.RoleDEF: defenderTarget,
	model.RoleMID: midfielderTarget,
	model.RoleFWD: forwardTarget,
}

func pull(from, to, f float64) float64 { return from + (to-from)*f }

func goalkeeperTarget(s situation) model.Point {
	return model.Point{
		X: model.Clamp(pull(s.anchor.X, s.ball.X, 0.3), 35, 65),
		Y: model.Clamp(s.anchor.Y+s.ball.Y*0.05, 2, 15),
	}
}

func defenderTarget(s situation) model.Point {
	if s.attacking {
		return model.Point{
			X: pull(s.anchor.X, s.ball.X, 0.2),
			Y: behindBall(s.anchor.Y+15, s.ball.Y),
		}
	}
	return model.Point{
		X: pull(s.anchor.X, s.ball.X, 0.5),
		Y: math.Max(pull(s.anchor.Y, s.ball.Y, 0.4), defensiveFloor),
	}
}

// behindBall holds y at least defenderGap short of the ball, and keeps the
// line at defensiveFloor only while the ball is far enough up the pitch.
func behindBall(y, ballY float64) float64 {
	limit := ballY - defenderGap
	return math.Min(math.Max(math.Min(y, limit), defensiveFloor), limit)
}

func midfielderTarget(s situation) model.Point {
	return model.Point{
		X: pull(s.anchor.X, s.ball.X, 0.7),
		Y: model.Clamp(pull(s.anchor.Y, s.ball.Y, 0.6), 20, 80),
	}
}

func forwardTarget(s situation) model.Point {
	if s.attacking {
		if distance(s.pos, s.ball) < snapRadius {
			return s.ball
		}
		return model.Point{
			X: pull(s.anchor.X, s.ball.X, 0.4),
			Y: pull(s.anchor.Y, 85, 0.6),
		}
	}
	return model.Point{
		X: pull(s.anchor.X, s.ball.X, 0.3),
		Y: pull(s.anchor.Y, 50, 0.6),
	}
}

// relative maps an absolute point into side's frame and back; the mapping is
// its own inverse.
func relative(p model.Point, side model.Side) model.Point {
	if side == model.SideAway {
		return model.Point{X: p.X, Y: 100 - p.Y}
	}
	return p
}

func distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Target returns e's absolute target for this frame.
func Target(e PitchEntity, ball model.Ball) model.Point {
	s := situation{
		anchor:    e.Anchor,
		pos:       relative(e.Pos, e.Side),
		ball:      relative(ball.Point, e.Side),
		attacking: ball.Possession == e.Side,
	}
	fn, ok := roleTargets[e.Role]
	if !ok {
		fn = midfielderTarget
	}
	t := fn(s)
	if e.Role != model.RoleGK && distance(s.pos, s.ball) < pressRadius {
		t = s.ball
	}
	return model.ClampPoint(relative(t, e.Side))
}

// Move returns e advanced toward target.
func Move(e PitchEntity, target model.Point, r Rand) PitchEntity {
	f := moveFactor[e.Role] + (r.Float64()-0.5)*jitterSpan
	f = model.Clamp(f, 0, 1)
	e.Pos = model.ClampPoint(model.Point{
		X: pull(e.Pos.X, target.X, f),
		Y: pull(e.Pos.Y, target.Y, f),
	})
	return e
}

// Pitch holds both line-ups for one frame.
type Pitch struct {
	Home []PitchEntity `json:"home"`
	Away []PitchEntity `json:"away"`
}

// NewPitch lines both teams up on their anchors.
func NewPitch(home, away model.Team) Pitch {
	return Pitch{
		Home: Lineup(home, model.SideHome),
		Away: Lineup(away, model.SideAway),
	}
}

// Lineup places up to eleven starters on their formation anchors. Starters
// beyond the formation's slots take the first slot.
func Lineup(team model.Team, side model.Side) []PitchEntity {
	f := ParseFormation(team.Formation)
	n := len(team.Starters)
	if n > maxStarters {
		n = maxStarters
	}
	out := make([]PitchEntity, 0, n)
	for i := 0; i < n; i++ {
		p := team.Starters[i]
		anchor := f.AnchorAt(i)
		out = append(out, PitchEntity{
			PlayerID: p.ID,
			Name:     p.Name,
			Side:     side,
			Slot:     i,
			Role:     f.RoleAt(i),
			Anchor:   anchor,
			Pos:      model.ClampPoint(relative(anchor, side)),
		})
	}
	return out
}

// Step returns the next frame. The receiver is not modified.
func (p Pitch) Step(ball model.Ball, r Rand) Pitch {
	return Pitch{
		Home: stepSide(p.Home, ball, r),
		Away: stepSide(p.Away, ball, r),
	}
}

func stepSide(in []PitchEntity, ball model.Ball, r Rand) []PitchEntity {
	out := make([]PitchEntity, len(in))
	for i, e := range in {
		out[i] = Move(e, Target(e, ball), r)
	}
	return out
}

// All returns home then away entities in one slice.
func (p Pitch) All() []PitchEntity {
	out := make([]PitchEntity, 0, len(p.Home)+len(p.Away))
	out = append(out, p.Home...)
	return append(out, p.Away...)
}
