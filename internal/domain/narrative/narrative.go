// Package narrative owns the ball. It moves the ball and possession when
// events are applied and lets it drift between minutes so the positional
// engine has something to react to.
//
// Coordinates are absolute: home defends y=0 and attacks y=100.
package narrative

import "github.com/okian/matchday/internal/domain/model"

// Rand is the randomness the driver needs.
type Rand interface {
	Float64() float64
}

const (
	driftForward   = 0.6
	driftSideways  = 2.0
	turnoverChance = 0.015
	attackLimit    = 92.0
)

// KickOff puts the ball on the centre spot with side in possession.
func KickOff(side model.Side) model.Ball {
	return model.Ball{Point: model.Point{X: 50, Y: 50}, Possession: side}
}

// attackY maps a team-relative y (0 own goal, 100 opponent goal) to absolute.
func attackY(side model.Side, y float64) float64 {
	if side == model.SideAway {
		return 100 - y
	}
	return y
}

// OnEvent places the ball after ev, attributed to side, was applied.
func OnEvent(b model.Ball, side model.Side, ev model.MatchEvent, r Rand) model.Ball {
	if side == model.SideNone {
		return b
	}
	opp := side.Opponent()
	switch ev.Type {
	case model.EventGoal:
		return KickOff(opp)
	case model.EventCorner:
		x := 1.0
		if r.Float64() >= 0.5 {
			x = 99
		}
		b = model.Ball{Point: model.Point{X: x, Y: attackY(side, 99)}, Possession: side}
	case model.EventSave:
		b = model.Ball{Point: model.Point{X: 50, Y: attackY(side, 95)}, Possession: opp}
	case model.EventMiss:
		b = model.Ball{Point: model.Point{X: 50, Y: attackY(side, 94)}, Possession: opp}
	case model.EventOffside:
		b = model.Ball{Point: model.Point{X: b.X, Y: attackY(side, 78)}, Possession: opp}
	case model.EventFoul, model.EventCardYellow, model.EventCardRed:
		b.Possession = opp
	case model.EventVAR:
		b = model.Ball{Point: model.Point{X: 50, Y: attackY(side, 88)}, Possession: side}
	}
	b.Point = model.ClampPoint(b.Point)
	return b
}

// Drift advances the ball one frame toward the possessing side's target goal
// with occasional turnovers. A loose ball is picked up by either side.
func Drift(b model.Ball, r Rand) model.Ball {
	if b.Possession == model.SideNone {
		b.Possession = model.SideHome
		if r.Float64() >= 0.5 {
			b.Possession = model.SideAway
		}
		return b
	}
	if r.Float64() < turnoverChance {
		b.Possession = b.Possession.Opponent()
		return b
	}

	dy := r.Float64() * driftForward
	if b.Possession == model.SideAway {
		dy = -dy
	}
	b.X += (r.Float64() - 0.5) * driftSideways
	b.Y += dy
	b.Point = model.ClampPoint(b.Point)

	// A stalled attack ends with the defending keeper.
	if attackY(b.Possession, b.Y) > attackLimit {
		opp := b.Possession.Opponent()
		b = model.Ball{Point: model.Point{X: 50, Y: attackY(opp, 6)}, Possession: opp}
	}
	return b
}
