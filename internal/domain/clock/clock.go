// Package clock is the authoritative match minute and phase controller.
package clock

import "github.com/okian/matchday/internal/domain/model"

const (
	// HalfTimeMinute is where the first half stops.
	HalfTimeMinute = 45
	// FullTimeMinute is where the second half stops.
	FullTimeMinute = 90
)

// Clock is a value; transitions return a new Clock.
type Clock struct {
	Minute int         `json:"minute"`
	Phase  model.Phase `json:"phase"`
}

// Advance moves the clock one step. The bool is false when the phase does
// not allow advancement. Reaching minute 45 in the first half switches to
// HALFTIME without incrementing; reaching 90 in the second half ends the match.
func (c Clock) Advance() (Clock, bool) {
	switch c.Phase {
	case model.PhaseFirstHalf:
		if c.Minute >= HalfTimeMinute {
			c.Phase = model.PhaseHalftime
			return c, true
		}
		c.Minute++
		return c, true
	case model.PhaseSecondHalf:
		if c.Minute >= FullTimeMinute {
			c.Phase = model.PhaseFullTime
			return c, true
		}
		c.Minute++
		return c, true
	default:
		return c, false
	}
}

// ResumeSecondHalf moves HALFTIME to SECOND_HALF. Any other phase is unchanged.
func (c Clock) ResumeSecondHalf() (Clock, bool) {
	if c.Phase != model.PhaseHalftime {
		return c, false
	}
	c.Phase = model.PhaseSecondHalf
	return c, true
}

// Running reports whether minutes can still be generated.
func (c Clock) Running() bool {
	return c.Phase == model.PhaseFirstHalf || c.Phase == model.PhaseSecondHalf
}

// Finished reports whether the match reached its terminal phase.
func (c Clock) Finished() bool { return c.Phase == model.PhaseFullTime }
