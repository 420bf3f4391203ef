package match

import (
	"time"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/scoring"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRand sets the source for objection, review and discipline rolls.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

// WithManagerSide sets the side the human manager controls.
func WithManagerSide(side model.Side) Option {
	return func(e *Engine) {
		if side != model.SideNone {
			e.state.ManagerSide = side
		}
	}
}

// WithVARDelay sets how long a review stays open. It only feeds the
// deadline shown to viewers; the scheduler owns the timer.
func WithVARDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.varDelay = d
		}
	}
}

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRater replaces the MVP rater.
func WithRater(r *scoring.Rater) Option {
	return func(e *Engine) {
		if r != nil {
			e.rater = r
		}
	}
}
