package headless

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/okian/matchday/internal/domain/eventgen"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/types"
	"github.com/okian/matchday/pkg/metrics"
)

// maxSteps bounds one match; a full match needs well under this.
const maxSteps = 10_000

// Fixture is one match to play.
type Fixture struct {
	ID              string
	Seed            int64
	Home            model.Team
	Away            model.Team
	ManagerSide     model.Side
	ObjectAt        []int
	FramesPerMinute int
}

// Play runs a fixture to full time without timers. Reviews resolve as soon
// as they open and half time resumes immediately.
func Play(fx Fixture) (types.Result, Report, error) { //nolint:gocritic // hugeParam
	rng := rand.New(rand.NewSource(fx.Seed)) //nolint:gosec // game randomness
	gen := eventgen.New(eventgen.WithSeed(fx.Seed))
	engine, err := match.New(fx.ID, fx.Home, fx.Away, gen,
		match.WithRand(rng),
		match.WithManagerSide(fx.ManagerSide),
		match.WithVARDelay(0),
	)
	if err != nil {
		return types.Result{}, Report{}, fmt.Errorf("new engine: %w", err)
	}

	rep := Report{
		MatchID:    engine.State().ID,
		Seed:       fx.Seed,
		Home:       fx.Home.Name,
		Away:       fx.Away.Name,
		Objections: map[string]int{},
	}
	field := match.NewField(fx.Home, fx.Away)
	pending := slices.Sorted(slices.Values(fx.ObjectAt))

	for step := 0; ; step++ {
		if step >= maxSteps {
			return types.Result{}, rep, fmt.Errorf("match %s did not reach full time", rep.MatchID)
		}
		st := engine.State()
		var changes []match.Change
		switch {
		case st.Clock.Finished():
			res, err := engine.Finish()
			if err != nil {
				return types.Result{}, rep, err
			}
			rep.Score = res.Score
			rep.MVP = res.Stats.MVP
			rep.Events = len(res.Events)
			rep.Discipline = engine.State().Discipline
			rep.Frames = field.Seq
			return res, rep, nil
		case st.VAR.Active:
			changes, err = engine.ResolveVAR()
			if err != nil {
				return types.Result{}, rep, err
			}
			rep.VARReviews++
			metrics.RecordVARReview(string(st.VAR.Pending.Trigger), string(st.VAR.Pending.Outcome))
			for _, c := range changes {
				if c.Event.Cancels != "" {
					rep.GoalsCanceled++
				}
			}
		case st.Clock.Phase == model.PhaseHalftime:
			changes, err = engine.ResumeSecondHalf()
			if err != nil {
				return types.Result{}, rep, err
			}
		default:
			changes, err = engine.AdvanceMinute()
			if err != nil {
				return types.Result{}, rep, err
			}
			metrics.RecordMinuteAdvanced()
			for range fx.FramesPerMinute {
				field = field.Step(rng)
			}
		}
		field = field.React(changes, rng)

		pending, err = object(engine, pending, &rep)
		if err != nil {
			return types.Result{}, rep, err
		}
	}
}

// object fires every due objection. Objections blocked by an open review
// stay pending; locked or late ones are dropped.
func object(engine *match.Engine, pending []int, rep *Report) ([]int, error) {
	for len(pending) > 0 {
		st := engine.State()
		if pending[0] > st.Clock.Minute || !st.Clock.Running() && !st.Clock.Finished() {
			return pending, nil
		}
		if st.VAR.Active {
			return pending, nil
		}
		res, err := engine.Object()
		pending = pending[1:]
		switch {
		case err == nil:
			rep.Objections[res.Route]++
			metrics.RecordObjection(res.Route)
		case errors.Is(err, match.ErrInvalidTransition):
			rep.Objections["rejected"]++
		default:
			return pending, err
		}
	}
	return pending, nil
}
