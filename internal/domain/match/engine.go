// Package match is the live match engine: an explicit state object plus the
// transitions the scheduler and the manager can trigger.
//
// The engine is not safe for concurrent use. One goroutine owns it and
// publishes snapshots for readers.
package match

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchday/internal/domain/clock"
	"github.com/okian/matchday/internal/domain/discipline"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/scoring"
	"github.com/okian/matchday/internal/domain/stats"
	"github.com/okian/matchday/internal/domain/types"
	"github.com/okian/matchday/internal/domain/varreview"
)

const defaultVARDelay = 3 * time.Second

// Generator produces zero or one event per minute.
type Generator interface {
	Generate(minute int, home, away model.Team, score model.Score) *model.MatchEvent
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(minute int, home, away model.Team, score model.Score) *model.MatchEvent

// Generate calls f.
func (f GeneratorFunc) Generate(minute int, home, away model.Team, score model.Score) *model.MatchEvent {
	return f(minute, home, away, score)
}

// Rand is the randomness the engine needs.
type Rand interface {
	Float64() float64
}

// State is the complete match state. Events is copy-on-append, so a State
// handed out never changes underneath the reader.
type State struct {
	ID              string             `json:"id"`
	Home            model.Team         `json:"home"`
	Away            model.Team         `json:"away"`
	ManagerSide     model.Side         `json:"managerSide"`
	Clock           clock.Clock        `json:"clock"`
	Score           model.Score        `json:"score"`
	Events          []model.MatchEvent `json:"events"`
	Stats           stats.Stats        `json:"stats"`
	VAR             varreview.State    `json:"var"`
	Discipline      model.Discipline   `json:"discipline"`
	ObjectionLocked bool               `json:"objectionLocked"`
	TacticsOpen     bool               `json:"tacticsOpen"`
	Finished        bool               `json:"finished"`
}

// Change is an event appended by a transition together with the side it
// was attributed to.
type Change struct {
	Event model.MatchEvent
	Side  model.Side
}

// Objection routes.
const (
	RouteReview     = "review"
	RouteDeclined   = "declined"
	RouteDiscipline = "discipline"
)

// ObjectionResult describes what an objection did.
type ObjectionResult struct {
	Route      string
	Discipline model.Discipline
	Changes    []Change
}

// Engine applies transitions to a State.
type Engine struct {
	state      State
	gen        Generator
	rand       Rand
	rater      *scoring.Rater
	varDelay   time.Duration
	now        func() time.Time
	goalDeltas map[string]stats.Delta
	reviewed   map[string]bool
}

// New creates an engine for home against away. id may be empty, in which
// case a uuid is assigned.
func New(id string, home, away model.Team, gen Generator, opts ...Option) (*Engine, error) {
	if gen == nil {
		return nil, ErrNilGenerator
	}
	if home.Name == "" || away.Name == "" || home.Name == away.Name {
		return nil, fmt.Errorf("%w: %q vs %q", ErrUnknownTeams, home.Name, away.Name)
	}
	if id == "" {
		id = uuid.NewString()
	}
	e := &Engine{
		state: State{
			ID:          id,
			Home:        home,
			Away:        away,
			ManagerSide: model.SideHome,
			Stats:       stats.New(),
		},
		gen:        gen,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // game randomness
		rater:      scoring.NewRater(),
		varDelay:   defaultVARDelay,
		now:        time.Now,
		goalDeltas: make(map[string]stats.Delta),
		reviewed:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.appendEvent(model.Info(0, fmt.Sprintf("Kick off: %s vs %s", home.Name, away.Name)))
	return e, nil
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// ManagerTeam returns the team the manager controls.
func (e *Engine) ManagerTeam() model.Team {
	if e.state.ManagerSide == model.SideAway {
		return e.state.Away
	}
	return e.state.Home
}

// SideOf resolves a team name. Unknown names map to SideNone.
func (e *Engine) SideOf(teamName string) model.Side {
	switch teamName {
	case "":
		return model.SideNone
	case e.state.Home.Name:
		return model.SideHome
	case e.state.Away.Name:
		return model.SideAway
	default:
		return model.SideNone
	}
}

// CanAdvance reports whether the minute clock may tick.
func (e *Engine) CanAdvance() bool {
	return !e.state.VAR.Active && !e.state.TacticsOpen && e.state.Clock.Running()
}

// AdvanceMinute moves the clock one step and consults the generator.
func (e *Engine) AdvanceMinute() ([]Change, error) {
	switch {
	case e.state.VAR.Active:
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, ErrReviewActive)
	case e.state.TacticsOpen:
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, ErrTacticsOpen)
	}
	next, ok := e.state.Clock.Advance()
	if !ok {
		return nil, fmt.Errorf("%w: clock stopped in %s", ErrInvalidTransition, e.state.Clock.Phase)
	}
	prev := e.state.Clock
	e.state.Clock = next

	if next.Phase != prev.Phase {
		text := "Half time"
		if next.Phase == model.PhaseFullTime {
			text = "Full time"
		}
		ev := e.appendEvent(model.Info(next.Minute, text))
		return []Change{{Event: ev}}, nil
	}

	ev := e.gen.Generate(next.Minute, e.state.Home, e.state.Away, e.state.Score)
	if ev == nil {
		return nil, nil
	}
	in := *ev
	in.Minute = next.Minute
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	side := e.SideOf(in.TeamName)
	if in.Type == model.EventVAR {
		outcome := in.VAROutcome
		if outcome == "" {
			outcome = model.VARNoGoal
		}
		e.state.VAR = varreview.Start(varreview.Pending{
			Event:   in,
			Side:    side,
			Trigger: varreview.TriggerAuto,
			Outcome: outcome,
		}, next.Minute, e.now().Add(e.varDelay))
		return []Change{{Event: in, Side: side}}, nil
	}
	return []Change{e.applyEvent(in, side)}, nil
}

// ResumeSecondHalf moves HALFTIME to SECOND_HALF.
func (e *Engine) ResumeSecondHalf() ([]Change, error) {
	next, ok := e.state.Clock.ResumeSecondHalf()
	if !ok {
		return nil, fmt.Errorf("%w: resume in %s", ErrInvalidTransition, e.state.Clock.Phase)
	}
	e.state.Clock = next
	ev := e.appendEvent(model.Info(next.Minute, "Second half underway"))
	return []Change{{Event: ev}}, nil
}

// OpenTactics pauses the clock for the tactics panel.
func (e *Engine) OpenTactics() error {
	switch {
	case e.state.TacticsOpen:
		return fmt.Errorf("%w: %w", ErrInvalidTransition, ErrTacticsOpen)
	case e.state.ObjectionLocked:
		return fmt.Errorf("%w: %w", ErrInvalidTransition, ErrObjectionLocked)
	case e.state.Clock.Finished():
		return fmt.Errorf("%w: tactics after full time", ErrInvalidTransition)
	}
	e.state.TacticsOpen = true
	return nil
}

// CloseTactics resumes the clock after the tactics panel.
func (e *Engine) CloseTactics() error {
	if !e.state.TacticsOpen {
		return fmt.Errorf("%w: tactics panel not open", ErrInvalidTransition)
	}
	e.state.TacticsOpen = false
	return nil
}

// Object is the manager protesting to the referee. Against a fresh opposing
// goal the referee may open a review; otherwise the discipline table rolls.
func (e *Engine) Object() (ObjectionResult, error) {
	switch {
	case e.state.ObjectionLocked:
		return ObjectionResult{}, fmt.Errorf("%w: %w", ErrInvalidTransition, ErrObjectionLocked)
	case e.state.VAR.Active:
		return ObjectionResult{}, fmt.Errorf("%w: %w", ErrInvalidTransition, ErrReviewActive)
	case e.state.Clock.Finished():
		return ObjectionResult{}, fmt.Errorf("%w: objection after full time", ErrInvalidTransition)
	}

	minute := e.state.Clock.Minute
	route := RouteDiscipline
	if target, ok := varreview.ObjectionTarget(e.state.Events, e.ManagerTeam().Name, minute, e.reviewed); ok {
		if e.rand.Float64() < varreview.ReviewAcceptChance {
			e.reviewed[target.ID] = true
			e.state.VAR = varreview.Start(varreview.Pending{
				Event:   target,
				Side:    e.SideOf(target.TeamName),
				Trigger: varreview.TriggerObjection,
				Outcome: varreview.ObjectionOutcome(e.rand.Float64()),
				Scored:  true,
				Delta:   e.goalDeltas[target.ID],
			}, minute, e.now().Add(e.varDelay))
			return ObjectionResult{Route: RouteReview, Discipline: e.state.Discipline}, nil
		}
		route = RouteDeclined
	}

	res := ObjectionResult{Route: route}
	if next := discipline.Roll(e.state.Discipline, e.rand.Float64()); next != e.state.Discipline {
		res.Changes = e.escalate(next, "")
	}
	res.Discipline = e.state.Discipline
	return res, nil
}

// ResolveVAR closes the active review and applies its verdict.
func (e *Engine) ResolveVAR() ([]Change, error) {
	verdict, ok := varreview.Resolve(e.state.VAR)
	if !ok {
		return nil, fmt.Errorf("%w: no active review", ErrInvalidTransition)
	}
	p := e.state.VAR.Pending
	e.state.VAR = varreview.State{}

	var changes []Change
	switch {
	case verdict.ApplyStats:
		changes = append(changes, e.applyEvent(verdict.Event, p.Side))
	case verdict.RevertStats:
		e.state.Score = e.state.Score.Add(p.Side, verdict.ScoreDelta)
		e.state.Stats = stats.Revert(e.state.Stats, p.Delta)
		delete(e.goalDeltas, p.Event.ID)
		changes = append(changes, Change{Event: e.appendEvent(verdict.Event), Side: p.Side})
	default:
		changes = append(changes, Change{Event: e.appendEvent(verdict.Event), Side: p.Side})
	}

	if verdict.Upheld && !e.state.ObjectionLocked {
		changes = append(changes, e.escalate(discipline.Escalate(e.state.Discipline), "the goal stands after review")...)
	}
	return changes, nil
}

// Finish marks the match handed off and returns its result. It is only
// valid at full time and may be called again to re-read the result.
func (e *Engine) Finish() (types.Result, error) {
	if !e.state.Clock.Finished() {
		return types.Result{}, fmt.Errorf("%w: %w", ErrInvalidTransition, ErrNotFullTime)
	}
	e.state.Finished = true
	return types.Result{
		MatchID:    e.state.ID,
		HomeTeam:   e.state.Home.Name,
		AwayTeam:   e.state.Away.Name,
		Score:      e.state.Score,
		Events:     e.state.Events,
		Stats:      e.state.Stats,
		FinishedAt: e.now().UTC(),
	}, nil
}

// Snapshot returns the presentation view of the current state.
func (e *Engine) Snapshot() types.Snapshot {
	s := e.state
	return types.Snapshot{
		MatchID:         s.ID,
		HomeTeam:        s.Home.Name,
		AwayTeam:        s.Away.Name,
		ManagerSide:     s.ManagerSide,
		Minute:          s.Clock.Minute,
		Phase:           s.Clock.Phase,
		Score:           s.Score,
		Stats:           s.Stats,
		VAR:             types.VARView{Active: s.VAR.Active, Message: s.VAR.Message},
		Discipline:      s.Discipline,
		ObjectionLocked: s.ObjectionLocked,
		TacticsOpen:     s.TacticsOpen,
		EventCount:      len(s.Events),
		Finished:        s.Finished,
	}
}

// applyEvent scores goals, folds stats and appends ev.
func (e *Engine) applyEvent(ev model.MatchEvent, side model.Side) Change {
	var delta stats.Delta
	e.state.Stats, delta = stats.Apply(e.state.Stats, side, ev)
	if ev.IsGoal() && side != model.SideNone {
		e.state.Score = e.state.Score.Add(side, 1)
		e.goalDeltas[ev.ID] = delta
	}
	return Change{Event: e.appendEvent(ev), Side: side}
}

// escalate moves discipline to next and records the sanction. Manager
// sanctions do not count toward team card stats.
func (e *Engine) escalate(next model.Discipline, reason string) []Change {
	if next <= e.state.Discipline {
		return nil
	}
	e.state.Discipline = next
	e.state.Stats.ManagerCards = next.String()
	if discipline.Locked(next) {
		e.state.ObjectionLocked = true
		e.state.TacticsOpen = false
	}
	team := e.ManagerTeam().Name
	ev, ok := discipline.Event(next, e.state.Clock.Minute, team, reason)
	if !ok {
		return nil
	}
	return []Change{{Event: e.appendEvent(ev), Side: model.SideNone}}
}

// appendEvent copies the log so earlier State values keep their slice.
func (e *Engine) appendEvent(ev model.MatchEvent) model.MatchEvent {
	if n := len(e.state.Events); n > 0 && ev.Minute < e.state.Events[n-1].Minute {
		ev.Minute = e.state.Events[n-1].Minute
	}
	events := make([]model.MatchEvent, len(e.state.Events), len(e.state.Events)+1)
	copy(events, e.state.Events)
	e.state.Events = append(events, ev)
	e.refreshMVP()
	return ev
}

func (e *Engine) refreshMVP() {
	if mvp, ok := e.rater.MVP(e.state.Events, e.state.Home, e.state.Away); ok {
		e.state.Stats.MVP = mvp.Name
		return
	}
	e.state.Stats.MVP = ""
}
