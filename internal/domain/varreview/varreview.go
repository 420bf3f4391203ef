// Package varreview models the VAR review side-process.
//
// A review is opened either by a VAR-flagged event from the generator or by
// a manager objection the referee agrees to review. While a review is active
// the match clock is frozen. Resolution produces exactly one log entry at
// the minute the review was triggered.
package varreview

import (
	"fmt"
	"time"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/stats"
)

// Objection odds.
const (
	ReviewAcceptChance = 0.25
	OverturnChance     = 0.40
)

// Trigger says what opened a review.
type Trigger string

const (
	TriggerAuto      Trigger = "auto"
	TriggerObjection Trigger = "objection"
)

// Pending is the goal under review.
type Pending struct {
	Event   model.MatchEvent `json:"event"`
	Side    model.Side       `json:"side"`
	Trigger Trigger          `json:"trigger"`
	Outcome model.VAROutcome `json:"outcome"`
	// Scored is true when the goal is already reflected in score and stats.
	Scored bool `json:"scored"`
	// Delta is the stats contribution recorded when the goal was applied.
	Delta stats.Delta `json:"-"`
}

// State is inactive (zero value) or one active review.
type State struct {
	Active        bool      `json:"active"`
	Message       string    `json:"message,omitempty"`
	Pending       Pending   `json:"-"`
	TriggerMinute int       `json:"triggerMinute,omitempty"`
	Deadline      time.Time `json:"deadline,omitempty"`
}

// Start opens a review for p at minute, resolving at deadline.
func Start(p Pending, minute int, deadline time.Time) State {
	return State{
		Active:        true,
		Message:       message(p),
		Pending:       p,
		TriggerMinute: minute,
		Deadline:      deadline,
	}
}

func message(p Pending) string {
	team := p.Event.TeamName
	if team == "" {
		team = "the attacking side"
	}
	if p.Trigger == TriggerObjection {
		return fmt.Sprintf("VAR: the referee reviews the %s goal after protests", team)
	}
	return fmt.Sprintf("VAR: checking a possible goal for %s", team)
}

// Verdict is everything a resolution changes.
type Verdict struct {
	Event model.MatchEvent
	// ScoreDelta is added to the pending side's score.
	ScoreDelta int
	// ApplyStats folds Event into stats for the pending side.
	ApplyStats bool
	// RevertStats takes back Pending.Delta.
	RevertStats bool
	// Upheld is true when an objected goal survived review.
	Upheld bool
}

// Resolve turns an active review into its verdict. The event carries the
// trigger minute, never the resolution time.
func Resolve(s State) (Verdict, bool) {
	if !s.Active {
		return Verdict{}, false
	}
	p := s.Pending
	minute := s.TriggerMinute
	team := p.Event.TeamName

	if p.Outcome == model.VARGoal {
		if !p.Scored {
			ev := p.Event
			ev.Type = model.EventGoal
			ev.Minute = minute
			ev.VAROutcome = model.VARGoal
			if ev.Text == "" {
				ev.Text = fmt.Sprintf("GOAL for %s confirmed by VAR", team)
			} else {
				ev.Text += " (confirmed by VAR)"
			}
			return Verdict{Event: ev, ScoreDelta: 1, ApplyStats: true}, true
		}
		ev := model.NewEvent(minute, model.EventInfo, team, fmt.Sprintf("VAR: the %s goal stands", team))
		ev.VAROutcome = model.VARGoal
		return Verdict{Event: ev, Upheld: p.Trigger == TriggerObjection}, true
	}

	if p.Scored {
		ev := model.NewEvent(minute, model.EventInfo, team, fmt.Sprintf("VAR: the %s goal is cancelled", team))
		ev.VAROutcome = model.VARNoGoal
		ev.Cancels = p.Event.ID
		return Verdict{Event: ev, ScoreDelta: -1, RevertStats: true}, true
	}
	ev := model.NewEvent(minute, model.EventInfo, team, fmt.Sprintf("VAR: the %s goal is ruled out", team))
	ev.VAROutcome = model.VARNoGoal
	return Verdict{Event: ev}, true
}

// ObjectionTarget finds the most recent goal in the current or preceding
// minute scored by the opponent of managerTeam and not reviewed before.
func ObjectionTarget(events []model.MatchEvent, managerTeam string, minute int, reviewed map[string]bool) (model.MatchEvent, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Minute < minute-1 {
			break
		}
		if !ev.IsGoal() {
			continue
		}
		if ev.TeamName == managerTeam || ev.TeamName == "" || reviewed[ev.ID] {
			continue
		}
		return ev, true
	}
	return model.MatchEvent{}, false
}

// ObjectionOutcome maps the overturn roll to an outcome.
func ObjectionOutcome(u float64) model.VAROutcome {
	if u < OverturnChance {
		return model.VARNoGoal
	}
	return model.VARGoal
}
