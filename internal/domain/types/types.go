// Package types contains the payloads shared between the engine, the
// handoff pipeline and the presentation adapter.
package types

import (
	"time"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/positioning"
	"github.com/okian/matchday/internal/domain/stats"
)

// Result is what a finished match hands to the post-match updater.
type Result struct {
	MatchID    string             `json:"matchId"`
	HomeTeam   string             `json:"homeTeam"`
	AwayTeam   string             `json:"awayTeam"`
	Score      model.Score        `json:"score"`
	Events     []model.MatchEvent `json:"events"`
	Stats      stats.Stats        `json:"stats"`
	FinishedAt time.Time          `json:"finishedAt"`
}

// ResultSummary is a Result without its event log, for listings.
type ResultSummary struct {
	MatchID    string      `json:"matchId"`
	HomeTeam   string      `json:"homeTeam"`
	AwayTeam   string      `json:"awayTeam"`
	Score      model.Score `json:"score"`
	FinishedAt time.Time   `json:"finishedAt"`
}

// Summary drops the event log and stats.
func (r Result) Summary() ResultSummary {
	return ResultSummary{
		MatchID:    r.MatchID,
		HomeTeam:   r.HomeTeam,
		AwayTeam:   r.AwayTeam,
		Score:      r.Score,
		FinishedAt: r.FinishedAt,
	}
}

// VARView is the presentation view of a review.
type VARView struct {
	Active  bool   `json:"active"`
	Message string `json:"message,omitempty"`
}

// Snapshot is the presentation view of a live match.
type Snapshot struct {
	MatchID         string           `json:"matchId"`
	HomeTeam        string           `json:"homeTeam"`
	AwayTeam        string           `json:"awayTeam"`
	ManagerSide     model.Side       `json:"managerSide"`
	Minute          int              `json:"minute"`
	Phase           model.Phase      `json:"phase"`
	Score           model.Score      `json:"score"`
	Stats           stats.Stats      `json:"stats"`
	VAR             VARView          `json:"var"`
	Discipline      model.Discipline `json:"discipline"`
	ObjectionLocked bool             `json:"objectionLocked"`
	TacticsOpen     bool             `json:"tacticsOpen"`
	EventCount      int              `json:"eventCount"`
	Finished        bool             `json:"finished"`
}

// Frame is one positional frame.
type Frame struct {
	Seq      uint64                    `json:"seq"`
	Ball     model.Ball                `json:"ball"`
	Entities []positioning.PitchEntity `json:"entities"`
}

// EventsPage is an incremental slice of the event log.
type EventsPage struct {
	Since  int                `json:"since"`
	Next   int                `json:"next"`
	Events []model.MatchEvent `json:"events"`
}

// Page returns the events from index since onward. since is clamped to the log.
func Page(events []model.MatchEvent, since int) EventsPage {
	if since < 0 {
		since = 0
	}
	if since > len(events) {
		since = len(events)
	}
	out := make([]model.MatchEvent, len(events)-since)
	copy(out, events[since:])
	return EventsPage{Since: since, Next: len(events), Events: out}
}
