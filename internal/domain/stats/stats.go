// Package stats folds match events into running team statistics.
//
// Apply is a pure reducer. Every counter it touches is recorded in the
// returned Delta so a VAR reversal can take back exactly that contribution.
package stats

import "github.com/okian/matchday/internal/domain/model"

const (
	MinPossession = 20
	MaxPossession = 80
)

// TeamStats holds one side's counters.
type TeamStats struct {
	Possession    int `json:"possession"`
	Shots         int `json:"shots"`
	ShotsOnTarget int `json:"shotsOnTarget"`
	Corners       int `json:"corners"`
	Fouls         int `json:"fouls"`
	Offsides      int `json:"offsides"`
	YellowCards   int `json:"yellowCards"`
	RedCards      int `json:"redCards"`
}

// Stats is the running aggregate for a match.
type Stats struct {
	Home TeamStats `json:"home"`
	Away TeamStats `json:"away"`

	// ManagerCards mirrors the manager's discipline label.
	ManagerCards string `json:"managerCards"`
	// MVP is the name of the current best-rated player.
	MVP string `json:"mvp,omitempty"`
}

// Delta records the counters one Apply call incremented for a side.
// Possession is not part of it; drift is not reverted.
type Delta struct {
	Side          model.Side `json:"side"`
	Shots         int        `json:"shots"`
	ShotsOnTarget int        `json:"shotsOnTarget"`
	Corners       int        `json:"corners"`
	Fouls         int        `json:"fouls"`
	Offsides      int        `json:"offsides"`
	YellowCards   int        `json:"yellowCards"`
	RedCards      int        `json:"redCards"`
}

// IsZero reports whether the delta changed nothing.
func (d Delta) IsZero() bool {
	return d == Delta{Side: d.Side}
}

// New returns stats for kick-off with possession split evenly.
func New() Stats {
	return Stats{
		Home:         TeamStats{Possession: 50},
		Away:         TeamStats{Possession: 50},
		ManagerCards: model.DisciplineNone.String(),
	}
}

// Side returns a copy of the counters for side.
func (s Stats) Side(side model.Side) TeamStats {
	if side == model.SideAway {
		return s.Away
	}
	return s.Home
}

func (s *Stats) team(side model.Side) *TeamStats {
	switch side {
	case model.SideHome:
		return &s.Home
	case model.SideAway:
		return &s.Away
	default:
		return nil
	}
}

// Apply folds ev, attributed to side, into s. Events with no side leave the
// stats untouched and return a zero delta.
func Apply(s Stats, side model.Side, ev model.MatchEvent) (Stats, Delta) {
	d := Delta{Side: side}
	t := s.team(side)
	if t == nil {
		return s, d
	}

	drift(&s, side)

	switch ev.Type {
	case model.EventGoal, model.EventSave:
		d.Shots, d.ShotsOnTarget = 1, 1
	case model.EventMiss:
		d.Shots = 1
	case model.EventCorner:
		d.Corners = 1
	case model.EventFoul:
		d.Fouls = 1
	case model.EventOffside:
		d.Offsides = 1
	case model.EventCardYellow:
		d.YellowCards = 1
	case model.EventCardRed:
		d.RedCards = 1
	}
	add(t, d, 1)
	return s, d
}

// Revert subtracts exactly the counters recorded in d. Counters never go below zero.
func Revert(s Stats, d Delta) Stats {
	t := s.team(d.Side)
	if t == nil {
		return s
	}
	add(t, d, -1)
	return s
}

func add(t *TeamStats, d Delta, sign int) {
	t.Shots = floor(t.Shots + sign*d.Shots)
	t.ShotsOnTarget = floor(t.ShotsOnTarget + sign*d.ShotsOnTarget)
	t.Corners = floor(t.Corners + sign*d.Corners)
	t.Fouls = floor(t.Fouls + sign*d.Fouls)
	t.Offsides = floor(t.Offsides + sign*d.Offsides)
	t.YellowCards = floor(t.YellowCards + sign*d.YellowCards)
	t.RedCards = floor(t.RedCards + sign*d.RedCards)
}

// drift moves one point of possession toward side.
func drift(s *Stats, side model.Side) {
	home := s.Home.Possession
	if side == model.SideHome {
		home++
	} else {
		home--
	}
	if home < MinPossession {
		home = MinPossession
	}
	if home > MaxPossession {
		home = MaxPossession
	}
	s.Home.Possession = home
	s.Away.Possession = 100 - home
}

func floor(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
