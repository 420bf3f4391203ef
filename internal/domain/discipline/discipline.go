// Package discipline is the manager's escalating sanction machine.
//
// States only move forward: NONE, WARNED, YELLOW, RED. RED is terminal and
// locks the manager out of further objections.
package discipline

import (
	"fmt"

	"github.com/okian/matchday/internal/domain/model"
)

// Roll thresholds. From NONE a single draw picks WARNED below warnThreshold
// and YELLOW in [warnThreshold, noneYellowCeiling).
const (
	warnThreshold     = 0.4
	noneYellowCeiling = 0.5
	warnedToYellow    = 0.5
	yellowToRed       = 0.6
)

// Roll applies one random draw u in [0,1) to the current state.
func Roll(cur model.Discipline, u float64) model.Discipline {
	switch cur {
	case model.DisciplineNone:
		switch {
		case u < warnThreshold:
			return model.DisciplineWarned
		case u < noneYellowCeiling:
			return model.DisciplineYellow
		}
	case model.DisciplineWarned:
		if u < warnedToYellow {
			return model.DisciplineYellow
		}
	case model.DisciplineYellow:
		if u < yellowToRed {
			return model.DisciplineRed
		}
	}
	return cur
}

// Escalate moves exactly one step, stopping at RED.
func Escalate(cur model.Discipline) model.Discipline {
	if cur >= model.DisciplineRed {
		return model.DisciplineRed
	}
	return cur + 1
}

// Locked reports whether objections are disabled.
func Locked(d model.Discipline) bool { return d == model.DisciplineRed }

// Event builds the log entry for entering state next at minute. reason is
// appended when non-empty. NONE produces no event.
func Event(next model.Discipline, minute int, teamName, reason string) (model.MatchEvent, bool) {
	var (
		typ  model.EventType
		text string
	)
	switch next {
	case model.DisciplineWarned:
		typ, text = model.EventInfo, "The referee warns the manager"
	case model.DisciplineYellow:
		typ, text = model.EventCardYellow, "The manager is shown a yellow card"
	case model.DisciplineRed:
		typ, text = model.EventCardRed, "The manager is sent to the stands"
	default:
		return model.MatchEvent{}, false
	}
	if reason != "" {
		text = fmt.Sprintf("%s: %s", text, reason)
	}
	return model.NewEvent(minute, typ, teamName, text), true
}
