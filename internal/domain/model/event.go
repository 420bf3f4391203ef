// Package model contains domain models passed between layers.
package model

import "github.com/google/uuid"

// EventType classifies a match event.
type EventType string

const (
	EventGoal         EventType = "GOAL"
	EventMiss         EventType = "MISS"
	EventCardYellow   EventType = "CARD_YELLOW"
	EventCardRed      EventType = "CARD_RED"
	EventInfo         EventType = "INFO"
	EventVAR          EventType = "VAR"
	EventFoul         EventType = "FOUL"
	EventCorner       EventType = "CORNER"
	EventInjury       EventType = "INJURY"
	EventOffside      EventType = "OFFSIDE"
	EventSave         EventType = "SAVE"
	EventSubstitution EventType = "SUBSTITUTION"
)

// VAROutcome is the verdict carried by a VAR-flagged event.
type VAROutcome string

const (
	VARGoal   VAROutcome = "GOAL"
	VARNoGoal VAROutcome = "NO_GOAL"
)

// MatchEvent is an immutable entry in the match log.
// Optional fields are empty when not applicable.
type MatchEvent struct {
	ID         string     `json:"id"`
	Minute     int        `json:"minute"`
	Type       EventType  `json:"type"`
	TeamName   string     `json:"teamName,omitempty"`
	Scorer     string     `json:"scorer,omitempty"`
	Assist     string     `json:"assist,omitempty"`
	PlayerID   string     `json:"playerId,omitempty"`
	VAROutcome VAROutcome `json:"varOutcome,omitempty"`
	Text       string     `json:"text,omitempty"`
	// Cancels names an earlier event this one compensates for.
	Cancels string `json:"cancels,omitempty"`
}

// NewEvent returns an event with a fresh id.
func NewEvent(minute int, typ EventType, teamName, text string) MatchEvent {
	return MatchEvent{
		ID:       uuid.NewString(),
		Minute:   minute,
		Type:     typ,
		TeamName: teamName,
		Text:     text,
	}
}

// Info returns an INFO event with no team affiliation.
func Info(minute int, text string) MatchEvent {
	return NewEvent(minute, EventInfo, "", text)
}

// IsGoal reports whether the event counts as a scored goal.
func (e MatchEvent) IsGoal() bool { return e.Type == EventGoal }
