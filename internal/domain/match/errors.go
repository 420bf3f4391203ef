package match

import "errors"

// Sentinel errors for engine transitions. Invalid transitions leave the
// state untouched.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrObjectionLocked   = errors.New("objections locked")
	ErrReviewActive      = errors.New("var review active")
	ErrTacticsOpen       = errors.New("tactics panel open")
	ErrNotFullTime       = errors.New("match not at full time")
	ErrNilGenerator      = errors.New("event generator is required")
	ErrUnknownTeams      = errors.New("both teams need a distinct name")
)
