package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrMatchInProgress = errors.New("a match is already in progress")
	ErrNoMatch         = errors.New("no match mounted")
	ErrNotStarted      = errors.New("service not started")
	ErrMatchReleased   = errors.New("match released")
	ErrHandoff         = errors.New("result handoff failed")
)
