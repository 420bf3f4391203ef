package repository

import "errors"

// Sentinel kinds for results store errors.
var (
	ErrNotFound     = errors.New("result not found")
	ErrInvalidLimit = errors.New("invalid results limit")
	ErrEmptyMatchID = errors.New("result has no match id")
	ErrStorePath    = errors.New("results store path is required")
)
