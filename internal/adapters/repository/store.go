// Package repository stores finished match results handed off by the engine.
package repository

import (
	"context"

	"github.com/okian/matchday/internal/domain/types"
)

// DefaultListLimit bounds List when the caller passes zero.
const DefaultListLimit = 50

// Store provides read/write access to finished results.
type Store interface {
	// Record stores r. Recording the same match id twice keeps the first
	// result and returns nil.
	Record(ctx context.Context, r types.Result) error

	// Get returns the result for matchID or ErrNotFound.
	Get(ctx context.Context, matchID string) (types.Result, error)

	// List returns up to limit summaries, most recently finished first.
	List(ctx context.Context, limit int) ([]types.ResultSummary, error)

	// Count returns the number of stored results.
	Count(ctx context.Context) (int, error)

	Close() error
}

func normalizeLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, ErrInvalidLimit
	case limit == 0:
		return DefaultListLimit, nil
	default:
		return limit, nil
	}
}
