package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/types"
	"github.com/okian/matchday/pkg/metrics"
)

// MemoryStore keeps results in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]types.Result
	order   []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]types.Result)}
}

// Record implements Store.
func (s *MemoryStore) Record(ctx context.Context, r types.Result) error { //nolint:gocritic // hugeParam: Store contract
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.MatchID == "" {
		return ErrEmptyMatchID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[r.MatchID]; ok {
		metrics.RecordHandoffDuplicate()
		return nil
	}
	r.Events = cloneEvents(r)
	s.results[r.MatchID] = r
	s.order = append(s.order, r.MatchID)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, matchID string) (types.Result, error) {
	if err := ctx.Err(); err != nil {
		return types.Result{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[matchID]
	if !ok {
		return types.Result{}, ErrNotFound
	}
	r.Events = cloneEvents(r)
	return r, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]types.ResultSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]types.ResultSummary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.results[id].Summary())
	}
	s.mu.RUnlock()

	// Insertion order breaks ties between equal finish times.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func cloneEvents(r types.Result) []model.MatchEvent { //nolint:gocritic // hugeParam
	if r.Events == nil {
		return nil
	}
	return append([]model.MatchEvent(nil), r.Events...)
}
