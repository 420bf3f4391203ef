// Package service runs one live match at a time and hands finished results
// to the post-match pipeline. It implements what the HTTP API needs.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/matchday/internal/adapters/mq/queue"
	"github.com/okian/matchday/internal/adapters/mq/worker"
	"github.com/okian/matchday/internal/adapters/repository"
	"github.com/okian/matchday/internal/domain/dedupe"
	"github.com/okian/matchday/internal/domain/eventgen"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/types"
	"github.com/okian/matchday/pkg/logger"
	"github.com/okian/matchday/pkg/metrics"
	"github.com/okian/matchday/pkg/tracing"
)

const (
	defaultMinuteInterval = time.Second
	defaultFrameInterval  = 50 * time.Millisecond
	defaultVARDelay       = 3 * time.Second
	defaultQueueSize      = 64
	defaultWorkerCount    = 2
	defaultDedupeSize     = 1024
	stopTimeout           = 10 * time.Second
)

// Service owns the mounted match and the handoff pipeline.
type Service struct {
	mu sync.Mutex

	results repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	workerCount    int
	queueSize      int
	dedupeSize     int
	minuteInterval time.Duration
	frameInterval  time.Duration
	varDelay       time.Duration
	seed           int64
	managerSide    model.Side
	newGenerator   GeneratorFactory

	started bool
	matches int64
	current *run

	logger logger.Logger
}

// New constructs a Service that records finished matches in results.
func New(results repository.Store, opts ...Option) *Service {
	s := &Service{
		results:        results,
		workerCount:    defaultWorkerCount,
		queueSize:      defaultQueueSize,
		dedupeSize:     defaultDedupeSize,
		minuteInterval: defaultMinuteInterval,
		frameInterval:  defaultFrameInterval,
		varDelay:       defaultVARDelay,
		managerSide:    model.SideHome,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.results == nil {
		s.results = repository.NewMemoryStore()
	}
	if s.newGenerator == nil {
		s.newGenerator = func(seed int64) match.Generator {
			return eventgen.New(eventgen.WithSeed(seed))
		}
	}
	return s
}

// Start builds the handoff pipeline and starts its workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.results,
		worker.WithFailureHook(func(ctx context.Context, r worker.Result, err error) {
			// Forget the id so a later Finish can hand the match off again.
			s.deduper.Unrecord(ctx, r.MatchID)
		}),
	)
	// Workers outlive the request context that started the service.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "match service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("minuteInterval", s.minuteInterval),
		logger.Duration("frameInterval", s.frameInterval),
	)
	return nil
}

// Stop releases the mounted match and drains the handoff queue.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	if s.current != nil {
		s.current.release()
		s.current = nil
	}

	ctx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	err := s.pool.Shutdown(ctx)

	s.started = false
	s.logger.Info(ctx, "match service stopped")
	return err
}

// StartMatch mounts a new match between home and away and starts its clock.
// A finished match is replaced; an unfinished one is ErrMatchInProgress.
func (s *Service) StartMatch(ctx context.Context, home, away model.Team) (types.Snapshot, error) {
	ctx, span := tracing.Start(ctx, "match.start")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return types.Snapshot{}, ErrNotStarted
	}
	if s.current != nil {
		if !s.current.finished() {
			return types.Snapshot{}, ErrMatchInProgress
		}
		s.current.release()
		s.current = nil
	}

	home, away = completeTeam(home), completeTeam(away)
	s.matches++
	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	seed += s.matches

	engine, err := match.New("", home, away, s.newGenerator(seed),
		match.WithRand(rand.New(rand.NewSource(seed))), //nolint:gosec // game randomness
		match.WithManagerSide(s.managerSide),
		match.WithVARDelay(s.varDelay),
	)
	if err != nil {
		return types.Snapshot{}, err
	}

	r := newRun(engine, runConfig{
		minuteInterval: s.minuteInterval,
		frameInterval:  s.frameInterval,
		fieldRand:      rand.New(rand.NewSource(seed ^ 0x5eed)), //nolint:gosec // game randomness
		handoff:        s.handoff,
		logger:         s.logger.With(logger.String("match", engine.State().ID)),
	})
	s.current = r
	go r.loop(context.WithoutCancel(ctx))

	metrics.RecordMatchStarted()
	span.SetAttributes(
		attribute.String("match.id", engine.State().ID),
		attribute.String("match.home", home.Name),
		attribute.String("match.away", away.Name),
	)
	s.logger.Info(ctx, "match started",
		logger.String("match", engine.State().ID),
		logger.String("home", home.Name),
		logger.String("away", away.Name),
	)
	return r.snapshot(), nil
}

// Release unmounts the current match, finished or not.
func (s *Service) Release(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoMatch
	}
	id := s.current.snapshot().MatchID
	s.current.release()
	s.current = nil
	s.logger.Info(ctx, "match released", logger.String("match", id))
	return nil
}

func (s *Service) mounted() (*run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoMatch
	}
	return s.current, nil
}

// Snapshot returns the latest published view of the mounted match.
func (s *Service) Snapshot(context.Context) (types.Snapshot, error) {
	r, err := s.mounted()
	if err != nil {
		return types.Snapshot{}, err
	}
	return r.snapshot(), nil
}

// Events returns the event log from index since.
func (s *Service) Events(_ context.Context, since int) (types.EventsPage, error) {
	r, err := s.mounted()
	if err != nil {
		return types.EventsPage{}, err
	}
	return types.Page(r.events(), since), nil
}

// Frame returns the latest positional frame.
func (s *Service) Frame(context.Context) (types.Frame, error) {
	r, err := s.mounted()
	if err != nil {
		return types.Frame{}, err
	}
	return r.frame(), nil
}

// Object files a manager objection.
func (s *Service) Object(ctx context.Context) (match.ObjectionResult, error) {
	r, err := s.mounted()
	if err != nil {
		return match.ObjectionResult{}, err
	}
	v, err := r.do(ctx, cmdObject)
	if err != nil {
		return match.ObjectionResult{}, err
	}
	res, _ := v.(match.ObjectionResult)
	return res, nil
}

// OpenTactics pauses the clock for the tactics panel.
func (s *Service) OpenTactics(ctx context.Context) error {
	return s.command(ctx, cmdOpenTactics)
}

// CloseTactics resumes the clock.
func (s *Service) CloseTactics(ctx context.Context) error {
	return s.command(ctx, cmdCloseTactics)
}

// ResumeSecondHalf restarts play after half time.
func (s *Service) ResumeSecondHalf(ctx context.Context) error {
	return s.command(ctx, cmdResume)
}

// Finish hands the full-time result off. Calling it again returns the same
// result without a second handoff.
func (s *Service) Finish(ctx context.Context) (types.Result, error) {
	r, err := s.mounted()
	if err != nil {
		return types.Result{}, err
	}
	v, err := r.do(ctx, cmdFinish)
	if err != nil {
		return types.Result{}, err
	}
	res, _ := v.(types.Result)
	return res, nil
}

func (s *Service) command(ctx context.Context, name commandName) error {
	r, err := s.mounted()
	if err != nil {
		return err
	}
	_, err = r.do(ctx, name)
	return err
}

// handoff runs on the match goroutine.
func (s *Service) handoff(ctx context.Context, res types.Result) error { //nolint:gocritic // hugeParam
	if s.deduper.SeenAndRecord(ctx, res.MatchID) {
		metrics.RecordHandoffDuplicate()
		return nil
	}
	if err := s.queue.Enqueue(ctx, res); err != nil {
		s.deduper.Unrecord(ctx, res.MatchID)
		return fmt.Errorf("%w: %w", ErrHandoff, err)
	}
	return nil
}

// Result reads back a handed-off result.
func (s *Service) Result(ctx context.Context, matchID string) (types.Result, error) {
	return s.results.Get(ctx, matchID)
}

// Results lists handed-off results, most recent first.
func (s *Service) Results(ctx context.Context, limit int) ([]types.ResultSummary, error) {
	return s.results.List(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.Lock()
	started, current, matches := s.started, s.current, s.matches
	q, deduper, pool := s.queue, s.deduper, s.pool
	s.mu.Unlock()

	out := map[string]any{
		"started":        started,
		"workerCount":    s.workerCount,
		"queueCapacity":  s.queueSize,
		"matchesStarted": matches,
		"minuteInterval": s.minuteInterval.String(),
	}
	if started {
		queued := q.Len()
		out["queueLength"] = queued
		out["handedOff"] = deduper.Size()
		out["resultsRecorded"] = pool.Processed()
		metrics.UpdateQueueSize(queued)
	}
	if n, err := s.results.Count(ctx); err == nil {
		out["resultsStored"] = n
	}
	if current != nil {
		snap := current.snapshot()
		out["match"] = snap.MatchID
		out["minute"] = snap.Minute
		out["phase"] = snap.Phase
	}
	return out
}

// IsInvalidTransition reports whether err is a rejected command rather than
// a failure.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, match.ErrInvalidTransition)
}
