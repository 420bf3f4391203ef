// Package headless plays complete matches without timers or a server and
// reports what happened. It drives the same engine and handoff pipeline as
// the live service.
package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchday/internal/adapters/mq/queue"
	"github.com/okian/matchday/internal/adapters/mq/worker"
	"github.com/okian/matchday/internal/adapters/repository"
	service "github.com/okian/matchday/internal/app"
	"github.com/okian/matchday/pkg/logger"
)

const drainTimeout = 30 * time.Second

// Run plays cfg.Matches fixtures, records their results and returns the
// summary. The summary is also written to cfg.OutputFile when set.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	log := logger.Get().Named("headless")

	summary := &Summary{
		RunID:     uuid.NewString(),
		Seed:      cfg.Seed,
		StartedAt: time.Now().UTC(),
	}
	log.Info(ctx, "starting headless run",
		logger.String("run", summary.RunID),
		logger.Int("matches", cfg.Matches),
		logger.Int("parallel", cfg.Parallel),
		logger.String("home", cfg.Home),
		logger.String("away", cfg.Away),
		logger.Any("objectAt", cfg.ObjectAt),
	)

	// Step 1: open the results store
	store, err := openStore(ctx, cfg.ResultsDSN)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn(ctx, "closing results store", logger.Error(cerr))
		}
	}()

	// Step 2: start the handoff pipeline
	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.Matches))
	pool := worker.NewPool(cfg.Parallel, q, store, worker.WithLogger(log))
	pool.Start(context.WithoutCancel(ctx))

	// Step 3: play every fixture
	reports, playErr := playAll(ctx, cfg, q, log)

	// Step 4: drain the pipeline
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if err := pool.Shutdown(drainCtx); err != nil {
		playErr = errors.Join(playErr, fmt.Errorf("drain results: %w", err))
	}
	if playErr != nil {
		return nil, playErr
	}

	// Step 5: summarize
	for _, r := range reports {
		summary.add(r)
	}
	if summary.Stored, err = store.Count(ctx); err != nil {
		return nil, fmt.Errorf("count results: %w", err)
	}
	summary.Duration = time.Since(summary.StartedAt)

	if cfg.OutputFile != "" {
		if err := summary.Save(cfg.OutputFile); err != nil {
			return summary, err
		}
		log.Info(ctx, "summary saved", logger.String("file", cfg.OutputFile))
	}

	log.Info(ctx, "headless run finished",
		logger.String("run", summary.RunID),
		logger.Int("homeWins", summary.Totals.HomeWins),
		logger.Int("awayWins", summary.Totals.AwayWins),
		logger.Int("draws", summary.Totals.Draws),
		logger.Int("goals", summary.Totals.Goals),
		logger.Int("stored", summary.Stored),
		logger.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func openStore(ctx context.Context, dsn string) (repository.Store, error) {
	if dsn == "" {
		return repository.NewMemoryStore(), nil
	}
	store, err := repository.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open results store: %w", err)
	}
	return store, nil
}

// playAll plays fixtures on cfg.Parallel goroutines and enqueues each
// result. Reports come back in fixture order.
func playAll(ctx context.Context, cfg *Config, q queue.Queue, log logger.Logger) ([]Report, error) {
	reports := make([]Report, cfg.Matches)
	errs := make([]error, cfg.Matches)
	next := make(chan int)

	var wg sync.WaitGroup
	for range cfg.Parallel {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				reports[i], errs[i] = playOne(ctx, cfg, i, q, log)
			}
		}()
	}

feed:
	for i := range cfg.Matches {
		select {
		case next <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(next)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run interrupted: %w", err)
	}
	return reports, errors.Join(errs...)
}

func playOne(ctx context.Context, cfg *Config, i int, q queue.Queue, log logger.Logger) (Report, error) {
	fx := Fixture{
		Seed:            cfg.Seed + int64(i),
		Home:            service.DemoTeam(cfg.Home, cfg.HomeFormation, cfg.HomeStrength),
		Away:            service.DemoTeam(cfg.Away, cfg.AwayFormation, cfg.AwayStrength),
		ManagerSide:     cfg.ManagerSide,
		ObjectAt:        cfg.ObjectAt,
		FramesPerMinute: cfg.FramesPerMinute,
	}
	res, rep, err := Play(fx)
	if err != nil {
		return rep, fmt.Errorf("fixture %d: %w", i, err)
	}
	if err := q.Enqueue(ctx, res); err != nil {
		return rep, fmt.Errorf("fixture %d handoff: %w", i, err)
	}
	if cfg.Verbose {
		log.Info(ctx, "match played",
			logger.String("match", rep.MatchID),
			logger.Int("home", rep.Score.Home),
			logger.Int("away", rep.Score.Away),
			logger.String("mvp", rep.MVP),
			logger.Int("varReviews", rep.VARReviews),
		)
	}
	return rep, nil
}
