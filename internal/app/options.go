package service

import (
	"time"

	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// GeneratorFactory builds the event generator for one match.
type GeneratorFactory func(seed int64) match.Generator

// WithWorkerCount sets the number of handoff workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the handoff queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many handed-off match ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMinuteInterval sets the real time between match minutes.
func WithMinuteInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.minuteInterval = d
		}
	}
}

// WithFrameInterval sets the real time between positional frames.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.frameInterval = d
		}
	}
}

// WithVARDelay sets how long a review stays open before it resolves.
func WithVARDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.varDelay = d
		}
	}
}

// WithSeed makes matches reproducible. Zero seeds from the wall clock.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithManagerSide sets the side the human manager controls.
func WithManagerSide(side model.Side) Option {
	return func(s *Service) {
		if side != model.SideNone {
			s.managerSide = side
		}
	}
}

// WithGenerator replaces the default event generator.
func WithGenerator(f GeneratorFactory) Option {
	return func(s *Service) {
		if f != nil {
			s.newGenerator = f
		}
	}
}
