package service

import (
	"time"

	recomputequeue "github.com/campuslink/matchengine/internal/adapters/mq/queue"
	"github.com/campuslink/matchengine/internal/adapters/repository"
	"github.com/campuslink/matchengine/internal/domain/availability"
	"github.com/campuslink/matchengine/internal/domain/signals"
	"github.com/campuslink/matchengine/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScoreStore sets the match-score cache implementation.
func WithScoreStore(store repository.ScoreStore) Option {
	return func(s *Service) {
		if store != nil {
			s.scores = store
		}
	}
}

// WithSourceStore sets the source-record store implementation.
func WithSourceStore(store repository.SourceStore) Option {
	return func(s *Service) {
		if store != nil {
			s.sources = store
		}
	}
}

// WithQueue sets a pre-configured recompute queue.
func WithQueue(q *recomputequeue.RecomputeQueue) Option {
	return func(s *Service) {
		if q != nil {
			s.queue = q
		}
	}
}

// WithAvailabilityBuilder sets the availability window builder.
func WithAvailabilityBuilder(b *availability.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithWeights sets the signal weight profile. Start rejects profiles
// that do not sum to 1.
func WithWeights(w signals.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueCapacity sets the backlog capacity when the service builds
// its own queue.
func WithQueueCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.queueCapacity = capacity
		}
	}
}

// WithScoreTTL sets how long a fresh score stays valid.
func WithScoreTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.scoreTTL = ttl
		}
	}
}

// WithTTLSweepInterval sets how often expired scores are collected.
func WithTTLSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.ttlSweep = interval
		}
	}
}

// WithClock overrides the service clock; tests use it to control
// ComputedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
