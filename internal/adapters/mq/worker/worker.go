// Package worker runs the recompute loop: claim a queued pair, rescore
// it, persist the result, and acknowledge the item.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/campuslink/matchengine/internal/adapters/mq/queue"
	"github.com/campuslink/matchengine/internal/domain/model"
	"github.com/campuslink/matchengine/pkg/logger"
	"github.com/campuslink/matchengine/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	idlePollInterval        = 250 * time.Millisecond
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Recomputer computes and persists a fresh score for a pair.
type Recomputer interface {
	Recompute(ctx context.Context, studentID, listingID string) (model.MatchScore, error)
}

// Queue defines how workers claim and acknowledge backlog items.
type Queue interface {
	Claim(ctx context.Context) (queue.Item, bool)
	Complete(ctx context.Context, id string) error
	Fail(ctx context.Context, id string) error
	Notify() <-chan struct{}
}

// Worker processes queued recomputes until stopped.
type Worker struct {
	queue      Queue
	recomputer Recomputer
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a worker with configuration options.
func New(q Queue, r Recomputer, opts ...Option) *Worker {
	w := &Worker{
		queue:      q,
		recomputer: r,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run drains the queue until ctx is canceled or Shutdown is called.
// When the queue is empty the worker parks on the queue's notify channel
// with a poll fallback for delayed retries becoming ready.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		default:
		}

		item, ok := w.queue.Claim(ctx)
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-w.shutdown:
				return
			case <-w.queue.Notify():
			case <-ticker.C:
			}
			continue
		}

		if err := w.process(ctx, item); err != nil {
			w.logger.Error(ctx, "recompute failed",
				logger.String("student_id", item.Pair.StudentID),
				logger.String("listing_id", item.Pair.ListingID),
				logger.Error(err),
			)
		}
	}
}

// Shutdown stops the worker and waits for the in-flight item to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process recomputes a claimed item and acknowledges the outcome.
func (w *Worker) process(ctx context.Context, item queue.Item) error {
	start := time.Now()

	score, err := w.recomputer.Recompute(ctx, item.Pair.StudentID, item.Pair.ListingID)
	latency := time.Since(start).Milliseconds()
	metrics.RecordRecomputeLatency(float64(latency))

	if err != nil {
		metrics.RecordRecomputeError()
		if failErr := w.queue.Fail(ctx, item.ID); failErr != nil {
			return fmt.Errorf("recompute pair %s/%s: %w (fail ack: %v)",
				item.Pair.StudentID, item.Pair.ListingID, err, failErr)
		}
		return fmt.Errorf("recompute pair %s/%s: %w", item.Pair.StudentID, item.Pair.ListingID, err)
	}

	if err := w.queue.Complete(ctx, item.ID); err != nil {
		// Lease already reclaimed; the rescore was persisted, another
		// claim of the same pair just overwrites with the same result.
		w.logger.Warn(ctx, "completion after lease loss",
			logger.String("student_id", item.Pair.StudentID),
			logger.String("listing_id", item.Pair.ListingID),
		)
		return nil
	}

	metrics.RecordScoreComputed()
	w.logger.Debug(ctx, "pair rescored",
		logger.String("student_id", item.Pair.StudentID),
		logger.String("listing_id", item.Pair.ListingID),
		logger.Int("composite", score.CompositeScore),
		logger.String("reason", string(item.Reason)),
	)
	return nil
}

// Pool manages multiple workers draining the same queue.
type Pool struct {
	workers []*Worker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count
// defaults to a multiple of the CPU count.
func NewPool(workerCount int, q Queue, r Recomputer) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*Worker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = New(q, r, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown stops accepting new items and waits for workers to drain
// their in-flight work, bounded by poolShutdownTimeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	select {
	case <-p.shutdown:
		return nil
	default:
		close(p.shutdown)
	}

	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		default:
			close(w.shutdown)
			select {
			case <-w.done:
			case <-shutdownCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			}
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	return nil
}
