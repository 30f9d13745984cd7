package queue

import "time"

// Option applies a configuration option to the RecomputeQueue.
type Option func(*RecomputeQueue)

// WithCapacity caps the number of live (pending + processing) items.
func WithCapacity(n int) Option {
	return func(q *RecomputeQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// WithMaxAttempts sets the retry ceiling before an item is marked failed.
func WithMaxAttempts(n int) Option {
	return func(q *RecomputeQueue) {
		if n > 0 {
			q.maxAttempts = n
		}
	}
}

// WithLease sets how long a claimed item stays owned by a worker before
// the sweeper may reclaim it.
func WithLease(d time.Duration) Option {
	return func(q *RecomputeQueue) {
		if d > 0 {
			q.lease = d
		}
	}
}

// WithBackoff sets the base and ceiling for retry backoff.
func WithBackoff(base, max time.Duration) Option {
	return func(q *RecomputeQueue) {
		if base > 0 {
			q.baseBackoff = base
		}
		if max > 0 {
			q.maxBackoff = max
		}
	}
}

// WithClock overrides the queue's clock; tests use it to drive lease
// expiry and backoff deterministically.
func WithClock(now func() time.Time) Option {
	return func(q *RecomputeQueue) {
		if now != nil {
			q.now = now
		}
	}
}
