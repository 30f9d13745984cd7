// Package queue holds the recompute backlog: (student, listing) pairs
// awaiting rescoring, ordered by priority tier then FIFO. Claiming an
// item is an atomic pending -> processing transition with a lease, so no
// two workers recompute the same pair at once; a sweeper requeues items
// whose lease expired before a terminal state was reached.
package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campuslink/matchengine/internal/domain/model"
	"github.com/campuslink/matchengine/pkg/metrics"
)

// Reason records why a pair was enqueued.
type Reason string

const (
	ReasonProfileChange  Reason = "profile-change"
	ReasonScheduleChange Reason = "schedule-change"
	ReasonListingChange  Reason = "listing-change"
	ReasonTTLExpiry      Reason = "ttl-expiry"
	ReasonManual         Reason = "manual"
)

// Tier maps a reason to its priority tier. Targeted changes outrank TTL
// expiry, which outranks manual bulk triggers, so a recompute-all never
// starves user-triggered work.
func (r Reason) Tier() int {
	switch r {
	case ReasonProfileChange, ReasonScheduleChange, ReasonListingChange:
		return 0
	case ReasonTTLExpiry:
		return 1
	default:
		return 2
	}
}

// State is an item's lifecycle state.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Item is one queued recompute task.
type Item struct {
	ID          string     `json:"id"`
	Pair        model.Pair `json:"pair"`
	Reason      Reason     `json:"reason"`
	State       State      `json:"state"`
	Attempts    int        `json:"attempts"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	tier        int
	seq         uint64
	leaseUntil  time.Time
	nextAttempt time.Time

	readyIndex   int
	delayedIndex int
}

// Counts exposes queue depth by state for observability.
type Counts struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Processed  int `json:"processed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// Default queue configuration constants.
const (
	defaultCapacity    = 100000
	defaultMaxAttempts = 3
	defaultLease       = 30 * time.Second
	defaultBaseBackoff = 2 * time.Second
	defaultMaxBackoff  = 5 * time.Minute
	sweepInterval      = 5 * time.Second
)

// RecomputeQueue is the in-process backlog implementation.
type RecomputeQueue struct {
	mu sync.Mutex

	pendingByPair map[model.Pair]*Item
	processing    map[string]*Item
	ready         readyHeap
	delayed       delayedHeap

	seq         uint64
	capacity    int
	maxAttempts int
	lease       time.Duration
	baseBackoff time.Duration
	maxBackoff  time.Duration
	now         func() time.Time

	processed int
	failed    int

	notify chan struct{}
	closed bool
}

// New creates a RecomputeQueue with configuration options.
func New(opts ...Option) *RecomputeQueue {
	q := &RecomputeQueue{
		pendingByPair: make(map[model.Pair]*Item),
		processing:    make(map[string]*Item),
		capacity:      defaultCapacity,
		maxAttempts:   defaultMaxAttempts,
		lease:         defaultLease,
		baseBackoff:   defaultBaseBackoff,
		maxBackoff:    defaultMaxBackoff,
		now:           time.Now,
		notify:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue adds a pair to the backlog. A pair that is already pending is
// not duplicated: its existing item is upgraded when the new reason
// ranks higher. Returns false when the queue is full or closed.
func (q *RecomputeQueue) Enqueue(ctx context.Context, pair model.Pair, reason Reason) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if existing, ok := q.pendingByPair[pair]; ok {
		if reason.Tier() < existing.tier {
			existing.tier = reason.Tier()
			existing.Reason = reason
			if existing.State == StatePending && existing.nextAttempt.IsZero() {
				heap.Fix(&q.ready, existing.readyIndex)
			}
		}
		return true
	}

	if len(q.pendingByPair)+len(q.processing) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		return false
	}

	q.seq++
	item := &Item{
		ID:         uuid.NewString(),
		Pair:       pair,
		Reason:     reason,
		State:      StatePending,
		EnqueuedAt: q.now(),
		tier:       reason.Tier(),
		seq:        q.seq,
	}
	q.pendingByPair[pair] = item
	heap.Push(&q.ready, item)

	metrics.RecordQueueEnqueue()
	metrics.UpdateQueuePending(len(q.pendingByPair))
	q.signal()
	return true
}

// Claim atomically moves the highest-priority ready item from pending to
// processing and leases it to the caller. Returns false when nothing is
// ready; callers should wait on Notify before retrying.
func (q *RecomputeQueue) Claim(ctx context.Context) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.promoteDelayed(now)

	if q.ready.Len() == 0 {
		return Item{}, false
	}

	item := heap.Pop(&q.ready).(*Item)
	item.State = StateProcessing
	item.leaseUntil = now.Add(q.lease)
	delete(q.pendingByPair, item.Pair)
	q.processing[item.ID] = item

	metrics.UpdateQueuePending(len(q.pendingByPair))
	return *item, true
}

// Complete marks a claimed item done. The item is consumed exactly once
// and never requeued on success.
func (q *RecomputeQueue) Complete(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.processing[id]
	if !ok {
		return ErrUnknownItem
	}
	delete(q.processing, id)
	now := q.now()
	item.State = StateDone
	item.ProcessedAt = &now
	q.processed++

	metrics.RecordQueueProcessed()
	return nil
}

// Fail records a processing failure. The item is requeued with
// exponential backoff until the attempt ceiling, then marked failed and
// surfaced through Counts instead of looping forever.
func (q *RecomputeQueue) Fail(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.processing[id]
	if !ok {
		return ErrUnknownItem
	}
	delete(q.processing, id)

	item.Attempts++
	if item.Attempts >= q.maxAttempts {
		item.State = StateFailed
		q.failed++
		metrics.RecordQueueFailed()
		return nil
	}

	item.State = StatePending
	item.nextAttempt = q.now().Add(q.backoff(item.Attempts))
	q.pendingByPair[item.Pair] = item
	heap.Push(&q.delayed, item)

	metrics.RecordQueueRetry()
	metrics.UpdateQueuePending(len(q.pendingByPair))
	return nil
}

// DropPending removes pending items matching pred, e.g. pairs whose
// student or listing was deleted before a worker claimed them.
func (q *RecomputeQueue) DropPending(ctx context.Context, pred func(model.Pair) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	var dropped int
	for pair, item := range q.pendingByPair {
		if !pred(pair) {
			continue
		}
		delete(q.pendingByPair, pair)
		q.remove(item)
		dropped++
	}
	metrics.UpdateQueuePending(len(q.pendingByPair))
	return dropped
}

// Counts returns the queue depth by state.
func (q *RecomputeQueue) Counts(ctx context.Context) Counts {
	q.mu.Lock()
	defer q.mu.Unlock()

	c := Counts{
		Pending:    len(q.pendingByPair),
		Processing: len(q.processing),
		Processed:  q.processed,
		Failed:     q.failed,
	}
	c.Total = c.Pending + c.Processing + c.Processed + c.Failed
	return c
}

// Len returns the number of pending items.
func (q *RecomputeQueue) Len(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pendingByPair)
}

// Notify returns a channel that receives a signal when work may be
// available. Workers wait on it between empty claims.
func (q *RecomputeQueue) Notify() <-chan struct{} {
	return q.notify
}

// Close stops accepting new items.
func (q *RecomputeQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

// Closed reports whether the queue stopped accepting items.
func (q *RecomputeQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// RunSweeper periodically reclaims items whose lease expired (worker
// crash or stall) and promotes backoff-delayed retries, until ctx ends.
func (q *RecomputeQueue) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.sweep()
		}
	}
}

// sweep requeues expired leases and wakes workers when retries are ready.
func (q *RecomputeQueue) sweep() {
	q.mu.Lock()

	now := q.now()
	var reclaimed int
	for id, item := range q.processing {
		if item.leaseUntil.After(now) {
			continue
		}
		delete(q.processing, id)
		item.State = StatePending
		item.nextAttempt = time.Time{}
		q.pendingByPair[item.Pair] = item
		heap.Push(&q.ready, item)
		reclaimed++
	}
	q.promoteDelayed(now)
	hasReady := q.ready.Len() > 0

	metrics.UpdateQueuePending(len(q.pendingByPair))
	q.mu.Unlock()

	if reclaimed > 0 {
		metrics.RecordQueueReclaims(reclaimed)
	}
	if hasReady {
		q.signal()
	}
}

// promoteDelayed moves retry items whose backoff elapsed into the ready
// heap. Caller holds q.mu.
func (q *RecomputeQueue) promoteDelayed(now time.Time) {
	for q.delayed.Len() > 0 && !q.delayed[0].nextAttempt.After(now) {
		item := heap.Pop(&q.delayed).(*Item)
		item.nextAttempt = time.Time{}
		heap.Push(&q.ready, item)
	}
}

// remove detaches a pending item from whichever heap holds it.
// Caller holds q.mu.
func (q *RecomputeQueue) remove(item *Item) {
	if item.nextAttempt.IsZero() {
		if item.readyIndex >= 0 && item.readyIndex < q.ready.Len() {
			heap.Remove(&q.ready, item.readyIndex)
		}
		return
	}
	if item.delayedIndex >= 0 && item.delayedIndex < q.delayed.Len() {
		heap.Remove(&q.delayed, item.delayedIndex)
	}
}

// backoff grows exponentially with the attempt count, capped.
func (q *RecomputeQueue) backoff(attempts int) time.Duration {
	d := q.baseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= q.maxBackoff {
			return q.maxBackoff
		}
	}
	if d > q.maxBackoff {
		return q.maxBackoff
	}
	return d
}

// signal wakes one waiting worker without blocking.
func (q *RecomputeQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
