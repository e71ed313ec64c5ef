// ABOUTME: Ordered write-behind queue for rep count updates.
// ABOUTME: Callers get a Ticket at once; a single worker applies writes in order.
package tracker

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrClosed is returned for writes enqueued after the queue was closed.
var ErrClosed = errors.New("write-behind queue closed")

// RepsWriter persists an activity's repetition count.
type RepsWriter interface {
	UpdateActivityReps(ctx context.Context, id int64, reps int) error
}

// Ticket tracks one queued write.
type Ticket struct {
	ID         uuid.UUID
	ActivityID int64
	Reps       int

	done chan struct{}
	err  error
}

func newTicket(activityID int64, reps int) *Ticket {
	return &Ticket{
		ID:         uuid.New(),
		ActivityID: activityID,
		Reps:       reps,
		done:       make(chan struct{}),
	}
}

// Done is closed once the write has been applied or has failed.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Err reports the outcome of the write. It is nil while the write is pending.
func (t *Ticket) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Pending reports whether the write is still queued or in flight.
func (t *Ticket) Pending() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the write completes or ctx ends.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Ticket) finish(err error) {
	t.err = err
	close(t.done)
}

// WriteBehind applies rep count writes in enqueue order on one goroutine.
// Writes are never coalesced or retried.
type WriteBehind struct {
	store      RepsWriter
	log        *zap.Logger
	metrics    *Metrics
	onComplete func(*Ticket)

	mu          sync.Mutex
	queue       []*Ticket
	last        *Ticket
	outstanding int
	closing     bool

	wake    chan struct{}
	stopped chan struct{}
}

// NewWriteBehind starts a queue writing to store. onComplete, when set, runs
// on the worker goroutine after every write, successful or not.
func NewWriteBehind(store RepsWriter, log *zap.Logger, metrics *Metrics, onComplete func(*Ticket)) *WriteBehind {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	w := &WriteBehind{
		store:      store,
		log:        log,
		metrics:    metrics,
		onComplete: onComplete,
		wake:       make(chan struct{}, 1),
		stopped:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue queues an absolute rep count for an activity and returns without
// waiting for the store.
func (w *WriteBehind) Enqueue(activityID int64, reps int) *Ticket {
	t := newTicket(activityID, reps)

	w.mu.Lock()
	if w.closing {
		w.mu.Unlock()
		t.finish(ErrClosed)
		return t
	}
	w.queue = append(w.queue, t)
	w.last = t
	w.outstanding++
	w.mu.Unlock()

	w.metrics.enqueued.Inc()
	w.metrics.pending.Inc()
	w.signal()
	return t
}

// Pending returns the number of writes queued or in flight.
func (w *WriteBehind) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outstanding
}

// Flush waits until every write enqueued before the call has completed.
// Write failures are reported through tickets, not through Flush.
func (w *WriteBehind) Flush(ctx context.Context) error {
	w.mu.Lock()
	last := w.last
	w.mu.Unlock()
	if last == nil {
		return nil
	}
	select {
	case <-last.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and stops the worker.
func (w *WriteBehind) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closing = true
	w.mu.Unlock()
	w.signal()

	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *WriteBehind) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *WriteBehind) run() {
	defer close(w.stopped)
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			closing := w.closing
			w.mu.Unlock()
			if closing {
				return
			}
			<-w.wake
			continue
		}
		t := w.queue[0]
		w.queue[0] = nil
		w.queue = w.queue[1:]
		w.mu.Unlock()

		w.apply(t)
	}
}

func (w *WriteBehind) apply(t *Ticket) {
	err := w.store.UpdateActivityReps(context.Background(), t.ActivityID, t.Reps)

	w.metrics.pending.Dec()
	if err != nil {
		w.metrics.failed.Inc()
		w.log.Warn("reps write failed",
			zap.String("ticket", t.ID.String()),
			zap.Int64("activity_id", t.ActivityID),
			zap.Int("reps", t.Reps),
			zap.Error(err),
		)
	} else {
		w.metrics.persisted.Inc()
	}

	// Hooks observe the outcome before waiters are released, so anything
	// waiting on the ticket sees the hook's effects.
	t.err = err
	if w.onComplete != nil {
		w.onComplete(t)
	}

	w.mu.Lock()
	w.outstanding--
	w.mu.Unlock()
	close(t.done)
}
