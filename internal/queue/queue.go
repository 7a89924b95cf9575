// package queue implements the sync task queue: a bounded channel consumed
// by a single worker goroutine, so outbound mutations reach the remote store
// strictly in submission order, one at a time.
//
// One queue exists per session. All entity types share it, so a slow playlist
// write delays a later rating write. That is a deliberate throughput
// trade-off in exchange for a total order over remote effects.
package queue

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/shared"
)

// Task is a unit of outbound work. Run receives the session context; a
// cancelled context means the session ended while the task was queued.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue serializes tasks onto a single worker.
//
// A failed task is logged and discarded: it never stops the worker, never
// skips later tasks, and never propagates to the caller that triggered the
// mutation (that caller already returned after its synchronous local write).
type Queue struct {
	logger *log.Logger
	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// New creates a queue with the given buffer size and starts its worker.
// Enqueue blocks once size tasks are waiting, providing backpressure.
func New(size int, logger *log.Logger) *Queue {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		logger: logger,
		tasks:  make(chan Task, size),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

// Context returns the session context tasks run under. It is cancelled when
// the queue stops.
func (q *Queue) Context() context.Context {
	return q.ctx
}

// Enqueue submits a task for execution after every previously submitted
// task has settled. Returns [shared.ErrQueueClosed] once the queue stopped.
func (q *Queue) Enqueue(t Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return shared.ErrQueueClosed
	}
	q.pending.Add(1)
	q.mu.Unlock()

	select {
	case q.tasks <- t:
		return nil
	case <-q.ctx.Done():
		q.pending.Done()
		return shared.ErrQueueClosed
	}
}

// Drain blocks until every task enqueued so far has settled. Used as a
// logout barrier and as a synchronization point in tests.
func (q *Queue) Drain() {
	q.pending.Wait()
}

// Stop cancels the session context and shuts the worker down. The task in
// flight observes cancellation through its context; tasks still queued are
// discarded without running.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.cancel()
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.ctx.Done():
			q.discard()
			return
		case t := <-q.tasks:
			if q.ctx.Err() != nil {
				q.logger.Debug("sync task discarded", "task", t.Name)
				q.pending.Done()
				continue
			}
			q.execute(t)
		}
	}
}

// execute runs one task and releases its pending slot. Errors are logged and
// dropped; the mirror and remote store disagree until a later mutation on
// the same entity resubmits its state.
func (q *Queue) execute(t Task) {
	defer q.pending.Done()
	if err := t.Run(q.ctx); err != nil {
		q.logger.Error("sync task failed", "task", t.Name, "err", err)
	}
}

// discard drops tasks still buffered after cancellation.
func (q *Queue) discard() {
	for {
		select {
		case t := <-q.tasks:
			q.logger.Debug("sync task discarded", "task", t.Name)
			q.pending.Done()
		default:
			return
		}
	}
}
