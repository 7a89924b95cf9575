package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/shared"
)

func newTestQueue(size int) *Queue {
	return New(size, shared.NewLogger(io.Discard))
}

func TestQueue_Ordering(t *testing.T) {
	q := newTestQueue(32)
	defer q.Stop()

	var mu sync.Mutex
	var got []int

	for i := 0; i < 20; i++ {
		i := i
		err := q.Enqueue(Task{Name: fmt.Sprintf("task-%d", i), Run: func(ctx context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}})
		if err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	q.Drain()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 20 {
		t.Fatalf("executed %d tasks, want 20", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("tasks ran out of order: %v", got)
		}
	}
}

func TestQueue_FailureIsolation(t *testing.T) {
	q := newTestQueue(8)
	defer q.Stop()

	ran := make(chan struct{})

	q.Enqueue(Task{Name: "failing", Run: func(ctx context.Context) error {
		return errors.New("remote unavailable")
	}})
	q.Enqueue(Task{Name: "following", Run: func(ctx context.Context) error {
		close(ran)
		return nil
	}})

	q.Drain()

	select {
	case <-ran:
	default:
		t.Error("task after a failed task should still run")
	}
}

func TestQueue_OneAtATime(t *testing.T) {
	q := newTestQueue(8)
	defer q.Stop()

	var mu sync.Mutex
	active, overlapped := 0, false

	for i := 0; i < 5; i++ {
		q.Enqueue(Task{Name: "t", Run: func(ctx context.Context) error {
			mu.Lock()
			active++
			if active > 1 {
				overlapped = true
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		}})
	}

	q.Drain()

	if overlapped {
		t.Error("tasks overlapped; queue must run one at a time")
	}
}

func TestQueue_StopCancelsInFlight(t *testing.T) {
	q := newTestQueue(8)

	started := make(chan struct{})
	var sawCancel bool
	var ranSecond bool
	var mu sync.Mutex

	q.Enqueue(Task{Name: "slow", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		mu.Lock()
		sawCancel = true
		mu.Unlock()
		return ctx.Err()
	}})
	q.Enqueue(Task{Name: "queued", Run: func(ctx context.Context) error {
		mu.Lock()
		ranSecond = true
		mu.Unlock()
		return nil
	}})

	<-started
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	if !sawCancel {
		t.Error("in-flight task should observe context cancellation")
	}
	if ranSecond {
		t.Error("queued task should be discarded after Stop")
	}
}

func TestQueue_EnqueueAfterStop(t *testing.T) {
	q := newTestQueue(8)
	q.Stop()

	err := q.Enqueue(Task{Name: "late", Run: func(ctx context.Context) error { return nil }})
	if !errors.Is(err, shared.ErrQueueClosed) {
		t.Errorf("Enqueue() after Stop error = %v, want ErrQueueClosed", err)
	}
}

func TestQueue_StopTwice(t *testing.T) {
	q := newTestQueue(4)
	q.Stop()
	q.Stop() // must not panic or hang
}
