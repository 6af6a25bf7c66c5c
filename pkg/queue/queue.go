package queue

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrClosed = errors.New("queue is closed")
	ErrFull   = errors.New("queue is full")
)

// Queue is a fixed-capacity FIFO shared between concurrent producers and
// consumers. Receives wait at most a caller-supplied timeout and report
// "empty" as a normal outcome, never as an error; pollers are expected to
// see empty results on most cycles.
type Queue[T any] struct {
	ch   chan T
	done chan struct{}
}

// New creates a queue with the given capacity. Capacities below 1 are
// bumped to 1.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

// TrySend enqueues v without blocking. It returns false when the queue is
// full or closed and the message is discarded.
func (q *Queue[T]) TrySend(v T) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Send enqueues v, waiting up to timeout for free capacity. It returns
// ErrFull when the timeout expires and ErrClosed when the queue has been
// closed.
func (q *Queue[T]) Send(v T, timeout time.Duration) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- v:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case q.ch <- v:
		return nil
	case <-q.done:
		return ErrClosed
	case <-timer.C:
		return ErrFull
	}
}

// Receive dequeues the oldest message, waiting up to timeout for one to
// arrive. The second return value is false when no message was available
// within the timeout.
func (q *Queue[T]) Receive(timeout time.Duration) (T, bool) {
	var zero T

	select {
	case v := <-q.ch:
		return v, true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-q.ch:
		return v, true
	case <-q.done:
		// Drain anything buffered before the close.
		select {
		case v := <-q.ch:
			return v, true
		default:
			return zero, false
		}
	case <-timer.C:
		return zero, false
	}
}

// Close marks the queue closed. Pending messages remain receivable;
// subsequent sends fail. Close is idempotent.
func (q *Queue[T]) Close() {
	select {
	case <-q.done:
	default:
		close(q.done)
	}
}

// Closed reports whether the queue has been closed.
func (q *Queue[T]) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Len returns the number of buffered messages.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
