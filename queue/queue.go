// Package queue provides a fixed-capacity FIFO used to hold events emitted
// from inside state hooks until the caller delivers them.
package queue

import "errors"

var (
	// ErrFull is returned by Push when the queue is at capacity.
	ErrFull = errors.New("queue: full")
	// ErrEmpty is returned by Pop and Front on an empty queue.
	ErrEmpty = errors.New("queue: empty")
)

// Queue is a bounded ring buffer. It is not safe for concurrent use.
type Queue[T any] struct {
	buf  []T
	head int
	size int
}

// New returns an empty queue holding at most capacity items. A capacity
// below one is raised to one.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{buf: make([]T, capacity)}
}

// Push appends v. At capacity it returns ErrFull and leaves the queue as is.
func (q *Queue[T]) Push(v T) error {
	if q.size == len(q.buf) {
		return ErrFull
	}
	q.buf[(q.head+q.size)%len(q.buf)] = v
	q.size++
	return nil
}

// Front returns the oldest item without removing it.
func (q *Queue[T]) Front() (T, error) {
	if q.size == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return q.buf[q.head], nil
}

// Pop removes and returns the oldest item.
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	if q.size == 0 {
		return zero, ErrEmpty
	}
	v := q.buf[q.head]
	// Clear the slot so the buffer does not pin the item.
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, nil
}

// Clear removes every item.
func (q *Queue[T]) Clear() {
	clear(q.buf)
	q.head = 0
	q.size = 0
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return q.size }

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int { return len(q.buf) }

// Empty reports whether Len is zero.
func (q *Queue[T]) Empty() bool { return q.size == 0 }

// Full reports whether Push would fail.
func (q *Queue[T]) Full() bool { return q.size == len(q.buf) }
