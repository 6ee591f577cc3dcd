// Package queue provides a simple generic FIFO queue used for per-connection
// write queues and per-tick packet queues.
package queue

// Queue is a slice-backed FIFO queue.
//
// The zero value is ready to use. Queue is not goroutine-safe; the transport
// core is single-threaded between ticks so no locking is required.
type Queue[T any] struct {
	items []T
}

// New creates a Queue with the given preallocated capacity.
func New[T any](prealloc int) *Queue[T] {
	return &Queue[T]{items: make([]T, 0, prealloc)}
}

// Enqueue adds an item to the tail of the queue.
func (q *Queue[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

// Dequeue removes and returns the item at the head of the queue.
// The second return value reports whether an item was present.
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero // release the reference for GC
	q.items = q.items[1:]

	return item, true
}

// Peek returns the item at the head of the queue without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	return q.items[0], true
}

// Drain removes and returns all queued items, leaving the queue empty.
func (q *Queue[T]) Drain() []T {
	if len(q.items) == 0 {
		return nil
	}
	items := q.items
	q.items = nil

	return items
}

// Reset resets the queue to an empty state, keeping the underlying array.
func (q *Queue[T]) Reset() {
	clear(q.items)
	q.items = q.items[:0]
}

// IsEmpty returns true if the queue is empty, false otherwise.
func (q *Queue[T]) IsEmpty() bool {
	return len(q.items) == 0
}

// Length returns the number of items in the queue.
func (q *Queue[T]) Length() int {
	return len(q.items)
}
