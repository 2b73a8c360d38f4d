// Package queue provides the mutex-guarded FIFO buffer the scene
// scheduler drains between compute passes.
package queue

import "sync"

// Queue holds items in arrival order and is safe for concurrent use.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends one or more items.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
}

// Pop removes and returns the oldest item, or the zero value when the
// queue is empty.
func (q *Queue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	var item T
	if len(q.items) > 0 {
		item = q.items[0]
		q.items = q.items[1:]
	}
	return item
}

// Empty reports whether the queue holds no items.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Len reports the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear discards all queued items.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	q.items = q.items[:0]
	q.mu.Unlock()
}

// GetAndEmpty hands the caller every queued item in one slice and
// resets the queue. The scheduler uses this to collapse a burst of
// requests into a single compute pass.
func (q *Queue[T]) GetAndEmpty() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.items
	q.items = nil
	return drained
}
