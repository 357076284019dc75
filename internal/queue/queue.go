package queue

import (
	"sync"
)

// Queue is a generic thread-safe FIFO. A bounded queue drops its oldest
// items to make room and counts them.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	max     int
	dropped uint64
}

// NewBounded creates a queue holding at most max items. A max of zero or
// less means unbounded.
func NewBounded[T any](max int) *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
		max:   max,
	}
}

// Push appends items to the queue, evicting the oldest ones when the bound
// is exceeded.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
	if q.max > 0 && len(q.items) > q.max {
		over := len(q.items) - q.max
		clear(q.items[:over])
		q.items = q.items[over:]
		q.dropped += uint64(over)
	}
}

// Take removes and returns up to n items from the front.
func (q *Queue[T]) Take(n int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	n = min(n, len(q.items))
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	copy(out, q.items[:n])
	q.items = q.items[n:]
	return out
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many items were evicted to honour the bound.
func (q *Queue[T]) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
