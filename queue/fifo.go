// Package queue provides the work queue shared by fan-out workers.
package queue

import "sync"

const minCapacity = 16

// FIFO is a thread-safe first-in-first-out queue backed by a growable
// circular buffer. Items are dequeued strictly in push order; each item is
// returned by exactly one TryPop.
//
// The zero value is an empty queue ready for use.
type FIFO[T any] struct {
	mu         sync.Mutex
	buf        []T // circular buffer
	head, tail int // read/write indices
	size       int // number of items currently buffered
}

// New creates a FIFO with room for capacity items before it grows.
func New[T any](capacity int) *FIFO[T] {
	return &FIFO[T]{buf: make([]T, max(capacity, 0))}
}

// From creates a FIFO holding items in order.
func From[T any](items []T) *FIFO[T] {
	q := New[T](len(items))
	q.PushAll(items...)
	return q
}

// Len returns the number of items currently waiting in the queue.
func (q *FIFO[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Push inserts v at the tail of the queue, growing the buffer if full.
func (q *FIFO[T]) Push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.push(v)
}

// PushAll inserts items at the tail in order under a single lock.
func (q *FIFO[T]) PushAll(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if need := q.size + len(items); need > len(q.buf) {
		q.resize(need)
	}
	for _, v := range items {
		q.push(v)
	}
}

// TryPop removes and returns the oldest item. It never blocks; on an empty
// queue it returns the zero value and false.
func (q *FIFO[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head++
	if q.head == len(q.buf) {
		q.head = 0
	}
	q.size--
	return v, true
}

// Drain removes and returns every queued item in order.
func (q *FIFO[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]T, q.size)
	q.copyTo(out)
	clear(q.buf)
	q.head, q.tail, q.size = 0, 0, 0
	return out
}

func (q *FIFO[T]) push(v T) {
	if q.size == len(q.buf) {
		q.resize(max(2*len(q.buf), minCapacity))
	}
	q.buf[q.tail] = v
	q.tail++
	if q.tail == len(q.buf) {
		q.tail = 0
	}
	q.size++
}

// resize moves the buffered items to the front of a new buffer of capacity n.
func (q *FIFO[T]) resize(n int) {
	buf := make([]T, n)
	q.copyTo(buf)
	q.buf = buf
	q.head = 0
	q.tail = q.size
	if q.tail == n {
		q.tail = 0
	}
}

// copyTo copies the buffered items in order into dst, which must hold size items.
func (q *FIFO[T]) copyTo(dst []T) {
	if q.size == 0 {
		return
	}
	if q.head < q.tail {
		copy(dst, q.buf[q.head:q.tail])
		return
	}
	n := copy(dst, q.buf[q.head:])
	copy(dst[n:], q.buf[:q.tail])
}
