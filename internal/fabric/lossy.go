// SPDX-License-Identifier: MIT
package fabric

import "sync/atomic"

// Lossy is a fixed-capacity FIFO whose operations never block. When full, a
// push evicts the oldest pending value so the consumer always sees the most
// recent ones. Lossy has a single producer; TryPop may run concurrently with
// TryPush.
type Lossy[T any] struct {
	ch      chan T
	dropped atomic.Uint64
}

// NewLossy creates a lossy channel holding up to capacity values, at least
// one.
func NewLossy[T any](capacity int) *Lossy[T] {
	return &Lossy[T]{ch: make(chan T, max(capacity, 1))}
}

// TryPush enqueues v. If the oldest pending value had to be evicted to make
// room it is returned with true so the caller can recycle it. v itself is
// always enqueued.
func (l *Lossy[T]) TryPush(v T) (T, bool) {
	var zero T
	select {
	case l.ch <- v:
		return zero, false
	default:
	}

	var evicted T
	select {
	case evicted = <-l.ch:
	default:
		// The consumer emptied it meanwhile. Only the producer sends, so
		// the free slot stays free.
		l.ch <- v
		return zero, false
	}

	l.dropped.Add(1)
	l.ch <- v
	return evicted, true
}

// TryPop dequeues the oldest value if there is one.
func (l *Lossy[T]) TryPop() (T, bool) {
	select {
	case v := <-l.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Dropped returns how many values have been discarded.
func (l *Lossy[T]) Dropped() uint64 {
	return l.dropped.Load()
}

// Len returns the number of pending values.
func (l *Lossy[T]) Len() int {
	return len(l.ch)
}
