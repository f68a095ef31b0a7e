// SPDX-License-Identifier: MIT
/*
Package fabric connects the audio callback, the processing loop and the
visualization without shared mutable buffers:

  - Bounded: fixed-capacity FIFO whose Push and Pop give up after a timeout
  - Lossy: fixed-capacity FIFO that never blocks and drops the oldest entry
  - Pool: free-list that recycles chunks so steady state does not allocate
  - Duplex: the callback <-> loop pair plus its chunk pool

Closing a Bounded wakes every waiter with ErrClosed. The underlying Go
channel is never closed, so a late Push cannot panic.
*/
package fabric

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned when a timed operation misses its deadline.
	ErrTimeout = errors.New("fabric: operation timed out")
	// ErrClosed is returned once the channel has been closed.
	ErrClosed = errors.New("fabric: channel closed")
)

// Bounded is a fixed-capacity FIFO between one producer and one consumer.
// Push and Pop wait at most the configured timeout. Each direction owns one
// timer that is re-armed per wait, so a timed wait does not allocate; Push
// must not be called concurrently with Push, nor Pop with Pop.
type Bounded[T any] struct {
	ch      chan T
	done    chan struct{}
	once    sync.Once
	timeout time.Duration

	pushTimer *time.Timer
	popTimer  *time.Timer
}

// NewBounded creates a channel holding up to capacity values.
func NewBounded[T any](capacity int, timeout time.Duration) *Bounded[T] {
	b := &Bounded[T]{
		ch:        make(chan T, capacity),
		done:      make(chan struct{}),
		timeout:   timeout,
		pushTimer: time.NewTimer(timeout),
		popTimer:  time.NewTimer(timeout),
	}
	b.pushTimer.Stop()
	b.popTimer.Stop()
	return b
}

// Push enqueues v, waiting up to the timeout for space.
func (b *Bounded[T]) Push(v T) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}

	// Fast path: no timer when there is room.
	select {
	case b.ch <- v:
		return nil
	default:
	}

	// Stop and Reset leave no stale tick in C (Go 1.23 timers).
	b.pushTimer.Reset(b.timeout)
	select {
	case b.ch <- v:
		b.pushTimer.Stop()
		return nil
	case <-b.done:
		b.pushTimer.Stop()
		return ErrClosed
	case <-b.pushTimer.C:
		return ErrTimeout
	}
}

// Pop dequeues the oldest value, waiting up to the timeout for one.
func (b *Bounded[T]) Pop() (T, error) {
	var zero T
	select {
	case <-b.done:
		return zero, ErrClosed
	default:
	}

	select {
	case v := <-b.ch:
		return v, nil
	default:
	}

	b.popTimer.Reset(b.timeout)
	select {
	case v := <-b.ch:
		b.popTimer.Stop()
		return v, nil
	case <-b.done:
		b.popTimer.Stop()
		return zero, ErrClosed
	case <-b.popTimer.C:
		return zero, ErrTimeout
	}
}

// PopWait dequeues the oldest value, waiting until one arrives or the
// channel is closed.
func (b *Bounded[T]) PopWait() (T, error) {
	select {
	case v := <-b.ch:
		return v, nil
	case <-b.done:
		var zero T
		return zero, ErrClosed
	}
}

// Close wakes all waiters; later operations return ErrClosed. Safe to call
// more than once.
func (b *Bounded[T]) Close() {
	b.once.Do(func() { close(b.done) })
}

// Closed reports whether Close has been called.
func (b *Bounded[T]) Closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Drain removes every pending value without waiting and hands it to fn.
func (b *Bounded[T]) Drain(fn func(T)) int {
	n := 0
	for {
		select {
		case v := <-b.ch:
			n++
			if fn != nil {
				fn(v)
			}
		default:
			return n
		}
	}
}

// Len returns the number of pending values.
func (b *Bounded[T]) Len() int {
	return len(b.ch)
}

// Cap returns the capacity.
func (b *Bounded[T]) Cap() int {
	return cap(b.ch)
}
