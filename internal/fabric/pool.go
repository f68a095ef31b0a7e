// SPDX-License-Identifier: MIT
package fabric

// Pool is a bounded free-list. Get and Put never block: Get allocates when
// the list is empty and Put drops the value when it is full.
type Pool[T any] struct {
	free  chan T
	alloc func() T
}

// NewPool creates a pool holding up to capacity values and fills it.
func NewPool[T any](capacity int, alloc func() T) *Pool[T] {
	p := &Pool[T]{free: make(chan T, capacity), alloc: alloc}
	for i := 0; i < capacity; i++ {
		p.free <- alloc()
	}
	return p
}

// Get returns a recycled value or a new one.
func (p *Pool[T]) Get() T {
	select {
	case v := <-p.free:
		return v
	default:
		return p.alloc()
	}
}

// Put returns v to the pool.
func (p *Pool[T]) Put(v T) {
	select {
	case p.free <- v:
	default:
	}
}

// Available returns the number of values ready for Get.
func (p *Pool[T]) Available() int {
	return len(p.free)
}
