// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"sync"
)

type rotationKey struct {
	n       int
	damping float64
}

type rotationEntry struct {
	once  sync.Once
	table []complex128
}

// rotations caches one table per (N, damping) pair. Entries are written once
// under their sync.Once and read-only afterwards, so estimators share them
// without further locking.
var rotations sync.Map // rotationKey -> *rotationEntry

// rotationTable returns exp(+i*2*pi*k/n) for k in [0, n). The slice is
// shared and must not be modified.
func rotationTable(n int, damping float64) []complex128 {
	v, _ := rotations.LoadOrStore(rotationKey{n: n, damping: damping}, &rotationEntry{})
	e := v.(*rotationEntry)
	e.once.Do(func() {
		e.table = make([]complex128, n)
		for k := range e.table {
			s, c := math.Sincos(2 * math.Pi * float64(k) / float64(n))
			e.table[k] = complex(c, s)
		}
	})
	return e.table
}
