// SPDX-License-Identifier: MIT
package fabric

import "time"

// Duplex carries hop-sized chunks between the audio callback and the
// processing loop. Chunks travel by ownership: whoever pops a chunk owns it
// until it is pushed on or returned to Chunks.
type Duplex struct {
	In     *Bounded[[]float32] // callback -> loop
	Out    *Bounded[[]float32] // loop -> callback
	Chunks *Pool[[]float32]
	hop    int
}

// NewDuplex creates both directions with the given capacity and timeout.
// The pool holds enough chunks to fill both directions and keep one in
// flight on each side.
func NewDuplex(capacity, hop int, timeout time.Duration) *Duplex {
	chunks := NewPool(2*capacity+4, func() []float32 {
		return make([]float32, hop)
	})
	return &Duplex{
		In:     NewBounded[[]float32](capacity, timeout),
		Out:    NewBounded[[]float32](capacity, timeout),
		Chunks: chunks,
		hop:    hop,
	}
}

// Hop returns the chunk length.
func (d *Duplex) Hop() int {
	return d.hop
}

// Close closes both directions and recycles whatever was pending.
func (d *Duplex) Close() {
	d.In.Close()
	d.Out.Close()
	d.In.Drain(d.Chunks.Put)
	d.Out.Drain(d.Chunks.Put)
}
