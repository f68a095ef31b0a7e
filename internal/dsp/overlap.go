// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// OverlapAdd sums the last O synthesis frames into one hop of output. The
// frame pushed a hops ago contributes its slice starting at a*hop, so every
// slice covers the same absolute stretch of time.
//
// Frames are multiplied by a Hann synthesis window before they are stored.
// The sum is divided per offset by the overlapped product of the analysis
// and synthesis windows, which makes an unmodified signal come back exactly.
type OverlapAdd struct {
	size, hop, overlap int

	slots  [][]float64 // ring of frames
	newest int        // slot index of the most recent frame
	pushed int        // frames pushed, saturating at overlap

	window []float64 // synthesis window
	norm   []float64 // 1 / sum over a of analysis*synthesis at a*hop+j
	acc    []float64 // one hop of output, pre-normalization
}

// NewOverlapAdd creates an overlap-add stage for frames of size samples
// overlapped overlap times. analysis is the window the spectrum was
// estimated with; nil means rectangular.
func NewOverlapAdd(size, overlap int, analysis []float64) (*OverlapAdd, error) {
	if size <= 0 || overlap <= 0 || size%overlap != 0 {
		return nil, fmt.Errorf("overlap %d does not divide frame size %d", overlap, size)
	}
	if analysis == nil {
		analysis = OnesWindow(size)
	}
	if len(analysis) != size {
		return nil, fmt.Errorf("analysis window has %d coefficients, want %d", len(analysis), size)
	}

	hop := size / overlap
	o := &OverlapAdd{
		size:    size,
		hop:     hop,
		overlap: overlap,
		slots:   make([][]float64, overlap),
		window:  HannWindow(size),
		norm:    make([]float64, hop),
		acc:     make([]float64, hop),
	}
	for i := range o.slots {
		o.slots[i] = make([]float64, size)
	}

	product := make([]float64, size)
	floats.MulTo(product, analysis, o.window)
	for j := range o.norm {
		sum := 0.0
		for a := 0; a < overlap; a++ {
			sum += product[a*hop+j]
		}
		if sum > 1e-12 {
			o.norm[j] = 1 / sum
		}
	}
	return o, nil
}

// Hop returns the number of samples produced per frame.
func (o *OverlapAdd) Hop() int {
	return o.hop
}

// Push stores frame as the newest slot, overwriting the oldest, without
// windowing it.
func (o *OverlapAdd) Push(frame []float64) {
	o.newest++
	if o.newest == o.overlap {
		o.newest = 0
	}
	copy(o.slots[o.newest], frame)
	if o.pushed < o.overlap {
		o.pushed++
	}
}

// Sum writes the plain sum of the aligned slices into dst.
func (o *OverlapAdd) Sum(dst []float64) {
	clear(dst[:o.hop])
	for age := 0; age < o.overlap; age++ {
		slot := (o.newest - age + o.overlap) % o.overlap
		off := age * o.hop
		floats.Add(dst[:o.hop], o.slots[slot][off:off+o.hop])
	}
}

// Add windows frame in place, pushes it, and writes one normalized hop of
// output into out.
func (o *OverlapAdd) Add(frame []float64, out []float32) {
	floats.Mul(frame, o.window)
	o.Push(frame)
	o.Sum(o.acc)
	floats.Mul(o.acc, o.norm)
	for j, v := range o.acc {
		out[j] = float32(v)
	}
}

// Warm reports whether every slot holds a pushed frame.
func (o *OverlapAdd) Warm() bool {
	return o.pushed == o.overlap
}

// Reset zeroes every slot.
func (o *OverlapAdd) Reset() {
	for _, s := range o.slots {
		clear(s)
	}
	o.newest = 0
	o.pushed = 0
}
