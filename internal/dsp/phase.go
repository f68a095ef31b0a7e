// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
)

const twoPi = 2 * math.Pi

// WrapPhase maps d into [-pi, pi) with a single correction per side. Inputs
// are differences of two principal arguments and so lie in (-2*pi, 2*pi).
func WrapPhase(d float64) float64 {
	if d < -math.Pi {
		d += twoPi
	}
	if d >= math.Pi {
		d -= twoPi
	}
	return d
}

// AdjustedDelta scales the phase advance of bin k by ratio. rawDelta is the
// difference of the bin's argument between two cycles one hop apart. Bin k
// advances by 2*pi*k/overlap per hop, so floor(k/overlap) whole turns are
// restored before scaling.
func AdjustedDelta(k, overlap int, rawDelta, ratio float64) float64 {
	turns := float64(k / overlap)
	return (twoPi*turns + WrapPhase(rawDelta)) * ratio
}

// PhaseProcessor keeps the output phase of every bin continuous from one
// cycle to the next while the bin frequencies are scaled by a ratio.
//
// It is not safe for concurrent use.
type PhaseProcessor struct {
	n, overlap int
	prevRaw    Spectrum
	prevAdj    Spectrum
	phase      []float64 // accumulated output phase, reduced mod 2*pi
	primed     bool
}

// NewPhaseProcessor creates a processor for n bins and the given overlap.
func NewPhaseProcessor(n, overlap int) (*PhaseProcessor, error) {
	if n <= 0 || overlap <= 0 || n%overlap != 0 {
		return nil, fmt.Errorf("overlap %d does not divide window size %d", overlap, n)
	}
	return &PhaseProcessor{
		n:       n,
		overlap: overlap,
		prevRaw: NewSpectrum(n),
		prevAdj: NewSpectrum(n),
		phase:   make([]float64, n),
	}, nil
}

// Prime seeds the previous raw and previous adjusted spectra with copies of
// s. It must run once on the warm-up spectrum before Process.
func (p *PhaseProcessor) Prime(s Spectrum) {
	p.prevRaw.CopyFrom(s)
	p.prevAdj.CopyFrom(s)
	for k, v := range s {
		p.phase[k] = cmplx.Phase(v)
	}
	p.primed = true
}

// Primed reports whether Prime has run since construction or Reset.
func (p *PhaseProcessor) Primed() bool {
	return p.primed
}

// Process writes into out the spectrum with the magnitudes of cur and phases
// advanced from the previous output by the scaled phase deltas. cur becomes
// the previous raw spectrum and out the previous adjusted one.
func (p *PhaseProcessor) Process(cur Spectrum, ratio float64, out Spectrum) {
	for k, v := range cur {
		raw := cmplx.Phase(v) - cmplx.Phase(p.prevRaw[k])
		next := math.Remainder(p.phase[k]+AdjustedDelta(k, p.overlap, raw, ratio), twoPi)
		p.phase[k] = next
		out[k] = cmplx.Rect(cmplx.Abs(v), next)
	}
	p.prevRaw.CopyFrom(cur)
	p.prevAdj.CopyFrom(out)
}

// PreviousRaw returns the raw spectrum of the last cycle, the reference
// the next Process call measures phase advance against. Read-only.
func (p *PhaseProcessor) PreviousRaw() Spectrum {
	return p.prevRaw
}

// PreviousAdjusted returns the output of the last cycle. Read-only.
func (p *PhaseProcessor) PreviousAdjusted() Spectrum {
	return p.prevAdj
}

// Reset drops the history; Prime must run again.
func (p *PhaseProcessor) Reset() {
	p.prevRaw.Reset()
	p.prevAdj.Reset()
	clear(p.phase)
	p.primed = false
}
