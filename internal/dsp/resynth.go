// SPDX-License-Identifier: MIT
package dsp

import (
	"math"

	"vocoder/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// MaxStretch bounds the harmonic period at MaxStretch*N samples, four
// octaves below the input.
const MaxStretch = 16

// HarmonicCount returns the length of one resynthesized period,
// floor(n/ratio), clamped to [0, MaxStretch*n]. A ratio that is not a
// positive finite number yields 0.
func HarmonicCount(n int, ratio float64) int {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return 0
	}
	m := math.Floor(float64(n) / ratio)
	if limit := float64(MaxStretch * n); m > limit {
		m = limit
	}
	return int(m)
}

// Resynthesizer turns a processed spectrum back into a time-domain frame by
// keeping the first floor(N/r) harmonics, inverse transforming them over a
// period of that length and tiling the period across the frame.
//
// Power-of-two periods use Transform; other lengths use gonum's mixed-radix
// complex FFT. Both are cached per length, so a ratio seen once costs no
// further allocation.
type Resynthesizer struct {
	n          int
	transforms map[int]*Transform
	plans      map[int]*fourier.CmplxFFT
	coeffs     []complex128
	period     []complex128
}

// NewResynthesizer creates a resynthesizer for N-bin spectra.
func NewResynthesizer(n int) (*Resynthesizer, error) {
	if !bitint.IsPowerOfTwo(n) {
		return nil, ErrWindowSize
	}
	return &Resynthesizer{
		n:          n,
		transforms: make(map[int]*Transform),
		plans:      make(map[int]*fourier.CmplxFFT),
		coeffs:     make([]complex128, MaxStretch*n),
		period:     make([]complex128, MaxStretch*n),
	}, nil
}

// Synthesize fills dst with the resynthesized signal of s at the given
// ratio and returns the period length used. A period of 0 produces silence.
func (r *Resynthesizer) Synthesize(s Spectrum, ratio float64, dst []float64) int {
	m := HarmonicCount(r.n, ratio)
	if m == 0 {
		clear(dst)
		return 0
	}

	coeffs := r.coeffs[:m]
	copied := copy(coeffs, s[:min(r.n, m)])
	clear(coeffs[copied:])

	period := r.inverse(coeffs, r.period[:m])

	for i := range dst {
		dst[i] = real(period[i%m])
	}
	return m
}

// inverse writes the normalized inverse transform of coeffs into period.
func (r *Resynthesizer) inverse(coeffs, period []complex128) []complex128 {
	m := len(coeffs)
	if bitint.IsPowerOfTwo(m) {
		t, ok := r.transforms[m]
		if !ok {
			// m is a power of two, so this cannot fail.
			t, _ = NewTransform(m)
			r.transforms[m] = t
		}
		copy(period, coeffs)
		t.Inverse(period)
		return period
	}

	plan, ok := r.plans[m]
	if !ok {
		plan = fourier.NewCmplxFFT(m)
		r.plans[m] = plan
	}
	period = plan.Sequence(period, coeffs)
	scale := complex(1/float64(m), 0)
	for i := range period {
		period[i] *= scale
	}
	return period
}
