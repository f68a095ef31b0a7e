// SPDX-License-Identifier: MIT
/*
Package dsp implements the signal path of the phase vocoder:

  - Transform: recursive radix-2 FFT/IFFT over power-of-two lengths
  - Estimator: live spectrum of the last N samples, updated per sample
    (sliding DFT) or per block (Hann-windowed FFT)
  - PhaseProcessor: phase-continuity correction scaled by a pitch ratio
  - Resynthesizer: harmonic truncation/replication back to the time domain
  - OverlapAdd: windowed overlap-add of successive synthesis frames

All types pre-allocate their buffers at construction. Nothing on the per-cycle
path allocates once warm, except the Resynthesizer the first time it meets a
new period length.
*/
package dsp

import (
	"errors"
	"fmt"
	"math"

	"vocoder/pkg/bitint"
)

// ErrWindowSize is returned for a transform or window length that is not a
// power of two.
var ErrWindowSize = errors.New("window size must be a power of two")

// Transform is an in-place radix-2 Cooley-Tukey transform of a fixed
// power-of-two length. The twiddle factors and the per-level scratch space
// are allocated once, so Forward and Inverse do not allocate.
//
// A Transform is not safe for concurrent use.
type Transform struct {
	n       int
	twiddle []complex128   // exp(-i*2*pi*k/n), k in [0, n/2)
	scratch [][]complex128 // one even/odd buffer per recursion level
}

// NewTransform creates a transform for sequences of length n.
func NewTransform(n int) (*Transform, error) {
	if !bitint.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: got %d", ErrWindowSize, n)
	}

	twiddle := make([]complex128, n/2)
	for k := range twiddle {
		s, c := math.Sincos(-2 * math.Pi * float64(k) / float64(n))
		twiddle[k] = complex(c, s)
	}

	depth := bitint.Log2(n)
	scratch := make([][]complex128, depth)
	for d := range scratch {
		scratch[d] = make([]complex128, n>>d)
	}

	return &Transform{n: n, twiddle: twiddle, scratch: scratch}, nil
}

// Size returns the sequence length this transform was built for.
func (t *Transform) Size() int {
	return t.n
}

// Forward replaces x with its discrete Fourier transform. len(x) must equal
// Size(); this is checked once at construction of the owner, not here.
func (t *Transform) Forward(x []complex128) {
	t.fft(x[:t.n], 0)
}

// Inverse replaces x with its inverse discrete Fourier transform, computed
// as conjugate, forward transform, conjugate, scale by 1/n.
func (t *Transform) Inverse(x []complex128) {
	x = x[:t.n]
	for i, v := range x {
		x[i] = complex(real(v), -imag(v))
	}
	t.fft(x, 0)
	scale := 1 / float64(t.n)
	for i, v := range x {
		x[i] = complex(real(v)*scale, -imag(v)*scale)
	}
}

// fft splits x into even and odd samples, transforms both halves and
// combines them with the twiddle factors. Level d works in scratch[d].
func (t *Transform) fft(x []complex128, depth int) {
	n := len(x)
	if n <= 1 {
		return
	}

	half := n / 2
	work := t.scratch[depth][:n]
	even, odd := work[:half], work[half:]
	for k := 0; k < half; k++ {
		even[k] = x[2*k]
		odd[k] = x[2*k+1]
	}

	t.fft(even, depth+1)
	t.fft(odd, depth+1)

	// exp(-i*2*pi*k/n) == twiddle[k * (t.n/n)]
	stride := t.n / n
	for k := 0; k < half; k++ {
		tw := t.twiddle[k*stride] * odd[k]
		x[k] = even[k] + tw
		x[k+half] = even[k] - tw
	}
}

// FFT returns the discrete Fourier transform of x without modifying it.
// len(x) must be a power of two. It allocates a Transform per call and is
// intended for tests and cold paths.
func FFT(x []complex128) ([]complex128, error) {
	t, err := NewTransform(len(x))
	if err != nil {
		return nil, err
	}
	out := make([]complex128, len(x))
	copy(out, x)
	t.Forward(out)
	return out, nil
}

// IFFT returns the inverse discrete Fourier transform of x without
// modifying it. len(x) must be a power of two.
func IFFT(x []complex128) ([]complex128, error) {
	t, err := NewTransform(len(x))
	if err != nil {
		return nil, err
	}
	out := make([]complex128, len(x))
	copy(out, x)
	t.Inverse(out)
	return out, nil
}
