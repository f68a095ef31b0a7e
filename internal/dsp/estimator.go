// SPDX-License-Identifier: MIT
package dsp

import (
	"errors"
	"fmt"
)

// ErrBlockSize is returned by PushFramesFFT for a block whose length does
// not evenly divide the window size.
var ErrBlockSize = errors.New("block size must divide the window size")

// Estimator maintains the spectrum of the most recent N samples.
//
// PushFrame updates every bin per sample with a sliding DFT:
//
//	bin[k] = (bin[k]*(1-damping) + (x - evicted)) * exp(i*2*pi*k/N)
//
// With zero damping the result equals the DFT of the last N samples, oldest
// first. PushFramesFFT instead stores a block and recomputes the spectrum of
// the Hann-windowed history with a full transform.
type Estimator struct {
	n        int
	spectrum Spectrum
	ring     *SampleRing
	rotation []complex128 // shared, read-only
	factor   complex128   // 1 - damping

	transform *Transform
	window    []float64
	work      []complex128
}

// NewEstimator creates an estimator over n samples. dampingRatio in [0, 1)
// leaks energy out of the sliding DFT so rounding errors do not accumulate.
func NewEstimator(n int, dampingRatio float64) (*Estimator, error) {
	t, err := NewTransform(n)
	if err != nil {
		return nil, err
	}
	if dampingRatio < 0 || dampingRatio >= 1 {
		return nil, fmt.Errorf("damping ratio must be in [0, 1), got %g", dampingRatio)
	}

	return &Estimator{
		n:         n,
		spectrum:  NewSpectrum(n),
		ring:      NewSampleRing(n),
		rotation:  rotationTable(n, dampingRatio),
		factor:    complex(1-dampingRatio, 0),
		transform: t,
		window:    HannWindow(n),
		work:      make([]complex128, n),
	}, nil
}

// Size returns N.
func (e *Estimator) Size() int {
	return e.n
}

// Spectrum returns the live spectrum. Callers must treat it as read-only
// and copy it if they need it past the next push.
func (e *Estimator) Spectrum() Spectrum {
	return e.spectrum
}

// PushFrame feeds one real sample into the sliding DFT.
func (e *Estimator) PushFrame(x float64) {
	e.PushComplex(complex(x, 0))
}

// PushComplex feeds one complex sample into the sliding DFT.
func (e *Estimator) PushComplex(x complex128) {
	delta := x - e.ring.Push(x)
	for k, rot := range e.rotation {
		e.spectrum[k] = (e.spectrum[k]*e.factor + delta) * rot
	}
}

// PushFrames feeds a block of samples through PushFrame in order.
func (e *Estimator) PushFrames(block []float32) {
	for _, x := range block {
		e.PushFrame(float64(x))
	}
}

// PushFramesFFT stores block in the history and replaces the spectrum with
// the transform of the Hann-windowed history. len(block) must divide N.
func (e *Estimator) PushFramesFFT(block []float32) error {
	if len(block) == 0 || e.n%len(block) != 0 {
		return fmt.Errorf("%w: %d does not divide %d", ErrBlockSize, len(block), e.n)
	}

	for _, x := range block {
		e.ring.Push(complex(float64(x), 0))
	}
	e.ring.CopyTo(e.work)
	for i, w := range e.window {
		e.work[i] *= complex(w, 0)
	}
	e.transform.Forward(e.work)
	copy(e.spectrum, e.work)
	return nil
}

// Window returns the analysis window applied by PushFramesFFT.
func (e *Estimator) Window() []float64 {
	return e.window
}

// History writes the stored samples, oldest first, into dst.
func (e *Estimator) History(dst []complex128) {
	e.ring.CopyTo(dst)
}

// Reset clears the history and the spectrum.
func (e *Estimator) Reset() {
	e.ring.Reset()
	e.spectrum.Reset()
}
