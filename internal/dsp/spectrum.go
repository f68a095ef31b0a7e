// SPDX-License-Identifier: MIT
package dsp

import "math/cmplx"

// Spectrum is a length-N sequence of complex bins. Bin k corresponds to
// frequency k/N cycles per sample.
type Spectrum []complex128

// NewSpectrum returns a zeroed spectrum of n bins.
func NewSpectrum(n int) Spectrum {
	return make(Spectrum, n)
}

// Clone returns an independent copy of s.
func (s Spectrum) Clone() Spectrum {
	out := make(Spectrum, len(s))
	copy(out, s)
	return out
}

// CopyFrom overwrites s with src. Both must have the same length.
func (s Spectrum) CopyFrom(src Spectrum) {
	copy(s, src)
}

// Reset zeroes every bin.
func (s Spectrum) Reset() {
	clear(s)
}

// FrequencyPerFrame returns the frequency of bin k in cycles per sample.
func (s Spectrum) FrequencyPerFrame(k int) float64 {
	return float64(k) / float64(len(s))
}

// FramesPerPeriod returns the period of bin k in samples. Bin 0 has an
// infinite period and reports 0.
func (s Spectrum) FramesPerPeriod(k int) float64 {
	if k == 0 {
		return 0
	}
	return float64(len(s)) / float64(k)
}

// FrequencyHz returns the frequency of bin k at the given sample rate.
func (s Spectrum) FrequencyHz(k int, sampleRate float64) float64 {
	return s.FrequencyPerFrame(k) * sampleRate
}

// SecondsPerPeriod returns the period of bin k in seconds.
func (s Spectrum) SecondsPerPeriod(k int, sampleRate float64) float64 {
	if k == 0 || sampleRate <= 0 {
		return 0
	}
	return s.FramesPerPeriod(k) / sampleRate
}

// Magnitudes writes |s[k]| for the lower half of the spectrum into dst and
// returns it. dst is grown when it is too short.
func (s Spectrum) Magnitudes(dst []float64) []float64 {
	half := len(s) / 2
	if cap(dst) < half {
		dst = make([]float64, half)
	}
	dst = dst[:half]
	for k := range dst {
		dst[k] = cmplx.Abs(s[k])
	}
	return dst
}

// Peak returns the bin with the largest magnitude in [1, N/2), skipping DC.
// It returns 0 for an all-zero spectrum.
func (s Spectrum) Peak() int {
	peak, best := 0, 0.0
	for k := 1; k < len(s)/2; k++ {
		re, im := real(s[k]), imag(s[k])
		if p := re*re + im*im; p > best {
			peak, best = k, p
		}
	}
	return peak
}
