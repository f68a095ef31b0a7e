// SPDX-License-Identifier: MIT
package dsp

import "gonum.org/v1/gonum/dsp/window"

// HannWindow returns the n Hann coefficients.
func HannWindow(n int) []float64 {
	w := OnesWindow(n)
	window.Hann(w)
	return w
}

// OnesWindow returns n coefficients of 1, the rectangular window.
func OnesWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}
