// SPDX-License-Identifier: MIT
package dsp

// SampleRing holds the last N pushed samples. Pushing evicts and returns the
// oldest one, which the sliding DFT subtracts.
type SampleRing struct {
	buf  []complex128
	head int // index of the oldest sample
}

// NewSampleRing returns a ring of n zero samples.
func NewSampleRing(n int) *SampleRing {
	return &SampleRing{buf: make([]complex128, n)}
}

// Len returns the ring capacity.
func (r *SampleRing) Len() int {
	return len(r.buf)
}

// Push stores v as the newest sample and returns the evicted oldest sample.
func (r *SampleRing) Push(v complex128) complex128 {
	old := r.buf[r.head]
	r.buf[r.head] = v
	r.head++
	if r.head == len(r.buf) {
		r.head = 0
	}
	return old
}

// CopyTo writes the samples into dst ordered oldest first.
func (r *SampleRing) CopyTo(dst []complex128) {
	n := copy(dst, r.buf[r.head:])
	copy(dst[n:], r.buf[:r.head])
}

// Reset zeroes the ring.
func (r *SampleRing) Reset() {
	clear(r.buf)
	r.head = 0
}
