// SPDX-License-Identifier: MIT
/*
Package control holds the flags and pitch setting shared between the
visualization, which writes them, and the processing loop, which reads them
once per cycle. Every field is a single atomic word, so readers never see a
torn value and never block.
*/
package control

import (
	"math"
	"sync"
	"sync/atomic"

	"vocoder/internal/config"
)

// State is the runtime control surface.
type State struct {
	exit     atomic.Bool
	effect   atomic.Bool
	output   atomic.Bool
	printing atomic.Bool

	semitones atomic.Int32
	min, max  int32

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a State from the configured initial values and limits.
func New(cfg config.ControlConfig) *State {
	s := &State{
		min:  int32(cfg.MinSemitones),
		max:  int32(cfg.MaxSemitones),
		done: make(chan struct{}),
	}
	s.effect.Store(cfg.Effect)
	s.output.Store(cfg.Output)
	s.SetSemitones(cfg.Semitones)
	return s
}

// RequestExit sets the exit flag. It is idempotent.
func (s *State) RequestExit() {
	s.exit.Store(true)
	s.doneOnce.Do(func() { close(s.done) })
}

// Exiting reports whether exit has been requested.
func (s *State) Exiting() bool {
	return s.exit.Load()
}

// Done is closed once exit has been requested.
func (s *State) Done() <-chan struct{} {
	return s.done
}

// EffectEnabled reports whether pitch shifting is applied.
func (s *State) EffectEnabled() bool { return s.effect.Load() }

// OutputEnabled reports whether processed audio reaches the device.
func (s *State) OutputEnabled() bool { return s.output.Load() }

// Printing reports whether the dominant frequency is logged every frame.
func (s *State) Printing() bool { return s.printing.Load() }

// ToggleEffect flips the effect flag and returns the new value.
func (s *State) ToggleEffect() bool { return toggle(&s.effect) }

// ToggleOutput flips the output flag and returns the new value.
func (s *State) ToggleOutput() bool { return toggle(&s.output) }

// TogglePrinting flips the printing flag and returns the new value.
func (s *State) TogglePrinting() bool { return toggle(&s.printing) }

func toggle(b *atomic.Bool) bool {
	for {
		old := b.Load()
		if b.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Semitones returns the current pitch offset.
func (s *State) Semitones() int {
	return int(s.semitones.Load())
}

// SetSemitones stores n clamped to the configured range and returns the
// stored value.
func (s *State) SetSemitones(n int) int {
	v := int32(max(min(n, int(s.max)), int(s.min)))
	s.semitones.Store(v)
	return int(v)
}

// Shift moves the pitch by delta semitones, clamped, and returns the new
// value.
func (s *State) Shift(delta int) int {
	for {
		old := s.semitones.Load()
		v := max(min(old+int32(delta), s.max), s.min)
		if s.semitones.CompareAndSwap(old, v) {
			return int(v)
		}
	}
}

// PitchRatio returns 2^(semitones/12).
func (s *State) PitchRatio() float64 {
	return SemitoneRatio(s.Semitones())
}

// EffectiveRatio returns the ratio the processing loop applies this cycle:
// PitchRatio when the effect is enabled, 1 otherwise.
func (s *State) EffectiveRatio() float64 {
	if !s.EffectEnabled() {
		return 1
	}
	return s.PitchRatio()
}

// SemitoneRatio converts a semitone offset to a frequency ratio.
func SemitoneRatio(semitones int) float64 {
	return math.Exp2(float64(semitones) / 12)
}
