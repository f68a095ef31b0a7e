// SPDX-License-Identifier: MIT
/*
Package render runs the vocoder over a file instead of a device. The input
is decoded to mono, pushed through the same Pipeline the live loop uses, one
hop at a time, and written as a PCM WAV file at the input's sample rate.
*/
package render

import (
	"fmt"
	"time"

	"vocoder/internal/config"
	"vocoder/internal/control"
	"vocoder/internal/log"
	"vocoder/internal/vocoder"
)

// Result summarizes one render.
type Result struct {
	Frames     int
	SampleRate int
	Ratio      float64
	Clipped    int
	Elapsed    time.Duration
}

// Render processes cfg.Render.Input into cfg.Render.Output, shifting the
// pitch by cfg.Control.Semitones.
func Render(cfg *config.Config) (*Result, error) {
	start := time.Now()

	clip, err := Decode(cfg.Render.Input)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"input":       cfg.Render.Input,
		"frames":      len(clip.Samples),
		"sample_rate": clip.SampleRate,
		"channels":    clip.Channels,
	}).Info("input decoded")

	pipeline, err := vocoder.NewPipeline(cfg.DSP)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	ratio := control.SemitoneRatio(cfg.Control.Semitones)
	out := Process(pipeline, clip.Samples, ratio)

	clipped, err := WriteWAV(cfg.Render.Output, out, clip.SampleRate, cfg.Render.BitDepth)
	if err != nil {
		return nil, err
	}
	if clipped > 0 {
		log.Warnf("render: %d samples clipped", clipped)
	}

	return &Result{
		Frames:     len(out),
		SampleRate: clip.SampleRate,
		Ratio:      ratio,
		Clipped:    clipped,
		Elapsed:    time.Since(start),
	}, nil
}

// Process runs in through p hop by hop and returns a signal of the same
// length. The pipeline latency is compensated by feeding trailing silence
// and dropping the leading samples.
func Process(p *vocoder.Pipeline, in []float32, ratio float64) []float32 {
	hop := p.Hop()
	latency := p.Latency()

	total := len(in) + latency
	if rem := total % hop; rem != 0 {
		total += hop - rem
	}

	padded := make([]float32, total)
	copy(padded, in)
	processed := make([]float32, total)
	for start := 0; start < total; start += hop {
		p.Process(padded[start:start+hop], ratio, processed[start:start+hop])
	}

	return processed[latency : latency+len(in)]
}
