// SPDX-License-Identifier: MIT
/*
Package vocoder wires the dsp stages into one cycle and runs that cycle
against the channel fabric.

Each cycle consumes one hop of input and produces one hop of output:

	estimator -> phase processor -> resynthesizer -> overlap-add

Pipeline is the synchronous core, shared by the live loop and the offline
renderer. Loop adds the fabric, the control flags and the visualization
fan-out.
*/
package vocoder

import (
	"fmt"

	"vocoder/internal/config"
	"vocoder/internal/dsp"
)

// Pipeline runs the analysis/synthesis cycle. It is not safe for concurrent
// use; the processing loop owns it.
type Pipeline struct {
	size, hop, overlap int
	windowed           bool

	estimator *dsp.Estimator
	phase     *dsp.PhaseProcessor
	resynth   *dsp.Resynthesizer
	ola       *dsp.OverlapAdd

	adjusted dsp.Spectrum
	frame    []float64
	period   int
	cycles   uint64
}

// NewPipeline builds a pipeline from the DSP section of the configuration.
func NewPipeline(cfg config.DSPConfig) (*Pipeline, error) {
	if cfg.Overlap <= 0 || cfg.WindowSize%cfg.Overlap != 0 {
		return nil, fmt.Errorf("overlap %d does not divide window size %d", cfg.Overlap, cfg.WindowSize)
	}

	estimator, err := dsp.NewEstimator(cfg.WindowSize, cfg.DampingRatio)
	if err != nil {
		return nil, fmt.Errorf("failed to create estimator: %w", err)
	}
	phase, err := dsp.NewPhaseProcessor(cfg.WindowSize, cfg.Overlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create phase processor: %w", err)
	}
	resynth, err := dsp.NewResynthesizer(cfg.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create resynthesizer: %w", err)
	}

	windowed := cfg.Estimator == config.EstimatorWindowed
	var analysis []float64
	if windowed {
		analysis = estimator.Window()
	}
	ola, err := dsp.NewOverlapAdd(cfg.WindowSize, cfg.Overlap, analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to create overlap-add: %w", err)
	}

	return &Pipeline{
		size:      cfg.WindowSize,
		hop:       cfg.WindowSize / cfg.Overlap,
		overlap:   cfg.Overlap,
		windowed:  windowed,
		estimator: estimator,
		phase:     phase,
		resynth:   resynth,
		ola:       ola,
		adjusted:  dsp.NewSpectrum(cfg.WindowSize),
		frame:     make([]float64, cfg.WindowSize),
	}, nil
}

// Hop returns the number of samples consumed and produced per cycle.
func (p *Pipeline) Hop() int {
	return p.hop
}

// Size returns the window size N.
func (p *Pipeline) Size() int {
	return p.size
}

// Latency returns the delay in samples between a sample entering Process
// and the same sample leaving it at ratio 1.
func (p *Pipeline) Latency() int {
	return p.size - p.hop
}

// Process runs one cycle: in and out are one hop long. The first cycle after
// construction or Reset only primes the phase history and writes silence.
func (p *Pipeline) Process(in []float32, ratio float64, out []float32) {
	if p.windowed {
		// Hop divides N by construction.
		_ = p.estimator.PushFramesFFT(in[:p.hop])
	} else {
		p.estimator.PushFrames(in[:p.hop])
	}
	p.cycles++

	spectrum := p.estimator.Spectrum()
	if !p.phase.Primed() {
		p.phase.Prime(spectrum)
		clear(out[:p.hop])
		return
	}

	p.phase.Process(spectrum, ratio, p.adjusted)
	p.period = p.resynth.Synthesize(p.adjusted, ratio, p.frame)
	p.ola.Add(p.frame, out[:p.hop])
}

// Spectrum returns the raw spectrum of the current cycle. Read-only.
func (p *Pipeline) Spectrum() dsp.Spectrum {
	return p.estimator.Spectrum()
}

// RawSpectrum returns the copy of the raw spectrum consumed by the most
// recent Process call, held as the phase reference for the next cycle.
// Unlike Spectrum it is not touched by the estimator. Read-only.
func (p *Pipeline) RawSpectrum() dsp.Spectrum {
	return p.phase.PreviousRaw()
}

// Period returns the harmonic period used by the last cycle.
func (p *Pipeline) Period() int {
	return p.period
}

// Cycles returns the number of cycles processed.
func (p *Pipeline) Cycles() uint64 {
	return p.cycles
}

// Reset returns the pipeline to its freshly constructed state.
func (p *Pipeline) Reset() {
	p.estimator.Reset()
	p.phase.Reset()
	p.ola.Reset()
	p.adjusted.Reset()
	p.period = 0
	p.cycles = 0
}
