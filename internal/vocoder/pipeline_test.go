// SPDX-License-Identifier: MIT
package vocoder

import (
	"math"
	"math/cmplx"
	"testing"

	"vocoder/internal/config"
	"vocoder/internal/dsp"
	"vocoder/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDSPConfig(estimator string) config.DSPConfig {
	return config.DSPConfig{
		WindowSize: 256,
		Overlap:    4,
		Estimator:  estimator,
	}
}

// run feeds signal through p hop by hop and returns the concatenated output.
func run(p *Pipeline, signal []float32, ratio float64) []float32 {
	hop := p.Hop()
	out := make([]float32, len(signal))
	for start := 0; start+hop <= len(signal); start += hop {
		p.Process(signal[start:start+hop], ratio, out[start:start+hop])
	}
	return out
}

func TestPipelineIdentity(t *testing.T) {
	for _, estimator := range []string{config.EstimatorIncremental, config.EstimatorWindowed} {
		t.Run(estimator, func(t *testing.T) {
			p, err := NewPipeline(testDSPConfig(estimator))
			require.NoError(t, err)

			signal := utils.GenerateComplexWave(256*12, 44100)
			out := run(p, signal, 1)

			// The overlap-add is exact once every slot holds a processed frame.
			latency := p.Latency()
			settled := (p.overlap + 1) * p.Hop()
			for i := settled; i < len(signal); i++ {
				require.InDelta(t, signal[i-latency], out[i], 1e-4, "sample %d", i)
			}
		})
	}
}

func TestPipelineFirstCycleSilent(t *testing.T) {
	p, err := NewPipeline(testDSPConfig(config.EstimatorIncremental))
	require.NoError(t, err)

	out := []float32{1, 1, 1}
	out = append(out, make([]float32, p.Hop()-3)...)
	p.Process(utils.GenerateBinSine(p.Hop(), 256, 4, 1), 2, out)
	for _, v := range out {
		assert.Zero(t, v)
	}
	assert.Equal(t, uint64(1), p.Cycles())
}

func dominantBin(t *testing.T, samples []float32) int {
	t.Helper()
	x := make([]complex128, len(samples))
	for i, v := range samples {
		x[i] = complex(float64(v), 0)
	}
	s, err := dsp.FFT(x)
	require.NoError(t, err)
	return dsp.Spectrum(s).Peak()
}

func TestPipelineOctaveUp(t *testing.T) {
	const n, bin = 256, 8
	p, err := NewPipeline(testDSPConfig(config.EstimatorIncremental))
	require.NoError(t, err)

	signal := utils.GenerateBinSine(n*16, n, bin, 0.5)
	out := run(p, signal, 2)

	tail := out[len(out)-n:]
	assert.Equal(t, 2*bin, dominantBin(t, tail))
	assert.Equal(t, n/2, p.Period())

	// Amplitude is preserved: the positive bin carries the whole cosine.
	peak := 0.0
	for _, v := range tail {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	assert.InDelta(t, 0.5, peak, 0.05)
}

func TestPipelineOctaveDown(t *testing.T) {
	const n, bin = 256, 16
	p, err := NewPipeline(testDSPConfig(config.EstimatorIncremental))
	require.NoError(t, err)

	signal := utils.GenerateBinSine(n*16, n, bin, 0.5)
	out := run(p, signal, 0.5)
	assert.Equal(t, 2*n, p.Period())

	tail := make([]complex128, n)
	for i, v := range out[len(out)-n:] {
		tail[i] = complex(float64(v), 0)
	}
	s, err := dsp.FFT(tail)
	require.NoError(t, err)

	// A period of 2N keeps the mirrored upper bins too, so only check that
	// the energy moved from bin 16 to bin 8.
	assert.InDelta(t, 16, cmplx.Abs(s[bin/2]), 1)
	assert.Less(t, cmplx.Abs(s[bin]), 0.5)
}

func TestPipelineSpectra(t *testing.T) {
	const n, bin = 256, 10
	p, err := NewPipeline(testDSPConfig(config.EstimatorIncremental))
	require.NoError(t, err)

	signal := utils.GenerateBinSine(n*2, n, bin, 1)
	run(p, signal, 1)

	assert.Equal(t, bin, p.Spectrum().Peak())
	assert.Equal(t, bin, p.RawSpectrum().Peak())
	assert.InDelta(t, n/2, cmplx.Abs(p.Spectrum()[bin]), 1e-6)
}

func TestPipelineRawSpectrumTracksCurrentCycle(t *testing.T) {
	const n = 256
	p, err := NewPipeline(testDSPConfig(config.EstimatorIncremental))
	require.NoError(t, err)

	// The input jumps from bin 4 to bin 20, so the spectra of two
	// consecutive cycles differ.
	signal := append(utils.GenerateBinSine(n*2, n, 4, 1), utils.GenerateBinSine(n*2, n, 20, 1)...)
	out := make([]float32, p.Hop())
	for start := 0; start+p.Hop() <= len(signal); start += p.Hop() {
		p.Process(signal[start:start+p.Hop()], 1, out)

		raw := p.RawSpectrum()
		cur := p.Spectrum()
		for k := range cur {
			require.Equal(t, cur[k], raw[k], "cycle %d bin %d", p.Cycles(), k)
		}
	}
	assert.Equal(t, 20, p.RawSpectrum().Peak())
}

func TestPipelineReset(t *testing.T) {
	p, err := NewPipeline(testDSPConfig(config.EstimatorIncremental))
	require.NoError(t, err)

	run(p, utils.GenerateBinSine(1024, 256, 3, 1), 1)
	p.Reset()
	assert.Zero(t, p.Cycles())
	assert.Zero(t, p.Spectrum().Peak())
}

func TestNewPipelineValidation(t *testing.T) {
	_, err := NewPipeline(config.DSPConfig{WindowSize: 256, Overlap: 3})
	assert.Error(t, err)
	_, err = NewPipeline(config.DSPConfig{WindowSize: 100, Overlap: 4})
	assert.ErrorIs(t, err, dsp.ErrWindowSize)
}

func TestPipelineAllocs(t *testing.T) {
	p, err := NewPipeline(config.DSPConfig{WindowSize: 1024, Overlap: 4, Estimator: config.EstimatorIncremental})
	require.NoError(t, err)

	in := utils.GenerateBinSine(p.Hop(), 1024, 7, 0.5)
	out := make([]float32, p.Hop())
	ratio := math.Exp2(3.0 / 12)
	p.Process(in, ratio, out)
	p.Process(in, ratio, out)

	assert.Zero(t, testing.AllocsPerRun(10, func() { p.Process(in, ratio, out) }))
}
