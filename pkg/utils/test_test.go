// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"os"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
	testFrequency  = 440.0 // A4 note
)

var (
	testMagnitudes  []float64
	testComplexWave []float32
	testSineWave    []float32
)

func TestMain(m *testing.M) {
	testMagnitudes = make([]float64, testSize)

	// Creates a "hill" with peak at position testSize/4.
	for i := range testMagnitudes {
		testMagnitudes[i] = math.Exp(-0.01 * math.Pow(float64(i-testSize/4), 2))
	}

	testComplexWave = GenerateComplexWave(testSize, testSampleRate)
	testSineWave = GenerateSineWave(testSize, testSampleRate, testFrequency, 0.9)

	os.Exit(m.Run())
}

func TestFindPeakBin(t *testing.T) {
	tests := []struct {
		name       string
		magnitudes []float64
		startBin   int
		endBin     int
		want       int
	}{
		{"Empty", nil, 0, 10, 0},
		{"Whole range", testMagnitudes, 0, testSize - 1, testSize / 4},
		{"Clamped range", testMagnitudes, -5, testSize * 2, testSize / 4},
		{"Range after peak", testMagnitudes, testSize/2, testSize - 1, testSize / 2},
		{"Single bin", []float64{0.1, 0.7, 0.2}, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindPeakBin(tt.magnitudes, tt.startBin, tt.endBin); got != tt.want {
				t.Errorf("FindPeakBin() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGenerateSineWave(t *testing.T) {
	if len(testSineWave) != testSize {
		t.Fatalf("len = %d, want %d", len(testSineWave), testSize)
	}
	if testSineWave[0] != 0 {
		t.Errorf("first sample = %v, want 0", testSineWave[0])
	}
	for i, v := range testSineWave {
		if math.Abs(float64(v)) > 0.9+1e-6 {
			t.Fatalf("sample %d = %v exceeds amplitude", i, v)
		}
	}
}

func TestGenerateBinSinePeriodic(t *testing.T) {
	const window = 64
	buf := GenerateBinSine(2*window, window, 3, 1)
	for i := 0; i < window; i++ {
		if math.Abs(float64(buf[i]-buf[i+window])) > 1e-6 {
			t.Fatalf("sample %d differs one window later: %v vs %v", i, buf[i], buf[i+window])
		}
	}
	if buf[0] != 1 {
		t.Errorf("first sample = %v, want 1", buf[0])
	}
}

func TestGenerateComplexWaveBounded(t *testing.T) {
	for i, v := range testComplexWave {
		if math.Abs(float64(v)) >= 1 {
			t.Fatalf("sample %d = %v not below full scale", i, v)
		}
	}
}

func TestMaxAbsDiff(t *testing.T) {
	a := []float32{0, 0.5, -1}
	b := []float32{0, 0.25, -1, 7}
	if got := MaxAbsDiff(a, b); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("MaxAbsDiff = %v, want 0.25", got)
	}
}
