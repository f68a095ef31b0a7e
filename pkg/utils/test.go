// SPDX-License-Identifier: MIT
package utils

import "math"

// GenerateSineWave returns size samples of a unit-amplitude sine at
// frequency Hz, scaled by amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
	return buffer
}

// GenerateBinSine returns size samples of a cosine that completes exactly
// bin cycles every windowSize samples, so it lands on a single DFT bin.
func GenerateBinSine(size, windowSize, bin int, amplitude float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		buffer[i] = float32(amplitude * math.Cos(2*math.Pi*float64(bin)*float64(i)/float64(windowSize)))
	}
	return buffer
}

// GenerateComplexWave returns a 440 Hz fundamental with two harmonics,
// peaking below 1.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude in
// [startBin, endBin], clamping the range to the slice.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}

// MaxAbsDiff returns the largest |a[i]-b[i]| over the shorter length.
func MaxAbsDiff(a, b []float32) float64 {
	worst := 0.0
	for i := range min(len(a), len(b)) {
		if d := math.Abs(float64(a[i]) - float64(b[i])); d > worst {
			worst = d
		}
	}
	return worst
}
