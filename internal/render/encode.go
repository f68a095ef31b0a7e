// SPDX-License-Identifier: MIT
package render

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes mono PCM samples to path at the given bit depth,
// clipping to [-1, 1]. It returns how many samples were clipped.
func WriteWAV(path string, samples []float32, sampleRate, bitDepth int) (int, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return 0, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output: %w", err)
	}

	full := float64(int64(1)<<(bitDepth-1) - 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}

	clipped := 0
	for i, s := range samples {
		v := float64(s)
		if v > 1 {
			v, clipped = 1, clipped+1
		} else if v < -1 {
			v, clipped = -1, clipped+1
		}
		buf.Data[i] = int(v * full)
	}

	encoder := wav.NewEncoder(file, sampleRate, bitDepth, 1, 1)
	if err := encoder.Write(buf); err != nil {
		file.Close()
		return clipped, fmt.Errorf("failed to write samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return clipped, fmt.Errorf("failed to finalize WAV: %w", err)
	}
	if err := file.Close(); err != nil {
		return clipped, fmt.Errorf("failed to close output: %w", err)
	}

	return clipped, nil
}
