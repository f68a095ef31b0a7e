// SPDX-License-Identifier: MIT
package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedFormat is returned for input files with an unknown
// extension.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Clip is a decoded file, downmixed to mono in [-1, 1].
type Clip struct {
	Samples    []float32
	SampleRate int
	Channels   int // channel count of the source before downmixing
}

// Decode reads a WAV, MP3, FLAC or Ogg Vorbis file chosen by extension.
func Decode(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	case ".flac":
		return decodeFLAC(f)
	case ".ogg", ".oga":
		return decodeOGG(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func decodeWAV(f *os.File) (*Clip, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	scale, err := pcmScale(bitDepth)
	if err != nil || channels < 1 || bitDepth < 8 {
		return nil, fmt.Errorf("invalid WAV format: %d channels, %d bits", channels, bitDepth)
	}

	// 8-bit WAV is unsigned.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	interleaved := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float32(v-offset) * scale
	}
	return &Clip{
		Samples:    downmix(interleaved, channels),
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
	}, nil
}

func decodeMP3(f *os.File) (*Clip, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}

	// Always 16-bit little endian stereo.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading MP3 frames: %w", err)
	}

	interleaved := make([]float32, len(raw)/2)
	for i := range interleaved {
		interleaved[i] = float32(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768
	}
	return &Clip{
		Samples:    downmix(interleaved, 2),
		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}

func decodeFLAC(f *os.File) (*Clip, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	bps := int(stream.Info.BitsPerSample)
	scale, err := pcmScale(bps)
	if err != nil {
		return nil, fmt.Errorf("invalid FLAC stream: %w", err)
	}
	if channels < 1 {
		return nil, fmt.Errorf("invalid FLAC stream: %d channels", channels)
	}

	samples := make([]float32, 0, stream.Info.NSamples)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading FLAC frame: %w", err)
		}

		n := int(frame.Subframes[0].NSamples)
		for i := 0; i < n; i++ {
			var sum float32
			for ch := 0; ch < channels; ch++ {
				sum += float32(frame.Subframes[ch].Samples[i]) * scale
			}
			samples = append(samples, sum/float32(channels))
		}
	}

	return &Clip{
		Samples:    samples,
		SampleRate: int(stream.Info.SampleRate),
		Channels:   channels,
	}, nil
}

func decodeOGG(f *os.File) (*Clip, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}

	channels := reader.Channels()
	interleaved := make([]float32, 0, reader.Length()*int64(channels))
	buf := make([]float32, 4096*channels)
	for {
		n, err := reader.Read(buf)
		interleaved = append(interleaved, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading OGG packets: %w", err)
		}
	}

	return &Clip{
		Samples:    downmix(interleaved, channels),
		SampleRate: reader.SampleRate(),
		Channels:   channels,
	}, nil
}

// pcmScale returns the factor mapping signed integer samples of the given
// bit depth to [-1, 1).
func pcmScale(bits int) (float32, error) {
	if bits < 1 || bits > 32 {
		return 0, fmt.Errorf("unsupported bit depth %d", bits)
	}
	return 1 / float32(int64(1)<<(bits-1)), nil
}

// downmix averages interleaved frames of channels samples into mono.
func downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	mono := make([]float32, len(interleaved)/channels)
	for i := range mono {
		var sum float32
		for _, v := range interleaved[i*channels : (i+1)*channels] {
			sum += v
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
