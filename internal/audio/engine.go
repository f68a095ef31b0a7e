// SPDX-License-Identifier: MIT
/*
Package audio implements the real-time device boundary with:
- One duplex PortAudio stream, mono float32 in and out, one hop per callback
- A callback that only copies, exchanges chunks over the fabric and counts
- Silence substitution whenever a timed exchange misses its deadline

Thread Safety:
- The callback never allocates, locks or logs in steady state
- Miss counters are atomic and read by the control thread
- Chunks are owned by exactly one side at a time
*/
package audio

import (
	"fmt"
	"sync/atomic"
	"time"

	"vocoder/internal/config"
	"vocoder/internal/fabric"
	"vocoder/internal/log"

	"github.com/gordonklaus/portaudio"
)

// Engine owns the duplex stream and its callback.
type Engine struct {
	// Core configuration and state.
	config *config.Config
	duplex *fabric.Duplex
	hop    int

	// Device handling.
	device        *portaudio.DeviceInfo
	inputLatency  time.Duration
	outputLatency time.Duration
	stream        *portaudio.Stream

	// Callback statistics.
	callbacks    atomic.Uint64
	inputMisses  atomic.Uint64 // input chunks the loop did not accept in time
	outputMisses atomic.Uint64 // callbacks that played silence
}

// NewEngine selects the device and prepares the stream parameters. The
// stream is opened by Start.
func NewEngine(cfg *config.Config, duplex *fabric.Duplex) (*Engine, error) {
	device, err := SelectDevice(cfg.Audio.Device)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config: cfg,
		duplex: duplex,
		hop:    cfg.HopSize(),
		device: device,
	}

	if cfg.Audio.LowLatency {
		engine.inputLatency = device.DefaultLowInputLatency
		engine.outputLatency = device.DefaultLowOutputLatency
	} else {
		engine.inputLatency = device.DefaultHighInputLatency
		engine.outputLatency = device.DefaultHighOutputLatency
	}

	log.WithFields(log.Fields{
		"device":         device.Name,
		"sample_rate":    cfg.Audio.SampleRate,
		"hop":            engine.hop,
		"input_latency":  engine.inputLatency,
		"output_latency": engine.outputLatency,
	}).Info("audio device selected")

	return engine, nil
}

// Device returns the selected device.
func (e *Engine) Device() *portaudio.DeviceInfo {
	return e.device
}

// Start opens and starts the duplex stream.
func (e *Engine) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   e.device,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   e.device,
			Latency:  e.outputLatency,
		},
		FramesPerBuffer: e.hop,
		SampleRate:      e.config.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processStream)
	if err != nil {
		return fmt.Errorf("failed to open duplex stream: %w", err)
	}
	e.stream = stream

	if err := e.stream.Start(); err != nil {
		e.stream.Close()
		e.stream = nil
		return fmt.Errorf("failed to start duplex stream: %w", err)
	}

	return nil
}

// Stop stops and closes the stream. It is safe to call when not started.
func (e *Engine) Stop() error {
	if e.stream != nil {
		if err := e.stream.Stop(); err != nil {
			return fmt.Errorf("failed to stop stream: %w", err)
		}

		if err := e.stream.Close(); err != nil {
			return fmt.Errorf("failed to close stream: %w", err)
		}

		e.stream = nil
	}

	return nil
}

// Close stops the stream and logs the callback statistics.
func (e *Engine) Close() error {
	err := e.Stop()
	in, out := e.Misses()
	log.WithFields(log.Fields{
		"callbacks":     e.callbacks.Load(),
		"input_misses":  in,
		"output_misses": out,
	}).Info("audio engine closed")
	return err
}

// Misses returns the input and output timing miss counts.
func (e *Engine) Misses() (input, output uint64) {
	return e.inputMisses.Load(), e.outputMisses.Load()
}

// Callbacks returns the number of callback invocations.
func (e *Engine) Callbacks() uint64 {
	return e.callbacks.Load()
}

// processStream is the real-time callback.
// Performance Critical:
// - Runs on the audio driver's thread
// - Uses pooled chunks only
// - Bounded waits, then silence
func (e *Engine) processStream(in, out []float32) {
	e.callbacks.Add(1)

	if len(in) != e.hop || len(out) != e.hop {
		clear(out)
		e.outputMisses.Add(1)
		return
	}

	chunk := e.duplex.Chunks.Get()
	copy(chunk, in)
	if err := e.duplex.In.Push(chunk); err != nil {
		e.duplex.Chunks.Put(chunk)
		e.inputMisses.Add(1)
	}

	processed, err := e.duplex.Out.Pop()
	if err != nil {
		clear(out)
		e.outputMisses.Add(1)
		return
	}
	copy(out, processed)
	e.duplex.Chunks.Put(processed)
}
