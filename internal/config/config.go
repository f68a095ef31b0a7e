// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the phase vocoder.
const (
	// Logging
	DefaultLogLevel = "info"
	DefaultLogFile  = "vocoder.log" // The TUI owns the terminal.

	// Audio device
	DefaultDeviceID   = MinDeviceID // System default device
	DefaultSampleRate = 51200       // DefaultWindowSize * 50
	DefaultLowLatency = true

	// Analysis / synthesis
	DefaultWindowSize   = 1024 // N, must be a power of two
	DefaultOverlap      = 4    // Windows summed per output sample
	DefaultDampingRatio = 0.0  // No leakage in the sliding DFT
	DefaultEstimator    = EstimatorIncremental

	// Channel fabric
	DefaultChannelCapacity = 2
	DefaultVisualCapacity  = 16
	DefaultChannelTimeout  = 100 * time.Millisecond

	// Control
	DefaultSemitones    = 12
	DefaultEffect       = false
	DefaultOutput       = true
	DefaultMinSemitones = -24
	DefaultMaxSemitones = 24

	// Visualization
	DefaultFPS = 40

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MinWindowSize = 16
	MaxWindowSize = 16384
)

// Estimator modes.
const (
	EstimatorIncremental = "incremental"
	EstimatorWindowed    = "windowed"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	LogLevel string `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	LogFile  string `yaml:"log_file"`  // Log destination, empty for stderr.

	Audio    AudioConfig    `yaml:"audio"`
	DSP      DSPConfig      `yaml:"dsp"`
	Channels ChannelsConfig `yaml:"channels"`
	Control  ControlConfig  `yaml:"control"`
	UI       UIConfig       `yaml:"ui"`

	// Set by the CLI, never read from YAML.
	Command string        `yaml:"-"` // One-off command to execute instead of running the engine.
	TUIMode bool          `yaml:"-"` // Terminal UI mode enabled.
	Render  RenderOptions `yaml:"-"` // Arguments of the render command.
}

// AudioConfig holds settings related to the duplex audio device.
type AudioConfig struct {
	Device     int     `yaml:"device"`      // PortAudio device index (-1 for default).
	SampleRate float64 `yaml:"sample_rate"` // Sample rate in Hz.
	LowLatency bool    `yaml:"low_latency"` // Request the device's low latency defaults.
}

// DSPConfig holds the analysis/synthesis geometry.
type DSPConfig struct {
	WindowSize   int     `yaml:"window_size"`   // N, samples per transform.
	Overlap      int     `yaml:"overlap"`       // Windows overlapping each output sample.
	DampingRatio float64 `yaml:"damping_ratio"` // Leak of the sliding DFT, 0 disables.
	Estimator    string  `yaml:"estimator"`     // "incremental" or "windowed".
}

// ChannelsConfig sizes the channel fabric.
type ChannelsConfig struct {
	Capacity       int           `yaml:"capacity"`        // Callback <-> processing loop.
	VisualCapacity int           `yaml:"visual_capacity"` // Processing loop -> visualization.
	Timeout        time.Duration `yaml:"timeout"`         // Callback wait budget.
}

// ControlConfig holds the initial control state and its limits.
type ControlConfig struct {
	Semitones    int  `yaml:"semitones"`
	Effect       bool `yaml:"effect"`
	Output       bool `yaml:"output"`
	MinSemitones int  `yaml:"min_semitones"`
	MaxSemitones int  `yaml:"max_semitones"`
}

// UIConfig holds visualization settings.
type UIConfig struct {
	FPS int `yaml:"fps"`
}

// RenderOptions carries the arguments of the offline render command.
type RenderOptions struct {
	Input    string
	Output   string
	BitDepth int
}

// NewConfig creates a new Config instance with default values.
// This is the base configuration before a config file, the environment
// and command line flags are applied.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		Audio: AudioConfig{
			Device:     DefaultDeviceID,
			SampleRate: DefaultSampleRate,
			LowLatency: DefaultLowLatency,
		},
		DSP: DSPConfig{
			WindowSize:   DefaultWindowSize,
			Overlap:      DefaultOverlap,
			DampingRatio: DefaultDampingRatio,
			Estimator:    DefaultEstimator,
		},
		Channels: ChannelsConfig{
			Capacity:       DefaultChannelCapacity,
			VisualCapacity: DefaultVisualCapacity,
			Timeout:        DefaultChannelTimeout,
		},
		Control: ControlConfig{
			Semitones:    DefaultSemitones,
			Effect:       DefaultEffect,
			Output:       DefaultOutput,
			MinSemitones: DefaultMinSemitones,
			MaxSemitones: DefaultMaxSemitones,
		},
		UI: UIConfig{
			FPS: DefaultFPS,
		},
		Render: RenderOptions{
			BitDepth: 16,
		},
	}
}

// HopSize returns the number of samples consumed and produced per cycle.
func (c *Config) HopSize() int {
	return c.DSP.WindowSize / c.DSP.Overlap
}

// FrameInterval returns the UI tick period derived from FPS.
func (c *Config) FrameInterval() time.Duration {
	if c.UI.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.UI.FPS)
}
