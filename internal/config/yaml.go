// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"vocoder/internal/log"
	"vocoder/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides. Validation is left to the caller because command line flags are
// applied on top of the returned configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Validate rejects every configuration that would produce silently wrong
// audio. A failure here is fatal for the process.
func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
	}

	// Audio
	if c.Audio.Device < MinDeviceID {
		return fmt.Errorf("%w: audio.device must be >= %d, got %d", ErrInvalid, MinDeviceID, c.Audio.Device)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: audio.sample_rate must be in [%d, %d], got %.0f",
			ErrInvalid, MinSampleRate, MaxSampleRate, c.Audio.SampleRate)
	}

	// Geometry: N a power of two and N = hop * overlap exactly.
	if !bitint.IsPowerOfTwo(c.DSP.WindowSize) {
		return fmt.Errorf("%w: dsp.window_size must be a power of two, got %d", ErrInvalid, c.DSP.WindowSize)
	}
	if c.DSP.WindowSize < MinWindowSize || c.DSP.WindowSize > MaxWindowSize {
		return fmt.Errorf("%w: dsp.window_size must be in [%d, %d], got %d",
			ErrInvalid, MinWindowSize, MaxWindowSize, c.DSP.WindowSize)
	}
	if c.DSP.Overlap < 1 || c.DSP.Overlap > c.DSP.WindowSize {
		return fmt.Errorf("%w: dsp.overlap must be in [1, %d], got %d", ErrInvalid, c.DSP.WindowSize, c.DSP.Overlap)
	}
	if c.DSP.WindowSize%c.DSP.Overlap != 0 {
		return fmt.Errorf("%w: dsp.window_size %d is not divisible by dsp.overlap %d",
			ErrInvalid, c.DSP.WindowSize, c.DSP.Overlap)
	}
	if c.DSP.DampingRatio < 0 || c.DSP.DampingRatio >= 1 {
		return fmt.Errorf("%w: dsp.damping_ratio must be in [0, 1), got %g", ErrInvalid, c.DSP.DampingRatio)
	}
	if c.DSP.Estimator != EstimatorIncremental && c.DSP.Estimator != EstimatorWindowed {
		return fmt.Errorf("%w: dsp.estimator must be %q or %q, got %q",
			ErrInvalid, EstimatorIncremental, EstimatorWindowed, c.DSP.Estimator)
	}

	// Channels
	if c.Channels.Capacity < 1 {
		return fmt.Errorf("%w: channels.capacity must be positive, got %d", ErrInvalid, c.Channels.Capacity)
	}
	if c.Channels.VisualCapacity < 1 {
		return fmt.Errorf("%w: channels.visual_capacity must be positive, got %d", ErrInvalid, c.Channels.VisualCapacity)
	}
	if c.Channels.Timeout <= 0 {
		return fmt.Errorf("%w: channels.timeout must be positive, got %s", ErrInvalid, c.Channels.Timeout)
	}

	// Control
	if c.Control.MinSemitones > c.Control.MaxSemitones {
		return fmt.Errorf("%w: control.min_semitones %d exceeds control.max_semitones %d",
			ErrInvalid, c.Control.MinSemitones, c.Control.MaxSemitones)
	}
	if c.Control.MinSemitones < -48 || c.Control.MaxSemitones > 48 {
		return fmt.Errorf("%w: semitone range must stay within four octaves, got [%d, %d]",
			ErrInvalid, c.Control.MinSemitones, c.Control.MaxSemitones)
	}
	if c.Control.Semitones < c.Control.MinSemitones || c.Control.Semitones > c.Control.MaxSemitones {
		return fmt.Errorf("%w: control.semitones %d outside [%d, %d]",
			ErrInvalid, c.Control.Semitones, c.Control.MinSemitones, c.Control.MaxSemitones)
	}

	if c.UI.FPS < 1 || c.UI.FPS > 240 {
		return fmt.Errorf("%w: ui.fps must be in [1, 240], got %d", ErrInvalid, c.UI.FPS)
	}

	if c.Command == "render" {
		switch c.Render.BitDepth {
		case 16, 24, 32:
		default:
			return fmt.Errorf("%w: render bit depth must be 16, 24 or 32, got %d", ErrInvalid, c.Render.BitDepth)
		}
		if c.Render.Input == "" || c.Render.Output == "" {
			return fmt.Errorf("%w: render needs an input and an output file", ErrInvalid)
		}
	}

	return nil
}

// applyEnvOverrides lets the environment override file values. Malformed
// values are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		log.Debugf("configuration: overriding log_level from env: %s", val)
	}

	// ENV_DEVICE
	if val, ok := os.LookupEnv("ENV_DEVICE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.Audio.Device = iVal
			log.Debugf("configuration: overriding audio.device from env: %d", iVal)
		} else {
			log.Warnf("configuration: ignoring ENV_DEVICE=%q: %v", val, err)
		}
	}

	// ENV_WINDOW_SIZE
	if val, ok := os.LookupEnv("ENV_WINDOW_SIZE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.DSP.WindowSize = iVal
			log.Debugf("configuration: overriding dsp.window_size from env: %d", iVal)
		} else {
			log.Warnf("configuration: ignoring ENV_WINDOW_SIZE=%q: %v", val, err)
		}
	}

	// ENV_OVERLAP
	if val, ok := os.LookupEnv("ENV_OVERLAP"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.DSP.Overlap = iVal
			log.Debugf("configuration: overriding dsp.overlap from env: %d", iVal)
		} else {
			log.Warnf("configuration: ignoring ENV_OVERLAP=%q: %v", val, err)
		}
	}

	// ENV_SEMITONES
	if val, ok := os.LookupEnv("ENV_SEMITONES"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.Control.Semitones = iVal
			log.Debugf("configuration: overriding control.semitones from env: %d", iVal)
		} else {
			log.Warnf("configuration: ignoring ENV_SEMITONES=%q: %v", val, err)
		}
	}

	// ENV_TIMEOUT
	if val, ok := os.LookupEnv("ENV_TIMEOUT"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Channels.Timeout = dur
			log.Debugf("configuration: overriding channels.timeout from env: %s", dur)
		} else {
			log.Warnf("configuration: ignoring ENV_TIMEOUT=%q: %v", val, err)
		}
	}
}
