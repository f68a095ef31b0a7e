// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration should validate, got %v", err)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeTempConfig(t, `
log_level: debug
log_file: ""
audio:
  device: 3
  sample_rate: 48000
dsp:
  window_size: 2048
  overlap: 8
  estimator: windowed
channels:
  capacity: 4
  timeout: 50ms
control:
  semitones: -5
  effect: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.LogFile != "" {
		t.Errorf("logging not loaded: %q %q", cfg.LogLevel, cfg.LogFile)
	}
	if cfg.Audio.Device != 3 || cfg.Audio.SampleRate != 48000 {
		t.Errorf("audio not loaded: %+v", cfg.Audio)
	}
	if cfg.DSP.WindowSize != 2048 || cfg.DSP.Overlap != 8 || cfg.DSP.Estimator != EstimatorWindowed {
		t.Errorf("dsp not loaded: %+v", cfg.DSP)
	}
	if cfg.HopSize() != 256 {
		t.Errorf("HopSize() = %d, want 256", cfg.HopSize())
	}
	if cfg.Channels.Capacity != 4 || cfg.Channels.Timeout != 50*time.Millisecond {
		t.Errorf("channels not loaded: %+v", cfg.Channels)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Channels.VisualCapacity != DefaultVisualCapacity {
		t.Errorf("visual capacity default lost: %d", cfg.Channels.VisualCapacity)
	}
	if cfg.Control.Semitones != -5 || !cfg.Control.Effect || !cfg.Control.Output {
		t.Errorf("control not loaded: %+v", cfg.Control)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_WINDOW_SIZE", "512")
	t.Setenv("ENV_OVERLAP", "2")
	t.Setenv("ENV_SEMITONES", "7")
	t.Setenv("ENV_TIMEOUT", "20ms")
	t.Setenv("ENV_DEVICE", "not-a-number")

	path := writeTempConfig(t, "dsp:\n  window_size: 4096\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.DSP.WindowSize != 512 {
		t.Errorf("env should override file: window_size = %d", cfg.DSP.WindowSize)
	}
	if cfg.DSP.Overlap != 2 || cfg.Control.Semitones != 7 || cfg.Channels.Timeout != 20*time.Millisecond {
		t.Errorf("env overrides not applied: %+v %+v %+v", cfg.DSP, cfg.Control, cfg.Channels)
	}
	if cfg.Audio.Device != DefaultDeviceID {
		t.Errorf("malformed ENV_DEVICE should be ignored, got %d", cfg.Audio.Device)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"Defaults", func(c *Config) {}, ""},
		{"NonPowerOfTwoWindow", func(c *Config) { c.DSP.WindowSize = 1000 }, "power of two"},
		{"WindowTooSmall", func(c *Config) { c.DSP.WindowSize = 8; c.DSP.Overlap = 2 }, "window_size must be in"},
		{"OverlapRemainder", func(c *Config) { c.DSP.Overlap = 3 }, "not divisible"},
		{"OverlapZero", func(c *Config) { c.DSP.Overlap = 0 }, "dsp.overlap"},
		{"Damping", func(c *Config) { c.DSP.DampingRatio = 1 }, "damping_ratio"},
		{"Estimator", func(c *Config) { c.DSP.Estimator = "magic" }, "dsp.estimator"},
		{"SampleRate", func(c *Config) { c.Audio.SampleRate = 100 }, "sample_rate"},
		{"Device", func(c *Config) { c.Audio.Device = -2 }, "audio.device"},
		{"Capacity", func(c *Config) { c.Channels.Capacity = 0 }, "channels.capacity"},
		{"VisualCapacity", func(c *Config) { c.Channels.VisualCapacity = 0 }, "visual_capacity"},
		{"Timeout", func(c *Config) { c.Channels.Timeout = 0 }, "channels.timeout"},
		{"SemitoneRange", func(c *Config) { c.Control.MinSemitones = 5; c.Control.MaxSemitones = 4 }, "exceeds"},
		{"SemitonesOutside", func(c *Config) { c.Control.Semitones = 30 }, "outside"},
		{"LogLevel", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"FPS", func(c *Config) { c.UI.FPS = 0 }, "ui.fps"},
		{"RenderBitDepth", func(c *Config) {
			c.Command = "render"
			c.Render = RenderOptions{Input: "in.wav", Output: "out.wav", BitDepth: 12}
		}, "bit depth"},
		{"RenderMissingFiles", func(c *Config) {
			c.Command = "render"
			c.Render = RenderOptions{BitDepth: 16}
		}, "input and an output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.errMsg)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error should wrap ErrInvalid: %v", err)
			}
		})
	}
}

func TestFrameInterval(t *testing.T) {
	cfg := NewConfig()
	if got := cfg.FrameInterval(); got != 25*time.Millisecond {
		t.Errorf("FrameInterval() = %s, want 25ms", got)
	}
	cfg.UI.FPS = 0
	if got := cfg.FrameInterval(); got != 25*time.Millisecond {
		t.Errorf("FrameInterval() fallback = %s, want 25ms", got)
	}
}
