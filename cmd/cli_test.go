// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"vocoder/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := ParseArgs(nil)
	require.NoError(t, err)

	assert.True(t, cfg.TUIMode)
	assert.Empty(t, cfg.Command)
	assert.Equal(t, config.DefaultWindowSize, cfg.DSP.WindowSize)
	assert.Equal(t, config.DefaultSemitones, cfg.Control.Semitones)
	assert.NoError(t, cfg.Validate())
}

func TestParseArgsFlags(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"-w", "512", "-o", "8", "--semitones=-5", "-e",
		"--estimator", config.EstimatorWindowed, "-d", "3", "--log-file", "",
	})
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.DSP.WindowSize)
	assert.Equal(t, 8, cfg.DSP.Overlap)
	assert.Equal(t, config.EstimatorWindowed, cfg.DSP.Estimator)
	assert.Equal(t, -5, cfg.Control.Semitones)
	assert.True(t, cfg.Control.Effect)
	assert.Equal(t, 3, cfg.Audio.Device)
	assert.Empty(t, cfg.LogFile)
}

func TestParseArgsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocoder.yaml")
	data := "dsp:\n  window_size: 2048\ncontrol:\n  semitones: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := ParseArgs([]string{"--config", path, "-t", "7"})
	require.NoError(t, err)

	// Flags win over the file, the file wins over defaults.
	assert.Equal(t, 2048, cfg.DSP.WindowSize)
	assert.Equal(t, 7, cfg.Control.Semitones)
	assert.Equal(t, config.DefaultOverlap, cfg.DSP.Overlap)
}

func TestParseArgsMissingConfigFile(t *testing.T) {
	_, err := ParseArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")})
	assert.Error(t, err)
}

func TestParseArgsList(t *testing.T) {
	cfg, err := ParseArgs([]string{"list"})
	require.NoError(t, err)
	assert.Equal(t, "list", cfg.Command)
	assert.False(t, cfg.TUIMode)

	cfg, err = ParseArgs([]string{"list", "-i"})
	require.NoError(t, err)
	assert.Equal(t, "list", cfg.Command)
	assert.True(t, cfg.TUIMode)
}

func TestParseArgsRender(t *testing.T) {
	cfg, err := ParseArgs([]string{"render", "in.flac", "out.wav", "--bit-depth", "24", "--semitones=-12"})
	require.NoError(t, err)

	assert.Equal(t, "render", cfg.Command)
	assert.False(t, cfg.TUIMode)
	assert.Equal(t, config.RenderOptions{Input: "in.flac", Output: "out.wav", BitDepth: 24}, cfg.Render)
	assert.Equal(t, -12, cfg.Control.Semitones)
	assert.NoError(t, cfg.Validate())

	_, err = ParseArgs([]string{"render", "in.flac"})
	assert.Error(t, err)
}

func TestParseArgsVersion(t *testing.T) {
	cfg, err := ParseArgs([]string{"--version"})
	require.NoError(t, err)
	assert.False(t, cfg.TUIMode)
	assert.Empty(t, cfg.Command)
}
