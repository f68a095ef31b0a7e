// SPDX-License-Identifier: MIT
package cmd

import (
	"vocoder/internal/config"
	"vocoder/pkg/build"

	"github.com/spf13/cobra"
)

// flagValues holds raw flag values. They are copied into the loaded
// configuration only when set on the command line, so a flag's default
// never overrides a config file or environment value.
type flagValues struct {
	configPath  string
	logLevel    string
	logFile     string
	device      int
	sampleRate  float64
	lowLatency  bool
	windowSize  int
	overlap     int
	estimator   string
	semitones   int
	effect      bool
	bitDepth    int
	interactive bool
}

func (f *flagValues) apply(changed func(string) bool, cfg *config.Config) {
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if changed("device") {
		cfg.Audio.Device = f.device
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = f.sampleRate
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = f.lowLatency
	}
	if changed("window") {
		cfg.DSP.WindowSize = f.windowSize
	}
	if changed("overlap") {
		cfg.DSP.Overlap = f.overlap
	}
	if changed("estimator") {
		cfg.DSP.Estimator = f.estimator
	}
	if changed("semitones") {
		cfg.Control.Semitones = f.semitones
	}
	if changed("effect") {
		cfg.Control.Effect = f.effect
	}
}

// ParseArgs builds the configuration from the config file, the environment
// and args, in increasing order of precedence.
func ParseArgs(args []string) (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	flags := &flagValues{}
	var options *config.Config

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flags.configPath)
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags().Changed, cfg)
			options = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.TUIMode = true
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
			options.TUIMode = flags.interactive
		},
	}
	listCmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false,
		"Browse devices in an interactive terminal UI")
	rootCmd.AddCommand(listCmd)

	// Render command
	renderCmd := &cobra.Command{
		Use:   "render <input> <output.wav>",
		Short: "Pitch shift an audio file (wav, mp3, flac, ogg) into a WAV file",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "render"
			options.Render = config.RenderOptions{
				Input:    args[0],
				Output:   args[1],
				BitDepth: flags.bitDepth,
			}
		},
	}
	renderCmd.Flags().IntVarP(&flags.bitDepth, "bit-depth", "b", 16,
		"Bits per sample of the output file (16, 24 or 32)")
	rootCmd.AddCommand(renderCmd)

	pf := rootCmd.PersistentFlags()

	// Configuration file and logging
	pf.StringVar(&flags.configPath, "config", "",
		"Path to a YAML config file (default ./config.yaml if present)")
	pf.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn or error")
	pf.StringVar(&flags.logFile, "log-file", config.DefaultLogFile,
		"Log file, empty for stderr")

	// Audio Device Configuration
	pf.IntVarP(&flags.device, "device", "d", config.DefaultDeviceID,
		"Specify duplex device ID. Use 'list' command to see available devices.")
	pf.Float64VarP(&flags.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.BoolVarP(&flags.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use the device's low latency defaults")

	// Analysis / synthesis
	pf.IntVarP(&flags.windowSize, "window", "w", config.DefaultWindowSize,
		"Samples per transform, a power of two")
	pf.IntVarP(&flags.overlap, "overlap", "o", config.DefaultOverlap,
		"Overlapping windows per output sample, must divide the window")
	pf.StringVar(&flags.estimator, "estimator", config.DefaultEstimator,
		"Spectral estimator: incremental or windowed")

	// Effect
	pf.IntVarP(&flags.semitones, "semitones", "t", config.DefaultSemitones,
		"Pitch shift in semitones")
	pf.BoolVarP(&flags.effect, "effect", "e", config.DefaultEffect,
		"Start with the effect enabled")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	// --help and --version run no command.
	if options == nil {
		options = config.NewConfig()
	}

	return options, nil
}
