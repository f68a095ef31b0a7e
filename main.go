// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vocoder/cmd"
	"vocoder/internal/audio"
	"vocoder/internal/config"
	"vocoder/internal/control"
	"vocoder/internal/dsp"
	"vocoder/internal/fabric"
	"vocoder/internal/log"
	"vocoder/internal/render"
	"vocoder/internal/tui"
	"vocoder/internal/vocoder"
	"vocoder/pkg/build"

	"golang.org/x/sync/errgroup"
)

// main is the entry point for the phase vocoder.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Load and validate the configuration
//   - Execute one-off commands if requested
//   - Initialize PortAudio and select the duplex device
//
// 2. Concurrent Phase (Hot Path):
//   - Start the processing loop
//   - Start the duplex stream (the real-time callback)
//   - Run the spectrum view until exit is requested
//
// 3. Shutdown Phase (Cold Path):
//   - Set the exit flag and close the channel fabric
//   - Stop the stream and wait for the processing loop
//   - Log callback and loop statistics
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Initialize build information including version, commit hash, and build time
	if err := build.Initialize(); err != nil {
		log.Fatal(err)
	}

	// Config file, then environment, then command line flags
	cfg, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)

	// Handle one-off commands that don't require the audio engine
	if cfg.Command != "" {
		if err := executeCommand(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Exit if not running in TUI mode (--help, --version)
	if !cfg.TUIMode {
		return
	}

	// The spectrum view owns the terminal from here on.
	logFile, err := log.OpenFile(cfg.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()

	log.WithFields(log.Fields{
		"build":       build.GetBuildFlags().String(),
		"window":      cfg.DSP.WindowSize,
		"overlap":     cfg.DSP.Overlap,
		"hop":         cfg.HopSize(),
		"estimator":   cfg.DSP.Estimator,
		"sample_rate": cfg.Audio.SampleRate,
		"semitones":   cfg.Control.Semitones,
	}).Info("starting")

	if err := audio.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer audio.Terminate()

	if err := run(cfg); err != nil {
		log.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		audio.Terminate()
		os.Exit(1)
	}
}

// run wires the fabric, the processing loop, the audio engine and the
// spectrum view, and blocks until the view exits.
func run(cfg *config.Config) error {
	ctl := control.New(cfg.Control)

	pipeline, err := vocoder.NewPipeline(cfg.DSP)
	if err != nil {
		return err
	}

	duplex := fabric.NewDuplex(cfg.Channels.Capacity, cfg.HopSize(), cfg.Channels.Timeout)
	visual := fabric.NewLossy[dsp.Spectrum](cfg.Channels.VisualCapacity)
	snapshots := vocoder.NewSnapshotPool(cfg.Channels.VisualCapacity, cfg.DSP.WindowSize)
	loop := vocoder.NewLoop(pipeline, duplex, visual, snapshots, ctl)

	engine, err := audio.NewEngine(cfg, duplex)
	if err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	var g errgroup.Group
	g.Go(loop.Run)

	// CRITICAL: Start of real-time audio processing
	// The first callback marks the start of the hot path
	if err := engine.Start(); err != nil {
		ctl.RequestExit()
		duplex.Close()
		g.Wait()
		return err
	}

	// Setup signal handling for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		select {
		case sig := <-signals:
			log.Infof("received %s, shutting down", sig)
			ctl.RequestExit()
		case <-ctl.Done():
		}
	}()

	uiErr := tui.Run(tui.NewSpectrumModel(cfg, ctl, visual, snapshots))

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	ctl.RequestExit()
	duplex.Close()
	loopErr := g.Wait()

	if err := engine.Close(); err != nil {
		log.Errorf("closing audio engine: %v", err)
	}

	inputMisses, outputMisses := engine.Misses()
	stats := loop.Stats()
	log.WithFields(log.Fields{
		"callbacks":      engine.Callbacks(),
		"input_misses":   inputMisses,
		"output_misses":  outputMisses,
		"cycles":         stats.Cycles.Load(),
		"output_drops":   stats.OutputDrops.Load(),
		"visual_drops":   stats.VisualDrops.Load(),
		"silent_cycles":  stats.SilentCycles.Load(),
		"pipeline_cycle": pipeline.Cycles(),
	}).Info("stopped")

	if uiErr != nil {
		return uiErr
	}
	return loopErr
}

// executeCommand handles one-off commands that don't require the audio engine
// to be running, such as listing devices or rendering a file.
func executeCommand(cfg *config.Config) error {
	switch cfg.Command {
	case "list":
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()

		if cfg.TUIMode {
			return tui.StartDeviceListUI(cfg.Audio.SampleRate)
		}
		return audio.ListDevices(os.Stdout)

	case "render":
		result, err := render.Render(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Rendered %d frames at %d Hz (x%.3f) to %s in %s\n",
			result.Frames, result.SampleRate, result.Ratio, cfg.Render.Output, result.Elapsed)
		if result.Clipped > 0 {
			fmt.Printf("%d samples were clipped\n", result.Clipped)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}
