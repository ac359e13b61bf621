// SPDX-License-Identifier: EPL-2.0

// Command voxswitch routes a microphone, or a soundboard clip or music track
// in its place, to a virtual audio cable with a monitor copy on headphones.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/voxswitch/config"
	"github.com/ik5/voxswitch/device"
	"github.com/ik5/voxswitch/device/portaudio"
	"github.com/ik5/voxswitch/engine"
	"github.com/ik5/voxswitch/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "voxswitch:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "voxswitch.yaml", "path to the config file")
	listDevices := flag.Bool("list-devices", false, "list audio devices and exit")
	dryRun := flag.Bool("dry-run", false, "use an in-memory audio backend clocked by a timer")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, logCloser, err := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	backend, err := openBackend(*dryRun, cfg.Audio.SampleRate)
	if err != nil {
		return err
	}
	defer backend.Close()

	if *listDevices {
		return printDevices(os.Stdout, backend)
	}

	in, err := device.ResolveInput(backend, cfg.Devices.Input)
	if err != nil {
		return fmt.Errorf("input device: %w", err)
	}
	out, err := device.ResolveOutput(backend, cfg.Devices.Output)
	if err != nil {
		return fmt.Errorf("output device: %w", err)
	}
	mon, err := device.ResolveOutput(backend, cfg.Devices.Monitor)
	if err != nil {
		return fmt.Errorf("monitor device: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := engine.NewSession(backend, sessionOptions(cfg), log)
	if err := session.Start(ctx, in, out, mon); err != nil {
		return err
	}

	cmd := newCommander(session, cfg, os.Stdout)
	cfg.Watch(logging.Component(log, "config"), cmd.applyConfig)

	g, gctx := errgroup.WithContext(ctx)

	if dummy, ok := backend.(*device.Dummy); ok {
		period := time.Duration(cfg.Audio.BlockSize) * time.Second / time.Duration(cfg.Audio.SampleRate)
		g.Go(func() error {
			dummy.Run(gctx, period)
			return nil
		})
	}
	g.Go(func() error { return printEvents(gctx, os.Stdout, session.Events()) })
	g.Go(func() error { return cmd.loop(gctx, os.Stdin) })

	err = g.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		err = nil
	}

	if stopErr := session.Stop(); stopErr != nil {
		log.Error().Err(stopErr).Msg("stopping session")
	}

	if !*dryRun {
		if saveErr := cmd.save(*configPath); saveErr != nil {
			log.Error().Err(saveErr).Str("file", *configPath).Msg("saving config")
		} else {
			log.Info().Str("file", *configPath).Msg("config saved")
		}
	}
	return err
}

func openBackend(dryRun bool, sampleRate int) (device.Backend, error) {
	if dryRun {
		return device.NewDummy(sampleRate), nil
	}
	return portaudio.New()
}

func sessionOptions(cfg *config.Config) engine.Options {
	return engine.Options{
		SampleRate:      cfg.Audio.SampleRate,
		BlockSize:       cfg.Audio.BlockSize,
		QueueCapacity:   cfg.Audio.QueueCapacity,
		MonitorCapacity: cfg.Audio.MonitorCapacity,
		MicGain:         cfg.Gains.Mic,
		PlaybackGain:    cfg.Gains.Playback,
		MonitorGain:     cfg.Gains.Monitor,
		Resampler:       cfg.Resampler(),
		Watchdog:        cfg.Watchdog,
		Music:           cfg.Music,
		Slots:           cfg.Slots,
	}
}

func printDevices(w io.Writer, b device.Backend) error {
	inputs, err := b.Inputs()
	if err != nil {
		return err
	}
	outputs, err := b.Outputs()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Input devices:")
	for _, d := range inputs {
		fmt.Fprintln(w, d)
	}
	fmt.Fprintln(w, "Output devices:")
	for _, d := range outputs {
		fmt.Fprintln(w, d)
	}
	return nil
}

func printEvents(ctx context.Context, w io.Writer, events <-chan engine.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			fmt.Fprintf(w, "%s [%s] %s\n", ev.Time.Format(time.TimeOnly), ev.Severity, ev.Message)
		}
	}
}

