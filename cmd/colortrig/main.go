// Package main provides the CLI entrypoint for colortrig.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/colortrig/colortrig/internal/capture"
	"github.com/colortrig/colortrig/internal/config"
	"github.com/colortrig/colortrig/internal/hotkey"
	"github.com/colortrig/colortrig/internal/input"
	"github.com/colortrig/colortrig/internal/monitor"
	"github.com/colortrig/colortrig/internal/resilience"
	"github.com/colortrig/colortrig/internal/snapshot"
)

const (
	defaultSnapshotDir = "snapshots"
	statusInterval     = 5 * time.Second
)

var (
	configPath  string
	verbose     bool
	snapshotDir string
	autoStart   bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "colortrig",
		Short:         "Screen color monitor with keystroke trigger",
		Long:          "Watches a screen region and presses a key when enough pixels match the target color.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runMonitorCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&snapshotDir, "snapshot-dir", defaultSnapshotDir, "directory for region snapshots")
	rootCmd.Flags().BoolVar(&autoStart, "start", true, "begin monitoring immediately")

	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newDisplaysCmd())

	return rootCmd
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runMonitorCmd(cmd *cobra.Command, _ []string) error {
	setupLogging()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("invalid configuration", "path", configPath, "error", err)
		return err
	}

	screen := capture.NewScreen()

	// Probe the capture path once so a dead display or out-of-bounds
	// region is reported at startup, not on the first loop iteration.
	probe := func() error {
		_, perr := screen.Capture(cfg.Region)
		return perr
	}
	if err := resilience.Retry(cmd.Context(), resilience.ProbeRetryConfig(), probe); err != nil {
		slog.Warn("capture probe failed, monitoring may not produce frames", "error", err)
	}

	mon := monitor.New(cfg, configPath, screen, input.NewKeyboard())
	writer := snapshot.NewWriter(screen, snapshotDir)

	keys := hotkey.NewListener()
	bindings := map[string]func(){
		cfg.HotkeyStartStop: func() {
			if mon.Running() {
				mon.Stop()
			} else {
				mon.Start()
			}
		},
		cfg.HotkeyPauseResume: func() {
			if mon.Paused() {
				mon.Resume()
			} else {
				mon.Pause()
			}
		},
		cfg.HotkeySnapshot: func() {
			go saveSnapshot(writer, mon)
		},
	}
	for spec, action := range bindings {
		if err := keys.Bind(spec, action); err != nil {
			slog.Error("invalid hotkey", "combo", spec, "error", err)
			return err
		}
	}
	keys.Start()
	defer keys.Stop()

	if autoStart {
		mon.Start()
	}
	slog.Info("colortrig ready",
		"region", cfg.Region,
		"target", cfg.TargetColor,
		"threshold", cfg.ThresholdPercent,
		"key", cfg.PressKey,
		"start_stop", cfg.HotkeyStartStop,
		"pause_resume", cfg.HotkeyPauseResume,
		"snapshot", cfg.HotkeySnapshot)

	runStatusLoop(cmd.Context(), mon)

	mon.Stop()
	mon.Trigger().Wait()
	return nil
}

// runStatusLoop logs periodic stats until an interrupt arrives.
func runStatusLoop(ctx context.Context, mon *monitor.Monitor) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			slog.Info("shutting down")
			return
		case <-ticker.C:
			s := mon.Stats()
			if s.Running && !s.Paused {
				slog.Info("status", "fps", s.FPS, "triggers", s.Triggers)
			}
		}
	}
}

func saveSnapshot(writer *snapshot.Writer, mon *monitor.Monitor) {
	res, err := writer.Save(context.Background(), mon.Config().Region)
	switch {
	case err != nil:
		slog.Error("snapshot failed", "error", err)
	case res.Duplicate:
		slog.Info("snapshot skipped, region unchanged")
	default:
		slog.Info("snapshot written", "path", res.Path, "avg_color", res.Average)
	}
}

func newSnapshotCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the configured region once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging()
			cfg, err := loadConfig()
			if err != nil {
				slog.Error("invalid configuration", "path", configPath, "error", err)
				return err
			}

			writer := snapshot.NewWriter(capture.NewScreen(), dir)
			res, err := writer.Save(cmd.Context(), cfg.Region)
			if err != nil {
				slog.Error("snapshot failed", "error", err)
				return err
			}
			slog.Info("snapshot written", "path", res.Path, "avg_color", res.Average)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", defaultSnapshotDir, "directory for region snapshots")
	return cmd
}

func newDisplaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "displays",
		Short: "Print the number of active displays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging()
			slog.Info("active displays", "count", capture.Displays())
			return nil
		},
	}
}
