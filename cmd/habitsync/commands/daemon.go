package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/habitsync/internal/config"
	"git.home.luguber.info/inful/habitsync/internal/daemon"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Interval time.Duration `help:"Override the sync interval from the config file"`
	Listen   string        `help:"Override the health/metrics listen address"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if d.Interval > 0 {
		cfg.Daemon.Interval = config.Duration(d.Interval)
	}
	if d.Listen != "" {
		cfg.Daemon.Listen = d.Listen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return RunDaemon(cfg, root.Config)
}

// RunDaemon starts the daemon and blocks until a shutdown signal arrives.
func RunDaemon(cfg *config.Config, configPath string) error {
	slog.Info("Starting daemon mode", "interval", cfg.Daemon.Interval.Std().String())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg, configPath)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- d.Start(ctx)
	}()

	slog.Info("Daemon started, waiting for shutdown signal...")

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("daemon error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping daemon...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	slog.Info("Daemon stopped successfully")
	return nil
}
