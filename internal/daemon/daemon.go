// Package daemon runs the sync pipeline on a fixed interval with a small
// HTTP listener for health and Prometheus metrics, and reloads credentials
// when the configuration file changes.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/habitsync/internal/config"
	"git.home.luguber.info/inful/habitsync/internal/habitify"
	"git.home.luguber.info/inful/habitsync/internal/metrics"
	"git.home.luguber.info/inful/habitsync/internal/state"
	"git.home.luguber.info/inful/habitsync/internal/syncer"
	"git.home.luguber.info/inful/habitsync/internal/todoist"
)

// Daemon schedules periodic sync runs. Ticks never overlap: the scheduler
// runs the job in singleton mode.
type Daemon struct {
	mu         sync.RWMutex
	cfg        *config.Config
	configPath string

	scheduler  gocron.Scheduler
	watcher    *ConfigWatcher
	httpServer *http.Server
	registry   *prom.Registry
	recorder   *metrics.PrometheusRecorder

	startTime  time.Time
	lastReport *syncer.Report
}

// New creates a daemon for the given validated configuration. configPath is
// watched for changes; pass the empty string to disable reloading.
func New(cfg *config.Config, configPath string) (*Daemon, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	registry := prom.NewRegistry()
	return &Daemon{
		cfg:        cfg,
		configPath: configPath,
		scheduler:  scheduler,
		registry:   registry,
		recorder:   metrics.NewPrometheusRecorder(registry),
	}, nil
}

// Start schedules the sync job, starts the HTTP listener and config watcher,
// and blocks until ctx is canceled or the listener fails.
func (d *Daemon) Start(ctx context.Context) error {
	d.startTime = time.Now()
	interval := d.currentConfig().Daemon.Interval.Std()

	_, err := d.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { d.runOnce(ctx) }),
		gocron.WithName("sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}

	if d.configPath != "" {
		watcher, err := NewConfigWatcher(d.configPath, d.reloadConfig)
		if err != nil {
			slog.Warn("Config watching disabled", "error", err)
		} else {
			d.watcher = watcher
			if err := d.watcher.Start(ctx); err != nil {
				slog.Warn("Config watching disabled", "error", err)
				d.watcher = nil
			}
		}
	}

	d.scheduler.Start()
	slog.Info("Sync scheduler started", "interval", interval.String())

	listenErr := make(chan error, 1)
	d.startHTTPServer(listenErr)

	select {
	case <-ctx.Done():
		return nil
	case err := <-listenErr:
		return err
	}
}

// Stop shuts everything down gracefully.
func (d *Daemon) Stop(ctx context.Context) error {
	slog.Info("Stopping daemon")

	var errs []error
	if err := d.scheduler.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
	}
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("config watcher stop: %w", err))
		}
	}
	if d.httpServer != nil {
		if err := d.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// runOnce executes one sync pass with a syncer built from the current
// configuration, so a credential reload takes effect on the next tick.
func (d *Daemon) runOnce(ctx context.Context) {
	cfg := d.currentConfig()
	s := syncer.New(cfg,
		todoist.NewClient(cfg.Todoist.BaseURL, cfg.Todoist.APIToken, nil),
		habitify.NewClient(cfg.Habitify.BaseURL, cfg.Habitify.APIKey, nil),
		state.NewStore(cfg.Sync.StateFile),
		d.recorder,
	)
	report := s.Run(ctx)

	d.mu.Lock()
	d.lastReport = &report
	d.mu.Unlock()
}

func (d *Daemon) currentConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// reloadConfig is invoked by the config watcher. An invalid replacement
// config is logged and ignored; the daemon keeps running on the old one.
func (d *Daemon) reloadConfig() {
	cfg, err := config.Load(d.configPath)
	if err != nil {
		slog.Error("Config reload failed, keeping previous configuration", "error", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Reloaded config is invalid, keeping previous configuration", "error", err)
		return
	}

	d.mu.Lock()
	if cfg.Daemon.Interval != d.cfg.Daemon.Interval {
		slog.Warn("Sync interval change requires a restart to take effect",
			"current", d.cfg.Daemon.Interval.Std().String(),
			"requested", cfg.Daemon.Interval.Std().String())
		cfg.Daemon.Interval = d.cfg.Daemon.Interval
	}
	d.cfg = cfg
	d.mu.Unlock()

	slog.Info("Configuration reloaded", "path", d.configPath)
}
