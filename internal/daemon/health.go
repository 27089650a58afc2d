package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/habitsync/internal/metrics"
	"git.home.luguber.info/inful/habitsync/internal/syncer"
	"git.home.luguber.info/inful/habitsync/internal/version"
)

// HealthStatus represents the overall health of the daemon.
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
)

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status    HealthStatus   `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Uptime    string         `json:"uptime"`
	Version   string         `json:"version"`
	LastRun   *syncer.Report `json:"last_run,omitempty"`
}

// Health reports the daemon's current health. A run with per-task failures
// degrades the status until a clean run replaces it.
func (d *Daemon) Health() *HealthResponse {
	d.mu.RLock()
	last := d.lastReport
	d.mu.RUnlock()

	status := HealthStatusHealthy
	if last != nil && last.Failed > 0 {
		status = HealthStatusDegraded
	}

	return &HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Uptime:    time.Since(d.startTime).String(),
		Version:   version.Version,
		LastRun:   last,
	}
}

func (d *Daemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(d.Health()); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// startHTTPServer serves /healthz and /metrics on the configured address.
func (d *Daemon) startHTTPServer(listenErr chan<- error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", d.handleHealth)
	mux.Handle("/metrics", metrics.HTTPHandler(d.registry))

	d.httpServer = &http.Server{
		Addr:              d.currentConfig().Daemon.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Daemon HTTP listener started", "addr", d.httpServer.Addr)
		if err := d.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()
}
