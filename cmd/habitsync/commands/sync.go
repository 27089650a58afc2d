package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/habitsync/internal/config"
	"git.home.luguber.info/inful/habitsync/internal/habitify"
	"git.home.luguber.info/inful/habitsync/internal/metrics"
	"git.home.luguber.info/inful/habitsync/internal/state"
	"git.home.luguber.info/inful/habitsync/internal/syncer"
	"git.home.luguber.info/inful/habitsync/internal/todoist"
)

// SyncCmd implements the 'sync' command: one run, exit zero unless the
// configuration is invalid. Per-task failures are reported textually only.
type SyncCmd struct {
	StateFile string `help:"Override the sync state file path"`
}

func (s *SyncCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if s.StateFile != "" {
		cfg.Sync.StateFile = s.StateFile
	}
	// Credentials are the one fatal precondition, checked before any
	// network or state I/O.
	if err := cfg.Validate(); err != nil {
		return err
	}

	sy := syncer.New(cfg,
		todoist.NewClient(cfg.Todoist.BaseURL, cfg.Todoist.APIToken, nil),
		habitify.NewClient(cfg.Habitify.BaseURL, cfg.Habitify.APIKey, nil),
		state.NewStore(cfg.Sync.StateFile),
		metrics.NoopRecorder{},
	)

	report := sy.Run(context.Background())
	slog.Info("Run finished", "run_id", report.RunID, "summary", report.Summary())
	return nil
}
