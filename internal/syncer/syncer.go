// Package syncer runs the one-way task-to-habit synchronization pipeline:
// load watermark, fetch completed tasks, fetch habits, match by name, write
// completion logs, commit the watermark. Every remote failure degrades to
// "no data" and the watermark still advances, so a missed log entry is never
// retried on a later run (at-most-once delivery per sync window).
package syncer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/habitsync/internal/config"
	"git.home.luguber.info/inful/habitsync/internal/habitify"
	"git.home.luguber.info/inful/habitsync/internal/metrics"
	"git.home.luguber.info/inful/habitsync/internal/todoist"
)

// TaskSource fetches completed tasks within a time window.
type TaskSource interface {
	CompletedTasks(ctx context.Context, since, until time.Time) ([]todoist.Task, error)
}

// HabitService lists habits and accepts completion logs.
type HabitService interface {
	Habits(ctx context.Context) ([]habitify.Habit, error)
	CreateLog(ctx context.Context, habitID string, entry habitify.Log) error
}

// WatermarkStore persists the last-sync timestamp.
type WatermarkStore interface {
	Load() (time.Time, bool)
	Save(ts time.Time) error
}

// Syncer wires the pipeline together. Construct with New and run with Run;
// a Syncer is not safe for concurrent runs and is not meant to be shared.
type Syncer struct {
	cfg      *config.Config
	tasks    TaskSource
	habits   HabitService
	store    WatermarkStore
	recorder metrics.Recorder

	// Injectable for tests.
	now      func() time.Time
	location *time.Location
}

// Option customizes a Syncer.
type Option func(*Syncer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// WithLocation overrides the zone used to render target dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Syncer) { s.location = loc }
}

// New creates a Syncer. A nil recorder falls back to the noop recorder.
func New(cfg *config.Config, tasks TaskSource, habits HabitService, store WatermarkStore, recorder metrics.Recorder, opts ...Option) *Syncer {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	s := &Syncer{
		cfg:      cfg,
		tasks:    tasks,
		habits:   habits,
		store:    store,
		recorder: recorder,
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one sync pass. It never returns an error: every failure past
// the configuration precondition is recovered locally and surfaced through
// logs and the report. The watermark commit is unconditional.
func (s *Syncer) Run(ctx context.Context) Report {
	start := s.now()
	report := Report{
		RunID:     uuid.NewString(),
		StartedAt: start,
		WindowEnd: start,
	}
	log := slog.With("run_id", report.RunID)

	since, ok := s.store.Load()
	if !ok {
		since = start.Add(-s.cfg.Sync.BootstrapWindow.Std())
		report.Bootstrap = true
		log.Info("No previous sync state, using bootstrap window",
			"window", s.cfg.Sync.BootstrapWindow.Std().String())
	} else {
		log.Info("Resuming from last sync", "last_sync", since)
	}
	report.WindowStart = since

	tasks := s.fetchTasks(ctx, log, since, start)
	report.TasksFound = len(tasks)
	s.recorder.AddTasksFound(len(tasks))

	if len(tasks) == 0 {
		log.Info("No completed tasks found in this time range")
		s.finish(log, &report, metrics.OutcomeEmpty)
		return report
	}
	log.Info("Found completed tasks", "count", len(tasks))

	habits := s.fetchHabits(ctx, log)
	report.HabitsFound = len(habits)
	if len(habits) == 0 {
		log.Info("No habits found, nothing to sync against")
		s.finish(log, &report, metrics.OutcomeEmpty)
		return report
	}
	log.Info("Found habits", "count", len(habits))

	matched := Match(tasks, habits)
	report.Matched = len(matched.Pairs)
	report.Unmatched = len(matched.Unmatched)
	s.recorder.AddTasksMatched(len(matched.Pairs))
	for _, task := range matched.Unmatched {
		log.Info("Skipping task with no matching habit", "task", task.Content)
	}

	s.writeLogs(ctx, log, matched.Pairs, &report)

	outcome := metrics.OutcomeSuccess
	if report.Failed > 0 || report.SkippedDate > 0 {
		outcome = metrics.OutcomePartial
	}
	log.Info("Sync complete", "summary", report.Summary(),
		"matched", report.Matched, "failed", report.Failed, "unmatched", report.Unmatched)
	s.finish(log, &report, outcome)
	return report
}

// fetchTasks degrades any source failure to an empty window.
func (s *Syncer) fetchTasks(ctx context.Context, log *slog.Logger, since, until time.Time) []todoist.Task {
	log.Info("Fetching completed tasks",
		"since", since.Format(todoist.WindowLayout),
		"until", until.Format(todoist.WindowLayout))
	tasks, err := s.tasks.CompletedTasks(ctx, since, until)
	if err != nil {
		log.Error("Fetching completed tasks failed, continuing with empty window", "error", err)
		return nil
	}
	return tasks
}

// fetchHabits degrades any target failure to an empty habit list.
func (s *Syncer) fetchHabits(ctx context.Context, log *slog.Logger) []habitify.Habit {
	habits, err := s.habits.Habits(ctx)
	if err != nil {
		log.Error("Fetching habits failed, skipping sync for this window", "error", err)
		return nil
	}
	return habits
}

// writeLogs submits one completion log per matched pair. Failures are
// isolated: a bad timestamp or a rejected write never aborts the rest.
func (s *Syncer) writeLogs(ctx context.Context, log *slog.Logger, pairs []Pair, report *Report) {
	for _, pair := range pairs {
		targetDate, err := TargetDate(pair.Task.CompletedAt, s.location)
		if err != nil {
			report.SkippedDate++
			log.Error("Skipping task with malformed completion date",
				"task", pair.Task.Content, "completed_at", pair.Task.CompletedAt, "error", err)
			continue
		}

		log.Info("Syncing task to habit",
			"task", pair.Task.Content, "habit_id", pair.Habit.ID, "target_date", targetDate)

		entry := habitify.Log{
			TargetDate: targetDate,
			Value:      habitify.DefaultLogValue,
			UnitType:   habitify.DefaultLogUnitType,
		}
		if err := s.habits.CreateLog(ctx, pair.Habit.ID, entry); err != nil {
			report.Failed++
			s.recorder.IncLogResult(false)
			log.Error("Failed to log habit completion",
				"task", pair.Task.Content, "habit_id", pair.Habit.ID, "error", err)
			continue
		}
		report.Synced++
		s.recorder.IncLogResult(true)
	}
}

// finish commits the watermark and records run metrics. The watermark is the
// run start time, so the next window begins exactly where this one ended;
// it only ever advances, never rolls back.
func (s *Syncer) finish(log *slog.Logger, report *Report, outcome metrics.OutcomeLabel) {
	if err := s.store.Save(report.WindowEnd); err != nil {
		s.recorder.IncStateSaveFailure()
		log.Warn("Could not save sync state", "error", err)
	}
	report.FinishedAt = s.now()
	s.recorder.ObserveRunDuration(report.Duration())
	s.recorder.IncRunOutcome(outcome)
}
