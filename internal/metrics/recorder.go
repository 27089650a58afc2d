package metrics

import "time"

// OutcomeLabel enumerates run outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success" // every matched task logged
	OutcomePartial OutcomeLabel = "partial" // some per-task failures
	OutcomeEmpty   OutcomeLabel = "empty"   // nothing to sync in the window
)

// Recorder defines observability hooks for sync runs. Implementations may
// forward to Prometheus, OpenTelemetry, etc. The one-shot CLI injects the
// NoopRecorder; the daemon wires a PrometheusRecorder.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome OutcomeLabel)
	AddTasksFound(n int)
	AddTasksMatched(n int)
	IncLogResult(success bool)
	IncStateSaveFailure()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(time.Duration) {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)       {}
func (NoopRecorder) AddTasksFound(int)                {}
func (NoopRecorder) AddTasksMatched(int)              {}
func (NoopRecorder) IncLogResult(bool)                {}
func (NoopRecorder) IncStateSaveFailure()             {}
