package syncer

import (
	"fmt"
	"time"
)

// Report summarizes one sync run.
type Report struct {
	RunID       string    `json:"run_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Bootstrap   bool      `json:"bootstrap"` // no prior state, default window applied

	TasksFound  int `json:"tasks_found"`
	HabitsFound int `json:"habits_found"`
	Matched     int `json:"matched"`
	Synced      int `json:"synced"`
	Failed      int `json:"failed"`
	Unmatched   int `json:"unmatched"`
	SkippedDate int `json:"skipped_bad_date"` // tasks dropped for unparseable timestamps

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Summary renders the final tally, e.g. "2/3 synced".
func (r Report) Summary() string {
	return fmt.Sprintf("%d/%d synced", r.Synced, r.TasksFound)
}

// Duration returns the wall-clock run time.
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
