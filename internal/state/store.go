// Package state persists the sync watermark: a single timestamp marking the
// end of the last successful sync window.
package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	syncerrors "git.home.luguber.info/inful/habitsync/internal/errors"
)

// syncState is the on-disk shape: {"last_sync": "<RFC 3339 timestamp>"}.
type syncState struct {
	LastSync string `json:"last_sync"`
}

// Accepted watermark layouts. The original state files carried local-naive
// timestamps without an offset, so those still parse.
var watermarkLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Store reads and writes the watermark file. There is exactly one writer:
// the orchestration flow of a single process instance.
type Store struct {
	path string
}

// NewStore creates a store bound to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the state file location.
func (s *Store) Path() string { return s.path }

// Load returns the previously saved watermark. A missing, unreadable, or
// corrupt file is never fatal; all three report ok=false.
func (s *Store) Load() (time.Time, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Could not read sync state file", "path", s.path, "error", err)
		}
		return time.Time{}, false
	}

	var doc syncState
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("Sync state file is corrupt, treating as absent", "path", s.path, "error", err)
		return time.Time{}, false
	}

	ts, ok := parseWatermark(doc.LastSync)
	if !ok {
		slog.Warn("Sync state timestamp is malformed, treating as absent", "path", s.path, "value", doc.LastSync)
		return time.Time{}, false
	}
	return ts, true
}

// Save overwrites the state file with the given watermark. The caller treats
// a failure as a warning: the run's other effects already happened and are
// not rolled back.
func (s *Store) Save(ts time.Time) error {
	data, err := json.Marshal(syncState{LastSync: ts.Format(time.RFC3339)})
	if err != nil {
		return syncerrors.StateError("failed to encode sync state").WithCause(err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return syncerrors.StateError("failed to write sync state file").
			WithCause(err).
			WithContext("path", s.path)
	}
	return nil
}

func parseWatermark(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range watermarkLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
