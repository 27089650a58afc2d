package syncer

import (
	"time"

	syncerrors "git.home.luguber.info/inful/habitsync/internal/errors"
)

// targetDateLayout renders an explicit signed UTC offset with a colon
// separator (e.g. 2021-05-21T07:00:00+07:00), which is the only offset form
// the habit service accepts. The layout produces it by construction; no
// string surgery on a formatted offset.
const targetDateLayout = "2006-01-02T15:04:05-07:00"

// TargetDate converts a task's UTC completion timestamp into the habit
// service's target-date format, rendered in loc (the local zone when nil).
func TargetDate(completedAt string, loc *time.Location) (string, error) {
	ts, err := time.Parse(time.RFC3339, completedAt)
	if err != nil {
		return "", syncerrors.New(syncerrors.CategoryValidation, syncerrors.SeverityError, "malformed completion timestamp").
			WithCause(err).
			WithContext("value", completedAt)
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format(targetDateLayout), nil
}
