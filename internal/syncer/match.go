package syncer

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/habitsync/internal/habitify"
	"git.home.luguber.info/inful/habitsync/internal/todoist"
)

// Pair is one completed task matched to one habit by name.
type Pair struct {
	Task  todoist.Task
	Habit habitify.Habit
}

// MatchResult holds the matched pairs plus the tasks that matched nothing.
type MatchResult struct {
	Pairs     []Pair
	Unmatched []todoist.Task
}

// Match pairs completed tasks with habits by exact case-insensitive name
// equality. No fuzzy or partial matching. When two habits share a name
// case-insensitively, the later one in source order wins; the collision is
// logged since it usually points at duplicate habits in the user's account.
func Match(tasks []todoist.Task, habits []habitify.Habit) MatchResult {
	index := make(map[string]habitify.Habit, len(habits))
	for _, h := range habits {
		key := matchKey(h.Name)
		if prev, ok := index[key]; ok && prev.ID != h.ID {
			slog.Warn("Duplicate habit name, keeping the later entry",
				"name", h.Name, "kept_id", h.ID, "dropped_id", prev.ID)
		}
		index[key] = h
	}

	var result MatchResult
	for _, task := range tasks {
		habit, ok := index[matchKey(task.Content)]
		if !ok {
			result.Unmatched = append(result.Unmatched, task)
			continue
		}
		result.Pairs = append(result.Pairs, Pair{Task: task, Habit: habit})
	}
	return result
}

func matchKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
