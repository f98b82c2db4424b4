package model

import "time"

// ScheduleDay is one day of a generated plan. Tasks are referenced by their
// creation timestamp rather than embedded, so a day never drifts from the
// canonical task list: deleting a task drops it from every day it appears on.
// TaskIDs order is meaningful; it is the suggested completion order.
type ScheduleDay struct {
	Date    time.Time `json:"date"`
	TaskIDs []int64   `json:"taskIds"`
}

// Resolve maps the day's task ids onto the canonical task list, skipping ids
// that no longer exist.
func (d ScheduleDay) Resolve(tasks []Task) []Task {
	out := make([]Task, 0, len(d.TaskIDs))
	for _, id := range d.TaskIDs {
		if t, ok := FindTask(tasks, id); ok {
			out = append(out, t)
		}
	}
	return out
}

// PersistedState is the entire durable state of the application, serialized
// as a single JSON blob. Timestamp is the write time in Unix milliseconds and
// is informational only. APIKey is stored in plaintext; see DESIGN.md for the
// accepted trade-off.
type PersistedState struct {
	Tasks     []Task        `json:"tasks"`
	Schedule  []ScheduleDay `json:"schedule"`
	APIKey    string        `json:"apiKey"`
	Timestamp int64         `json:"timestamp"`
}
