package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/eisend/internal/model"
)

// Serialization loses date types: every date field arrives as a string and
// must be rebuilt into a time.Time before any date arithmetic happens. The
// wire types below do that repair during decode. They also accept two legacy
// shapes written by earlier builds: quadrants as 0-3 enum ordinals, and
// schedule days carrying embedded task copies instead of task ids.

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
}

type wireTime struct {
	time.Time
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Unix-millisecond numbers also round-trip.
		var ms int64
		if numErr := json.Unmarshal(data, &ms); numErr == nil {
			w.Time = time.UnixMilli(ms).UTC()
			return nil
		}
		return fmt.Errorf("storage: date is neither string nor number: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		w.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			w.Time = t
			return nil
		}
	}
	return fmt.Errorf("storage: unrecognized date %q", s)
}

type wireQuadrant struct {
	model.Quadrant
}

func (w *wireQuadrant) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		q := model.Quadrant(s)
		if !q.IsValid() {
			q = model.ImportantUrgent
		}
		w.Quadrant = q
		return nil
	}
	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err == nil {
		if ordinal >= 0 && ordinal < len(model.Quadrants) {
			w.Quadrant = model.Quadrants[ordinal]
		} else {
			w.Quadrant = model.ImportantUrgent
		}
		return nil
	}
	w.Quadrant = model.ImportantUrgent
	return nil
}

type wireTask struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	TimeCreated int64        `json:"timeCreated"`
	Priority    int          `json:"priority"`
	Quadrant    wireQuadrant `json:"quadrant"`
	DueDate     wireTime     `json:"dueDate"`
}

func (t wireTask) task() model.Task {
	return model.Task{
		Title:       t.Title,
		Description: t.Description,
		TimeCreated: t.TimeCreated,
		Priority:    t.Priority,
		Quadrant:    t.Quadrant.Quadrant,
		DueDate:     t.DueDate.Time,
	}
}

type wireDay struct {
	Date    wireTime `json:"date"`
	TaskIDs []int64  `json:"taskIds"`
	// Legacy form: task copies serialized by value into the day. Their ids
	// are the only part worth keeping; the canonical task list owns the rest.
	Tasks []wireTask `json:"tasks"`
}

type wireState struct {
	Tasks     []wireTask `json:"tasks"`
	Schedule  []wireDay  `json:"schedule"`
	APIKey    string     `json:"apiKey"`
	Timestamp int64      `json:"timestamp"`
}

func decodeState(raw []byte) (model.PersistedState, error) {
	var wire wireState
	if err := json.Unmarshal(raw, &wire); err != nil {
		return model.PersistedState{}, fmt.Errorf("storage: decode state: %w", err)
	}

	tasks := make([]model.Task, 0, len(wire.Tasks))
	for _, t := range wire.Tasks {
		tasks = append(tasks, t.task())
	}

	schedule := make([]model.ScheduleDay, 0, len(wire.Schedule))
	for _, d := range wire.Schedule {
		day := model.ScheduleDay{Date: d.Date.Time, TaskIDs: d.TaskIDs}
		if len(day.TaskIDs) == 0 && len(d.Tasks) > 0 {
			day.TaskIDs = make([]int64, 0, len(d.Tasks))
			for _, t := range d.Tasks {
				day.TaskIDs = append(day.TaskIDs, t.TimeCreated)
			}
		}
		if day.TaskIDs == nil {
			day.TaskIDs = []int64{}
		}
		schedule = append(schedule, day)
	}

	return model.PersistedState{
		Tasks:     tasks,
		Schedule:  schedule,
		APIKey:    wire.APIKey,
		Timestamp: wire.Timestamp,
	}, nil
}
