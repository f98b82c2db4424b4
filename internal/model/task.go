package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidQuadrant = errors.New("model: invalid quadrant")

// Quadrant is the Eisenhower matrix cell a task belongs to. It is a
// classification label only; no ordering between quadrants is implied.
type Quadrant string

const (
	ImportantUrgent       Quadrant = "ImportantUrgent"
	ImportantNotUrgent    Quadrant = "ImportantNotUrgent"
	NotImportantUrgent    Quadrant = "NotImportantUrgent"
	NotImportantNotUrgent Quadrant = "NotImportantNotUrgent"
)

// Quadrants lists all four cells in display order (matrix rows, left to right).
var Quadrants = []Quadrant{
	ImportantUrgent,
	ImportantNotUrgent,
	NotImportantUrgent,
	NotImportantNotUrgent,
}

func (q Quadrant) IsValid() bool {
	switch q {
	case ImportantUrgent, ImportantNotUrgent, NotImportantUrgent, NotImportantNotUrgent:
		return true
	default:
		return false
	}
}

// Label returns the human-readable name used in prompts and panel headers.
func (q Quadrant) Label() string {
	switch q {
	case ImportantUrgent:
		return "Important Urgent"
	case ImportantNotUrgent:
		return "Important Not Urgent"
	case NotImportantUrgent:
		return "Not Important Urgent"
	case NotImportantNotUrgent:
		return "Not Important Not Urgent"
	default:
		return string(q)
	}
}

// Task is a single triaged item. TimeCreated is the creation instant in Unix
// milliseconds and doubles as the task's stable identity: it is assigned once
// and never changes across edits.
type Task struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TimeCreated int64     `json:"timeCreated"`
	Priority    int       `json:"priority"`
	Quadrant    Quadrant  `json:"quadrant"`
	DueDate     time.Time `json:"dueDate"`
}

func (t Task) Validate() error {
	if t.TimeCreated == 0 {
		return errors.New("model: task timeCreated is required")
	}
	if !t.Quadrant.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidQuadrant, t.Quadrant)
	}
	if t.DueDate.IsZero() {
		return errors.New("model: task dueDate is required")
	}
	return nil
}

// FindTask locates a task by its creation timestamp.
func FindTask(tasks []Task, timeCreated int64) (Task, bool) {
	for _, t := range tasks {
		if t.TimeCreated == timeCreated {
			return t, true
		}
	}
	return Task{}, false
}
