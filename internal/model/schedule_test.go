package model

import (
	"testing"
	"time"
)

func TestScheduleDayResolve(t *testing.T) {
	tasks := []Task{
		{Title: "write report", TimeCreated: 10},
		{Title: "buy groceries", TimeCreated: 20},
		{Title: "call dentist", TimeCreated: 30},
	}
	day := ScheduleDay{
		Date:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TaskIDs: []int64{30, 10, 30},
	}

	got := day.Resolve(tasks)
	if len(got) != 3 {
		t.Fatalf("resolved %d tasks, want 3", len(got))
	}
	if got[0].Title != "call dentist" || got[1].Title != "write report" || got[2].Title != "call dentist" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestScheduleDayResolveSkipsDeletedTasks(t *testing.T) {
	tasks := []Task{{Title: "only", TimeCreated: 10}}
	day := ScheduleDay{TaskIDs: []int64{99, 10, 98}}

	got := day.Resolve(tasks)
	if len(got) != 1 || got[0].TimeCreated != 10 {
		t.Fatalf("expected only surviving task, got %v", got)
	}
}

func TestScheduleDayResolveEmpty(t *testing.T) {
	day := ScheduleDay{}
	if got := day.Resolve(nil); len(got) != 0 {
		t.Fatalf("expected no tasks, got %v", got)
	}
}
