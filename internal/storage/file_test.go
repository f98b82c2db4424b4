package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/eisend/internal/model"
)

func testState() model.PersistedState {
	due := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return model.PersistedState{
		Tasks: []model.Task{
			{Title: "write report", Description: "q1 numbers", TimeCreated: 1700000000000, Priority: 1, Quadrant: model.ImportantUrgent, DueDate: due},
			{Title: "water plants", TimeCreated: 1700000000001, Priority: 1, Quadrant: model.NotImportantNotUrgent, DueDate: due.AddDate(0, 0, 2)},
		},
		Schedule: []model.ScheduleDay{
			{Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), TaskIDs: []int64{1700000000000}},
			{Date: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), TaskIDs: []int64{1700000000000, 1700000000001}},
		},
		APIKey:    "sk-or-testkey",
		Timestamp: 1700000005000,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eisend.json")
	fs := NewFileStore(path)

	want := testState()
	require.NoError(t, fs.Save(want))

	got, status, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, LoadOK, status)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}

	// Date fields must come back as real instants, not zero values.
	for _, task := range got.Tasks {
		require.False(t, task.DueDate.IsZero())
	}
	for _, day := range got.Schedule {
		require.False(t, day.Date.IsZero())
	}
}

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eisend.json")
	fs := NewFileStore(path)

	got, status, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, LoadFirstRun, status)
	require.Empty(t, got.Tasks)
	require.Empty(t, got.Schedule)
	require.Empty(t, got.APIKey)

	// The default blob is now on disk; a second load reads it back.
	again, status, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, LoadOK, status)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("second load diverged (-first +second):\n%s", diff)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eisend.json")
	fs := NewFileStore(path)
	require.NoError(t, fs.Save(testState()))

	first, _, err := fs.Load()
	require.NoError(t, err)
	second, _, err := fs.Load()
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("loads diverged (-first +second):\n%s", diff)
	}
}

func TestLoadRecoversFromCorruptBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eisend.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	fs := NewFileStore(path)
	got, status, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, LoadRecovered, status)
	require.Empty(t, got.Tasks)

	// Recovery rewrote the blob with defaults.
	again, status, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, LoadOK, status)
	require.Empty(t, again.Tasks)
}

func TestLoadLegacyBlob(t *testing.T) {
	// Blob written by the original desktop build: quadrants as enum ordinals,
	// dates in millisecond-ISO form, schedule days embedding task copies.
	legacy := `{
		"tasks": [
			{"title": "ship release", "description": "tag and publish", "timeCreated": 1700000000000, "priority": 1, "quadrant": 0, "dueDate": "2026-03-14T09:30:00.000Z"},
			{"title": "clean desk", "description": "", "timeCreated": 1700000000001, "priority": 1, "quadrant": 3, "dueDate": "2026-03-20T12:00:00.000Z"}
		],
		"schedule": [
			{"date": "2026-03-10T00:00:00.000Z", "tasks": [
				{"title": "ship release", "description": "tag and publish", "timeCreated": 1700000000000, "priority": 1, "quadrant": 0, "dueDate": "2026-03-14T09:30:00.000Z"}
			]},
			{"date": "2026-03-11T00:00:00.000Z", "tasks": []}
		],
		"apiKey": "sk-or-old",
		"timestamp": 1700000005000
	}`
	path := filepath.Join(t.TempDir(), "eisend.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	fs := NewFileStore(path)
	got, status, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, LoadOK, status)

	require.Len(t, got.Tasks, 2)
	require.Equal(t, model.ImportantUrgent, got.Tasks[0].Quadrant)
	require.Equal(t, model.NotImportantNotUrgent, got.Tasks[1].Quadrant)
	wantDue := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	require.True(t, got.Tasks[0].DueDate.Equal(wantDue), "dueDate = %v", got.Tasks[0].DueDate)

	// Embedded copies collapse into id references against the canonical list.
	require.Len(t, got.Schedule, 2)
	require.Equal(t, []int64{1700000000000}, got.Schedule[0].TaskIDs)
	require.Empty(t, got.Schedule[1].TaskIDs)
	require.Equal(t, "sk-or-old", got.APIKey)
}

func TestDecodeStateUnknownQuadrantFallsBack(t *testing.T) {
	raw := []byte(`{"tasks": [{"title": "x", "timeCreated": 5, "quadrant": "Sideways", "dueDate": "2026-01-02T03:04:05Z"}]}`)
	got, err := decodeState(raw)
	require.NoError(t, err)
	require.Equal(t, model.ImportantUrgent, got.Tasks[0].Quadrant)
}

func TestDecodeStateRejectsBadDate(t *testing.T) {
	raw := []byte(`{"tasks": [{"title": "x", "timeCreated": 5, "quadrant": "ImportantUrgent", "dueDate": "tomorrow-ish"}]}`)
	_, err := decodeState(raw)
	require.Error(t, err)
}
