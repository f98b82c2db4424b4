package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/sandeepkv93/eisend/internal/model"
)

// LoadStatus reports how Load obtained the state it returned.
type LoadStatus string

const (
	// LoadOK means an existing blob was read and rehydrated.
	LoadOK LoadStatus = "ok"
	// LoadFirstRun means no blob existed; defaults were written.
	LoadFirstRun LoadStatus = "first_run"
	// LoadRecovered means the blob was unreadable; defaults were written
	// over it. Callers should surface a warning.
	LoadRecovered LoadStatus = "recovered"
)

// FileStore persists the whole application state as one JSON blob. Writes are
// atomic (write-to-temp plus rename) so a crash mid-write never leaves a torn
// blob; the previous state survives instead. Last writer wins, there is no
// conflict detection.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Save serializes the full state and replaces the blob on disk.
func (s *FileStore) Save(state model.PersistedState) error {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage: create state dir: %w", err)
		}
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(append(payload, '\n'))); err != nil {
		return fmt.Errorf("storage: write state: %w", err)
	}
	return nil
}

// Load reads and rehydrates the blob. A missing blob is first run: defaults
// are written and returned. An unparseable blob is recovered the same way
// rather than aborting startup.
func (s *FileStore) Load() (model.PersistedState, LoadStatus, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			state := defaultState()
			if saveErr := s.Save(state); saveErr != nil {
				return model.PersistedState{}, LoadFirstRun, saveErr
			}
			return state, LoadFirstRun, nil
		}
		return model.PersistedState{}, LoadOK, fmt.Errorf("storage: read state: %w", err)
	}

	state, err := decodeState(raw)
	if err != nil {
		state = defaultState()
		if saveErr := s.Save(state); saveErr != nil {
			return model.PersistedState{}, LoadRecovered, saveErr
		}
		return state, LoadRecovered, nil
	}
	return state, LoadOK, nil
}

func defaultState() model.PersistedState {
	return model.PersistedState{
		Tasks:     []model.Task{},
		Schedule:  []model.ScheduleDay{},
		Timestamp: time.Now().UnixMilli(),
	}
}
