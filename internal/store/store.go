// Package store owns the live application state: the task list, the generated
// schedule, the user's API key and the in-flight classification counter. It is
// the single writer; every mutation is immediately followed by a synchronous
// whole-state persistence write, so the blob on disk never lags the process by
// more than one mutation.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/sandeepkv93/eisend/internal/model"
)

var ErrTaskNotFound = errors.New("store: task not found")

// Persister is the durability boundary. Save receives the entire state on
// every call; there is no partial update.
type Persister interface {
	Save(model.PersistedState) error
}

type Store struct {
	mu          sync.Mutex
	persister   Persister
	tasks       []model.Task
	schedule    []model.ScheduleDay
	apiKey      string
	classifying int
	now         func() time.Time
}

func New(p Persister) *Store {
	return NewWithClock(p, time.Now)
}

func NewWithClock(p Persister, now func() time.Time) *Store {
	return &Store{
		persister: p,
		tasks:     []model.Task{},
		schedule:  []model.ScheduleDay{},
		now:       now,
	}
}

// Hydrate seeds the store from a freshly loaded state through the normal
// mutators, so the blob is rewritten in the current format. The extra write
// on startup is accepted.
func (s *Store) Hydrate(state model.PersistedState) error {
	if err := s.SetAPIKey(state.APIKey); err != nil {
		return err
	}
	if err := s.SetTasks(state.Tasks); err != nil {
		return err
	}
	return s.SetSchedule(state.Schedule)
}

func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

func (s *Store) Schedule() []model.ScheduleDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSchedule(s.schedule)
}

func (s *Store) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

func (s *Store) ClassifyingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classifying
}

func (s *Store) SetTasks(tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = cloneTasks(tasks)
	return s.persistLocked()
}

func (s *Store) SetSchedule(schedule []model.ScheduleDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = cloneSchedule(schedule)
	return s.persistLocked()
}

func (s *Store) SetAPIKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
	return s.persistLocked()
}

func (s *Store) AddTask(t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
	return s.persistLocked()
}

// UpdateTask replaces the task with the same TimeCreated. Identity never
// changes across edits.
func (s *Store) UpdateTask(t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].TimeCreated == t.TimeCreated {
			s.tasks[i] = t
			return s.persistLocked()
		}
	}
	return ErrTaskNotFound
}

// DeleteTask removes the task identified by timeCreated and drops its id from
// every schedule day, keeping schedule views consistent with the task list.
func (s *Store) DeleteTask(timeCreated int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.tasks {
		if s.tasks[i].TimeCreated == timeCreated {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	for i := range s.schedule {
		kept := s.schedule[i].TaskIDs[:0]
		for _, id := range s.schedule[i].TaskIDs {
			if id != timeCreated {
				kept = append(kept, id)
			}
		}
		s.schedule[i].TaskIDs = kept
	}
	return s.persistLocked()
}

// BeginClassification increments the in-flight counter and returns the
// matching release. Release is safe to call more than once; only the first
// call decrements, so a deferred release cannot drive the counter negative.
// The counter is ephemeral and never persisted.
func (s *Store) BeginClassification() (release func()) {
	s.mu.Lock()
	s.classifying++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.classifying--
			s.mu.Unlock()
		})
	}
}

// Snapshot copies the durable fields with a fresh write timestamp.
func (s *Store) Snapshot() model.PersistedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.PersistedState {
	return model.PersistedState{
		Tasks:     cloneTasks(s.tasks),
		Schedule:  cloneSchedule(s.schedule),
		APIKey:    s.apiKey,
		Timestamp: s.now().UnixMilli(),
	}
}

func (s *Store) persistLocked() error {
	return s.persister.Save(s.snapshotLocked())
}

func cloneTasks(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	copy(out, in)
	return out
}

func cloneSchedule(in []model.ScheduleDay) []model.ScheduleDay {
	out := make([]model.ScheduleDay, len(in))
	for i, d := range in {
		ids := make([]int64, len(d.TaskIDs))
		copy(ids, d.TaskIDs)
		out[i] = model.ScheduleDay{Date: d.Date, TaskIDs: ids}
	}
	return out
}
