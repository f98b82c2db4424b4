// Package schedule turns the task list into a multi-day completion plan by
// asking an external language model for an ordering and parsing its reply.
// Like classification, the parse is total: any reply yields a plan, possibly
// with empty days, never an error.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/eisend/internal/model"
	"github.com/sandeepkv93/eisend/internal/store"
)

// ErrNoAPIKey is returned when plan generation is attempted without a key.
// Unlike classification there is no silent fallback; the caller must tell
// the user.
var ErrNoAPIKey = errors.New("schedule: api key required")

const systemPrompt = "You are a task scheduler. You must determine how many days a given list of tasks will take. Then, you must return a comma seperated list of task numbers in the order they should be completed, broken by newlines for each day that the tasks should span. If you think a task may take more than one day, then include its task number in each day line that it should be worked on. The first line outputted is considered day 1, the next line day 2, and so on for each day that must be taken in order to fulfill all given tasks. All overdue tasks must still be scheduled, but consider importance: an overdue task that is not important should not take precedence over a crucial task that is not yet overdue. Do not assume all tasks take only one day, use the tasks name, description, and due date to make informed decisions about each task. Respond only with the comma seperated list of task numbers broken by newlines, in a computer readable non-markdown format."

const utcDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// ChatCompleter is the slice of the model client the planner needs.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, system, user string) (string, error)
}

// ClientFactory builds a client for the key currently held in the store.
type ClientFactory func(apiKey string) ChatCompleter

type Planner struct {
	store   *store.Store
	clients ClientFactory
	now     func() time.Time
}

func New(st *store.Store, clients ClientFactory) *Planner {
	return &Planner{store: st, clients: clients, now: time.Now}
}

func NewWithClock(st *store.Store, clients ClientFactory, now func() time.Time) *Planner {
	p := New(st, clients)
	p.now = now
	return p
}

// Generate asks the model for an ordering of the current task list, parses it
// into schedule days and replaces the stored schedule wholesale. On any
// failure the existing schedule is left untouched.
func (p *Planner) Generate(ctx context.Context) ([]model.ScheduleDay, error) {
	key := p.store.APIKey()
	if key == "" {
		return nil, ErrNoAPIKey
	}

	tasks := p.store.Tasks()
	now := p.now()

	content, err := p.clients(key).ChatCompletion(ctx, systemPrompt, BuildUserMessage(tasks, now))
	if err != nil {
		return nil, fmt.Errorf("schedule: generate plan: %w", err)
	}

	days := ParsePlan(content, tasks, now)
	if err := p.store.SetSchedule(days); err != nil {
		return nil, err
	}
	return days, nil
}

// BuildUserMessage enumerates every task, one per line, 1-based, preceded by
// the current date. The model answers in terms of these line numbers.
func BuildUserMessage(tasks []model.Task, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s. Here is the list of tasks:\n", now.UTC().Format(utcDateLayout))
	for i, task := range tasks {
		fmt.Fprintf(&b, "%d. %s: %s - Classification: %s - Due: %s\n",
			i+1, task.Title, task.Description, task.Quadrant, task.DueDate.UTC().Format(utcDateLayout))
	}
	return b.String()
}

// ParsePlan maps the model's reply onto schedule days. Line i becomes the day
// dated today+i; within a line, comma-separated tokens are trimmed and parsed
// as 1-based task indices. A token is accepted only when it parses to an
// integer n with 1 <= n <= len(tasks); everything else is dropped without
// affecting its neighbors. Line count alone determines day count, so an empty
// or fully invalid line still produces a day with zero tasks.
func ParsePlan(text string, tasks []model.Task, today time.Time) []model.ScheduleDay {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	lines := strings.Split(normalized, "\n")

	days := make([]model.ScheduleDay, 0, len(lines))
	for i, line := range lines {
		day := model.ScheduleDay{
			Date:    today.Add(time.Duration(i) * 24 * time.Hour),
			TaskIDs: []int64{},
		}
		for _, token := range strings.Split(line, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(token))
			if err != nil || n < 1 || n > len(tasks) {
				continue
			}
			day.TaskIDs = append(day.TaskIDs, tasks[n-1].TimeCreated)
		}
		days = append(days, day)
	}
	return days
}
