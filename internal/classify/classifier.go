// Package classify resolves a task to an Eisenhower quadrant through an
// external language model. Parsing of the model's reply is total: any text,
// including garbage, resolves to a quadrant and never to an error.
package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/eisend/internal/model"
	"github.com/sandeepkv93/eisend/internal/store"
)

// DefaultQuadrant is returned when no API key is configured and when the
// model's reply matches none of the four category patterns.
const DefaultQuadrant = model.ImportantUrgent

const systemPrompt = "You are an Eisenhower Matrix classifier. You will classify a given task into one of four categories: Important Urgent, Important Not Urgent, Not Important Urgent, Not Important Not Urgent. Respond only with the category name in a computer readable non-markdown format."

const utcDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// ChatCompleter is the slice of the model client the classifier needs.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, system, user string) (string, error)
}

// ClientFactory builds a client for the key currently held in the store. The
// key is read per call because the user can change it at any time.
type ClientFactory func(apiKey string) ChatCompleter

type Classifier struct {
	store   *store.Store
	clients ClientFactory
	now     func() time.Time
}

func New(st *store.Store, clients ClientFactory) *Classifier {
	return &Classifier{store: st, clients: clients, now: time.Now}
}

func NewWithClock(st *store.Store, clients ClientFactory, now func() time.Time) *Classifier {
	c := New(st, clients)
	c.now = now
	return c
}

// Classify returns the quadrant for a task. With no API key it returns
// DefaultQuadrant immediately and never contacts the service. Otherwise it
// holds the in-flight counter for the duration of the call; the deferred
// release guarantees the counter drops on every exit path, including
// transport failures. A transport failure still yields DefaultQuadrant
// alongside the error so callers can both render and report.
func (c *Classifier) Classify(ctx context.Context, task model.Task) (model.Quadrant, error) {
	key := c.store.APIKey()
	if key == "" {
		return DefaultQuadrant, nil
	}

	release := c.store.BeginClassification()
	defer release()

	content, err := c.clients(key).ChatCompletion(ctx, systemPrompt, c.userMessage(task))
	if err != nil {
		return DefaultQuadrant, fmt.Errorf("classify %q: %w", task.Title, err)
	}

	quadrant, _ := ParseQuadrant(content)
	return quadrant, nil
}

func (c *Classifier) userMessage(task model.Task) string {
	return fmt.Sprintf("Classify the following task: %s. Here is a more detailed description: %q. It is due on %s. The current date is %s.",
		task.Title,
		task.Description,
		task.DueDate.UTC().Format(utcDateLayout),
		c.now().UTC().Format(utcDateLayout),
	)
}

// ParseQuadrant maps free text onto a quadrant. Matching is case-insensitive
// substring containment, tested in this order; the order matters because
// "not important" would otherwise be swallowed by the plain "important" test.
// The second return reports whether any pattern matched; when none did, the
// quadrant is DefaultQuadrant.
func ParseQuadrant(raw string) (model.Quadrant, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	notImportant := strings.Contains(s, "not important")
	notUrgent := strings.Contains(s, "not urgent")
	important := strings.Contains(s, "important")
	urgent := strings.Contains(s, "urgent")

	switch {
	case notImportant && notUrgent:
		return model.NotImportantNotUrgent, true
	case important && notUrgent:
		return model.ImportantNotUrgent, true
	case notImportant && urgent:
		return model.NotImportantUrgent, true
	case important && urgent:
		return model.ImportantUrgent, true
	default:
		return DefaultQuadrant, false
	}
}
