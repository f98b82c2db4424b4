package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/eisend/internal/model"
	"github.com/sandeepkv93/eisend/internal/store"
)

type nullPersister struct{}

func (nullPersister) Save(model.PersistedState) error { return nil }

type fakeCompleter struct {
	reply string
	err   error
	calls int
	sys   string
	user  string
}

func (f *fakeCompleter) ChatCompletion(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.sys = system
	f.user = user
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
}

func newClassifier(t *testing.T, apiKey string, completer *fakeCompleter) (*Classifier, *store.Store) {
	t.Helper()
	st := store.New(nullPersister{})
	require.NoError(t, st.SetAPIKey(apiKey))
	c := NewWithClock(st, func(key string) ChatCompleter {
		require.Equal(t, apiKey, key)
		return completer
	}, fixedNow)
	return c, st
}

func sampleTask() model.Task {
	return model.Task{
		Title:       "renew passport",
		Description: "expires next month",
		TimeCreated: 1700000000000,
		Quadrant:    model.ImportantUrgent,
		DueDate:     time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseQuadrant(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    model.Quadrant
		matched bool
	}{
		{"exact nInU", "Not Important Not Urgent", model.NotImportantNotUrgent, true},
		{"exact iNu", "Important Not Urgent", model.ImportantNotUrgent, true},
		{"exact nIu", "Not Important Urgent", model.NotImportantUrgent, true},
		{"exact iu", "Important Urgent", model.ImportantUrgent, true},
		{"lowercase", "not important not urgent", model.NotImportantNotUrgent, true},
		{"surrounded", "The task is clearly Not Important and also Not Urgent.", model.NotImportantNotUrgent, true},
		{"adversarial both negations", "important? no: not important. urgent? no: not urgent", model.NotImportantNotUrgent, true},
		{"important but not urgent prose", "This is important, though not urgent right now", model.ImportantNotUrgent, true},
		{"not important but urgent", "not important, but definitely urgent", model.NotImportantUrgent, true},
		{"plain important urgent prose", "looks important and quite urgent to me", model.ImportantUrgent, true},
		{"whitespace and case", "  NOT IMPORTANT URGENT \n", model.NotImportantUrgent, true},
		{"no match", "quadrant four, probably", DefaultQuadrant, false},
		{"empty", "", DefaultQuadrant, false},
		{"urgent only", "urgent!!!", DefaultQuadrant, false},
		{"important only", "very important", DefaultQuadrant, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, matched := ParseQuadrant(tc.input)
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.matched, matched)
		})
	}
}

func TestClassifyWithoutKeyNeverCallsService(t *testing.T) {
	completer := &fakeCompleter{reply: "Not Important Not Urgent"}
	c, st := newClassifier(t, "", completer)

	got, err := c.Classify(context.Background(), sampleTask())
	require.NoError(t, err)
	require.Equal(t, DefaultQuadrant, got)
	require.Zero(t, completer.calls)
	require.Zero(t, st.ClassifyingCount())
}

func TestClassifyParsesReply(t *testing.T) {
	completer := &fakeCompleter{reply: "Not Important Urgent"}
	c, _ := newClassifier(t, "sk-or-test", completer)

	got, err := c.Classify(context.Background(), sampleTask())
	require.NoError(t, err)
	require.Equal(t, model.NotImportantUrgent, got)
	require.Equal(t, 1, completer.calls)
}

func TestClassifyUnmatchedReplyFallsBack(t *testing.T) {
	completer := &fakeCompleter{reply: "I would place this in the top-left cell"}
	c, _ := newClassifier(t, "sk-or-test", completer)

	got, err := c.Classify(context.Background(), sampleTask())
	require.NoError(t, err)
	require.Equal(t, DefaultQuadrant, got)
}

func TestClassifyReleasesCounterOnFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection reset")}
	c, st := newClassifier(t, "sk-or-test", completer)

	got, err := c.Classify(context.Background(), sampleTask())
	require.Error(t, err)
	require.Equal(t, DefaultQuadrant, got)
	require.Zero(t, st.ClassifyingCount(), "counter must be released on the failure path")
}

func TestClassifyCounterReturnsToBaseline(t *testing.T) {
	completer := &fakeCompleter{reply: "Important Not Urgent"}
	c, st := newClassifier(t, "sk-or-test", completer)

	for i := 0; i < 5; i++ {
		_, err := c.Classify(context.Background(), sampleTask())
		require.NoError(t, err)
	}
	require.Zero(t, st.ClassifyingCount())
}

func TestClassifyPromptContents(t *testing.T) {
	completer := &fakeCompleter{reply: "Important Urgent"}
	c, _ := newClassifier(t, "sk-or-test", completer)

	_, err := c.Classify(context.Background(), sampleTask())
	require.NoError(t, err)

	require.Contains(t, completer.sys, "Eisenhower Matrix classifier")
	require.Contains(t, completer.sys, "Respond only with the category name")
	require.Equal(t, `Classify the following task: renew passport. Here is a more detailed description: "expires next month". It is due on Tue, 15 Sep 2026 12:00:00 GMT. The current date is Sat, 29 Aug 2026 10:00:00 GMT.`, completer.user)
}
