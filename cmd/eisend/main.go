package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/sandeepkv93/eisend/internal/classify"
	"github.com/sandeepkv93/eisend/internal/openrouter"
	"github.com/sandeepkv93/eisend/internal/schedule"
	"github.com/sandeepkv93/eisend/internal/storage"
	"github.com/sandeepkv93/eisend/internal/store"
	"github.com/sandeepkv93/eisend/internal/update"
)

func main() {
	cfg := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())

	statePath := pflag.StringP("state", "s", cfg.StatePath, "path to the state file")
	modelName := pflag.StringP("model", "m", cfg.Model, "OpenRouter model id")
	timeoutSeconds := pflag.Int("request-timeout", cfg.RequestTimeoutSeconds, "AI request timeout in seconds")
	pflag.Parse()

	files := storage.NewFileStore(*statePath)
	state, status, err := files.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "eisend failed: load state: %v\n", err)
		os.Exit(1)
	}

	st := store.New(files)
	if err := st.Hydrate(state); err != nil {
		fmt.Fprintf(os.Stderr, "eisend failed: persist state: %v\n", err)
		os.Exit(1)
	}

	clients := func(apiKey string) *openrouter.Client {
		return openrouter.New(apiKey,
			openrouter.WithModel(*modelName),
			openrouter.WithTimeout(time.Duration(*timeoutSeconds)*time.Second),
		)
	}
	classifier := classify.New(st, func(apiKey string) classify.ChatCompleter { return clients(apiKey) })
	planner := schedule.New(st, func(apiKey string) schedule.ChatCompleter { return clients(apiKey) })

	m := update.NewModel(st, classifier, planner)
	if status == storage.LoadRecovered {
		m = m.WithStatus("state file was unreadable; starting from a fresh state", true)
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "eisend failed: %v\n", err)
		os.Exit(1)
	}
}
