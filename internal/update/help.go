package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/eisend/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

const helpIntro = `# eisend

Triage tasks into the Eisenhower matrix, then let a model order them into a
multi-day schedule. Without an API key, new tasks land in Important Urgent and
scheduling is unavailable.

Palette commands: ` + "`add <title>`, `delete <n>`, `key <api key>`, `plan`, `show matrix|schedule`"

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Intro:       views.RenderMarkdown(helpIntro),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Matrix, Action: "switch to Matrix"},
		{Key: m.Keys.Schedule, Action: "switch to Schedule"},
		{Key: m.Keys.Key, Action: "set OpenRouter API key"},
		{Key: m.Keys.Plan, Action: "generate schedule"},
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewMatrix:
		return []KeyBinding{
			{Key: "j/down, up", Action: "move selection"},
			{Key: m.Keys.Add, Action: "add task"},
			{Key: m.Keys.Edit, Action: "edit selected task"},
			{Key: m.Keys.Delete, Action: "delete selected task"},
		}
	case ViewSchedule:
		return []KeyBinding{
			{Key: m.Keys.Plan, Action: "regenerate schedule"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
