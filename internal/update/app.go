package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/eisend/internal/commands"
	"github.com/sandeepkv93/eisend/internal/model"
	"github.com/sandeepkv93/eisend/internal/store"
	"github.com/sandeepkv93/eisend/internal/views"
)

type View string

const (
	ViewMatrix   View = "Matrix"
	ViewSchedule View = "Schedule"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Matrix   string
	Schedule string
	Add      string
	Edit     string
	Delete   string
	Key      string
	Plan     string
	Palette  string
	Help     string
	Quit     string
}

// TaskClassifier resolves a task to a quadrant, possibly via the network.
type TaskClassifier interface {
	Classify(ctx context.Context, task model.Task) (model.Quadrant, error)
}

// PlanGenerator produces and stores a fresh schedule.
type PlanGenerator interface {
	Generate(ctx context.Context) ([]model.ScheduleDay, error)
}

type taskClassifiedMsg struct {
	TimeCreated int64
	Quadrant    model.Quadrant
	Err         error
}

type planReadyMsg struct {
	Days []model.ScheduleDay
	Err  error
}

type Model struct {
	CurrentView View
	Status      StatusBar
	HelpVisible bool
	Quitting    bool
	Keys        GlobalKeyMap

	store      *store.Store
	classifier TaskClassifier
	planner    PlanGenerator
	now        func() time.Time

	cursor      int
	form        *taskForm
	keyInput    textinput.Model
	keyActive   bool
	palette     textinput.Model
	paletteOpen bool
	busySpinner spinner.Model
	spinnerLive bool
	planPending bool
	helpModel   help.Model
}

func NewModel(st *store.Store, classifier TaskClassifier, planner PlanGenerator) Model {
	keyInput := textinput.New()
	keyInput.Prompt = "api key> "
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.CharLimit = 256
	keyInput.Width = 48

	palette := textinput.New()
	palette.Prompt = "/"
	palette.CharLimit = 256
	palette.Width = 48

	busy := spinner.New()
	busy.Spinner = spinner.Dot

	return Model{
		CurrentView: ViewMatrix,
		Keys: GlobalKeyMap{
			Matrix:   "1",
			Schedule: "2",
			Add:      "a",
			Edit:     "e",
			Delete:   "d",
			Key:      "k",
			Plan:     "g",
			Palette:  "/",
			Help:     "?",
			Quit:     "q",
		},
		store:       st,
		classifier:  classifier,
		planner:     planner,
		now:         time.Now,
		keyInput:    keyInput,
		palette:     palette,
		busySpinner: busy,
		helpModel:   help.New(),
	}
}

// WithStatus seeds the status bar, used to surface startup warnings such as
// a recovered state file.
func (m Model) WithStatus(text string, isError bool) Model {
	m.Status = StatusBar{Text: text, IsError: isError}
	return m
}

// WithClock fixes the clock for tests.
func (m Model) WithClock(now func() time.Time) Model {
	m.now = now
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if !m.spinnerLive {
			return m, nil
		}
		if m.store.ClassifyingCount() == 0 && !m.planPending {
			m.spinnerLive = false
			return m, nil
		}
		var cmd tea.Cmd
		m.busySpinner, cmd = m.busySpinner.Update(typed)
		return m, cmd
	case taskClassifiedMsg:
		return m.onTaskClassified(typed)
	case planReadyMsg:
		return m.onPlanReady(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.paletteOpen {
		return m.handlePaletteKey(msg)
	}
	if m.keyActive {
		return m.handleAPIKeyFormKey(msg)
	}
	if m.form != nil {
		return m.handleFormKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Matrix:
		m.CurrentView = ViewMatrix
		return m, nil
	case m.Keys.Schedule:
		m.CurrentView = ViewSchedule
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Palette:
		m.paletteOpen = true
		m.palette.SetValue("")
		m.palette.Focus()
		return m, nil
	case m.Keys.Add:
		form := newTaskForm(nil)
		m.form = &form
		return m, nil
	case m.Keys.Edit:
		if task, ok := m.selectedTask(); ok {
			form := newTaskForm(&task)
			m.form = &form
		}
		return m, nil
	case m.Keys.Delete:
		return m.deleteSelected()
	case m.Keys.Key:
		m.keyActive = true
		m.keyInput.SetValue(m.store.APIKey())
		m.keyInput.Focus()
		return m, nil
	case m.Keys.Plan:
		return m.startPlan()
	case "j", "down":
		if m.CurrentView == ViewMatrix {
			if m.cursor < len(m.orderedTasks())-1 {
				m.cursor++
			}
		}
		return m, nil
	case "up":
		if m.CurrentView == ViewMatrix && m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}
	return m, nil
}

// addTask stores the task immediately and, when the quadrant choice was
// "auto", kicks off a classification request that patches the task in place
// once the reply lands. The task list never waits on the network.
func (m Model) addTask(task model.Task, auto bool) (tea.Model, tea.Cmd) {
	if err := m.store.AddTask(task); err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("error: save task: %v", err), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: fmt.Sprintf("added task: %s", task.Title), IsError: false}
	if !auto {
		return m, nil
	}
	return m.startClassification(task)
}

func (m Model) startClassification(task model.Task) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{classifyCmd(m.classifier, task)}
	if !m.spinnerLive {
		m.spinnerLive = true
		cmds = append(cmds, m.busySpinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func classifyCmd(classifier TaskClassifier, task model.Task) tea.Cmd {
	return func() tea.Msg {
		quadrant, err := classifier.Classify(context.Background(), task)
		return taskClassifiedMsg{TimeCreated: task.TimeCreated, Quadrant: quadrant, Err: err}
	}
}

func (m Model) onTaskClassified(msg taskClassifiedMsg) (tea.Model, tea.Cmd) {
	task, ok := model.FindTask(m.store.Tasks(), msg.TimeCreated)
	if !ok {
		// Deleted while the request was in flight; nothing to patch.
		return m, nil
	}
	if msg.Err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("error: classification failed, kept %s: %v", task.Quadrant.Label(), msg.Err), IsError: true}
		return m, nil
	}
	task.Quadrant = msg.Quadrant
	if err := m.store.UpdateTask(task); err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("error: save classification: %v", err), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: fmt.Sprintf("classified %q as %s", task.Title, msg.Quadrant.Label()), IsError: false}
	return m, nil
}

func (m Model) startPlan() (tea.Model, tea.Cmd) {
	if m.store.APIKey() == "" {
		m.Status = StatusBar{Text: "error: please add your API key first (press k)", IsError: true}
		return m, nil
	}
	if len(m.store.Tasks()) == 0 {
		m.Status = StatusBar{Text: "nothing to schedule; add tasks first", IsError: false}
		return m, nil
	}
	m.planPending = true
	m.Status = StatusBar{Text: "generating schedule...", IsError: false}
	cmds := []tea.Cmd{planCmd(m.planner)}
	if !m.spinnerLive {
		m.spinnerLive = true
		cmds = append(cmds, m.busySpinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func planCmd(planner PlanGenerator) tea.Cmd {
	return func() tea.Msg {
		days, err := planner.Generate(context.Background())
		return planReadyMsg{Days: days, Err: err}
	}
}

func (m Model) onPlanReady(msg planReadyMsg) (tea.Model, tea.Cmd) {
	m.planPending = false
	if msg.Err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("error: schedule generation failed: %v", msg.Err), IsError: true}
		return m, nil
	}
	m.CurrentView = ViewSchedule
	m.Status = StatusBar{Text: fmt.Sprintf("schedule generated: %d day(s)", len(msg.Days)), IsError: false}
	return m, nil
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: false}
		return m, nil
	}
	if err := m.store.DeleteTask(task.TimeCreated); err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("error: delete: %v", err), IsError: true}
		return m, nil
	}
	if m.cursor > 0 {
		m.cursor--
	}
	m.Status = StatusBar{Text: fmt.Sprintf("deleted task: %s", task.Title), IsError: false}
	return m, nil
}

// orderedTasks flattens the matrix in display order: quadrant by quadrant,
// insertion order within each. Palette `delete <n>` rows and the cursor both
// index into this ordering.
func (m Model) orderedTasks() []model.Task {
	tasks := m.store.Tasks()
	out := make([]model.Task, 0, len(tasks))
	for _, q := range model.Quadrants {
		for _, t := range tasks {
			if t.Quadrant == q {
				out = append(out, t)
			}
		}
	}
	return out
}

func (m Model) selectedTask() (model.Task, bool) {
	ordered := m.orderedTasks()
	if len(ordered) == 0 || m.cursor < 0 || m.cursor >= len(ordered) {
		return model.Task{}, false
	}
	return ordered[m.cursor], true
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	body := ""
	switch {
	case m.form != nil:
		body = m.form.view()
	case m.keyActive:
		body = views.RenderForm(views.FormData{
			Title:  "OpenRouter API Key",
			Fields: []views.FormFieldData{{Label: "key", View: m.keyInput.View(), Focused: true}},
			Hint:   "enter to save, esc to cancel; stored in plaintext in the state file",
		})
	case m.CurrentView == ViewSchedule:
		body = m.renderScheduleView()
	default:
		body = m.renderMatrixView()
	}
	if m.paletteOpen {
		body += "\n" + views.RenderCommandPalette(true, m.palette.View())
	}
	if m.HelpVisible {
		body += "\n" + m.renderHelpView()
	}

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError && !strings.HasPrefix(m.Status.Text, "error") {
			status = "error: " + m.Status.Text
		} else {
			status = m.Status.Text
		}
	}

	return views.RenderApp(views.AppData{
		Header:      fmt.Sprintf("eisend | view: %s | %d task(s)", m.CurrentView, len(m.store.Tasks())),
		Body:        body,
		Classifying: views.RenderClassifying(m.store.ClassifyingCount(), m.busySpinner.View()),
		StatusLine:  status,
		Footer: fmt.Sprintf("keys: %s matrix | %s schedule | %s add | %s edit | %s delete | %s api key | %s plan | %s palette | %s help | %s quit",
			m.Keys.Matrix, m.Keys.Schedule, m.Keys.Add, m.Keys.Edit, m.Keys.Delete, m.Keys.Key, m.Keys.Plan, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderMatrixView() string {
	selected, hasSelection := m.selectedTask()
	cells := make([]views.MatrixCellData, 0, len(model.Quadrants))
	for _, q := range model.Quadrants {
		cell := views.MatrixCellData{Label: q.Label()}
		for _, task := range m.store.Tasks() {
			if task.Quadrant != q {
				continue
			}
			cell.Tasks = append(cell.Tasks, views.TaskItemData{
				Title:       task.Title,
				Description: task.Description,
				Due:         task.DueDate.Local().Format("2006-01-02 15:04"),
				Selected:    hasSelection && task.TimeCreated == selected.TimeCreated,
			})
		}
		cells = append(cells, cell)
	}
	return views.RenderMatrixPanel(views.MatrixPanelData{Cells: cells})
}

func (m Model) renderScheduleView() string {
	tasks := m.store.Tasks()
	days := make([]views.ScheduleDayData, 0)
	for _, day := range m.store.Schedule() {
		data := views.ScheduleDayData{Date: day.Date.Local().Format("Mon Jan 2 2006")}
		for _, task := range day.Resolve(tasks) {
			data.Tasks = append(data.Tasks, views.TaskItemData{
				Title:       task.Title,
				Description: task.Description,
				Due:         task.DueDate.Local().Format("2006-01-02 15:04"),
			})
		}
		days = append(days, data)
	}
	return views.RenderSchedulePanel(views.SchedulePanelData{Days: days})
}

func (m Model) handleAPIKeyFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.keyActive = false
		m.keyInput.Blur()
		return m, nil
	case "enter":
		key := strings.TrimSpace(m.keyInput.Value())
		m.keyActive = false
		m.keyInput.Blur()
		if err := m.store.SetAPIKey(key); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("error: save api key: %v", err), IsError: true}
			return m, nil
		}
		if key == "" {
			m.Status = StatusBar{Text: "api key cleared; AI features disabled", IsError: false}
		} else {
			m.Status = StatusBar{Text: "api key saved", IsError: false}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.paletteOpen = false
		m.palette.Blur()
		return m, nil
	case "enter":
		input := m.palette.Value()
		m.paletteOpen = false
		m.palette.Blur()
		return m.executePalette(input)
	}
	var cmd tea.Cmd
	m.palette, cmd = m.palette.Update(msg)
	return m, cmd
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	cmd, err := commands.Parse(input)
	if err != nil {
		m.Status = StatusBar{Text: "error: " + err.Error(), IsError: true}
		return m, nil
	}

	var followUp tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task := model.Task{
				Title:       a.Title,
				TimeCreated: m.now().UnixMilli(),
				Priority:    1,
				Quadrant:    model.ImportantUrgent,
				DueDate:     m.now(),
			}
			if err := m.store.AddTask(task); err != nil {
				return commands.Result{}, err
			}
			next, teaCmd := m.startClassification(task)
			m = next.(Model)
			followUp = teaCmd
			return commands.Result{Message: fmt.Sprintf("added task: %s", a.Title)}, nil
		},
		Delete: func(d commands.DeleteArgs) (commands.Result, error) {
			ordered := m.orderedTasks()
			if d.Row > len(ordered) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task at row %d", d.Row)}
			}
			task := ordered[d.Row-1]
			if err := m.store.DeleteTask(task.TimeCreated); err != nil {
				return commands.Result{}, err
			}
			if m.cursor > 0 {
				m.cursor--
			}
			return commands.Result{Message: fmt.Sprintf("deleted task: %s", task.Title)}, nil
		},
		Key: func(k commands.KeyArgs) (commands.Result, error) {
			if err := m.store.SetAPIKey(k.Key); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "api key saved"}, nil
		},
		Plan: func() (commands.Result, error) {
			next, teaCmd := m.startPlan()
			m = next.(Model)
			followUp = teaCmd
			return commands.Result{Message: m.Status.Text}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			if s.View == "schedule" {
				m.CurrentView = ViewSchedule
			} else {
				m.CurrentView = ViewMatrix
			}
			return commands.Result{Message: "showing " + s.View}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: "error: " + err.Error(), IsError: true}
		return m, nil
	}
	if res.Message != "" {
		m.Status = StatusBar{Text: res.Message, IsError: m.Status.IsError}
	}
	return m, followUp
}
