package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/eisend/internal/model"
	"github.com/sandeepkv93/eisend/internal/views"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldDueTime
	fieldQuadrant
	fieldCount
)

const (
	dueDateLayout = "2006-01-02"
	dueTimeLayout = "15:04"
)

// quadrantAuto is the zeroth choice on the quadrant selector; the remaining
// choices map to model.Quadrants in display order.
const quadrantAuto = 0

type taskForm struct {
	editing  *model.Task
	inputs   []textinput.Model
	quadrant int
	focus    int
	errText  string
}

func newTaskForm(existing *model.Task) taskForm {
	inputs := make([]textinput.Model, fieldQuadrant)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 256
		inputs[i].Width = 40
	}
	inputs[fieldTitle].Placeholder = "title"
	inputs[fieldDescription].Placeholder = "description"
	inputs[fieldDueDate].Placeholder = dueDateLayout
	inputs[fieldDueTime].Placeholder = dueTimeLayout

	form := taskForm{inputs: inputs, quadrant: quadrantAuto}
	if existing != nil {
		task := *existing
		form.editing = &task
		form.inputs[fieldTitle].SetValue(task.Title)
		form.inputs[fieldDescription].SetValue(task.Description)
		form.inputs[fieldDueDate].SetValue(task.DueDate.Local().Format(dueDateLayout))
		form.inputs[fieldDueTime].SetValue(task.DueDate.Local().Format(dueTimeLayout))
		for i, q := range model.Quadrants {
			if q == task.Quadrant {
				form.quadrant = i + 1
			}
		}
	}
	form.inputs[fieldTitle].Focus()
	return form
}

func (f *taskForm) next() {
	f.setFocus((f.focus + 1) % fieldCount)
}

func (f *taskForm) prev() {
	f.setFocus((f.focus + fieldCount - 1) % fieldCount)
}

func (f *taskForm) setFocus(focus int) {
	f.focus = focus
	for i := range f.inputs {
		if i == focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

func (f *taskForm) cycleQuadrant(delta int) {
	n := len(model.Quadrants) + 1
	f.quadrant = (f.quadrant + delta + n) % n
}

func (f *taskForm) quadrantLabel() string {
	if f.quadrant == quadrantAuto {
		return "Auto (AI)"
	}
	return model.Quadrants[f.quadrant-1].Label()
}

// dueDate combines the date and time fields. A blank date falls back to now;
// a blank time means midnight. Both parse in the local zone.
func (f *taskForm) dueDate(now time.Time) (time.Time, error) {
	dateText := strings.TrimSpace(f.inputs[fieldDueDate].Value())
	timeText := strings.TrimSpace(f.inputs[fieldDueTime].Value())
	if dateText == "" {
		if timeText != "" {
			dateText = now.Local().Format(dueDateLayout)
		} else {
			return now, nil
		}
	}
	day, err := time.ParseInLocation(dueDateLayout, dateText, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("due date must look like %s", dueDateLayout)
	}
	if timeText == "" {
		return day, nil
	}
	clock, err := time.ParseInLocation(dueTimeLayout, timeText, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("due time must look like %s", dueTimeLayout)
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), nil
}

func (f *taskForm) view() string {
	title := "New Task"
	if f.editing != nil {
		title = "Edit Task"
	}
	fields := []views.FormFieldData{
		{Label: "title", View: f.inputs[fieldTitle].View(), Focused: f.focus == fieldTitle},
		{Label: "description", View: f.inputs[fieldDescription].View(), Focused: f.focus == fieldDescription},
		{Label: "due date", View: f.inputs[fieldDueDate].View(), Focused: f.focus == fieldDueDate},
		{Label: "due time", View: f.inputs[fieldDueTime].View(), Focused: f.focus == fieldDueTime},
		{Label: "quadrant", View: fmt.Sprintf("< %s >", f.quadrantLabel()), Focused: f.focus == fieldQuadrant},
	}
	return views.RenderForm(views.FormData{
		Title:  title,
		Fields: fields,
		Error:  f.errText,
		Hint:   "tab to move, left/right to pick quadrant, enter to save, esc to cancel",
	})
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.form
	switch msg.String() {
	case "esc":
		m.form = nil
		return m, nil
	case "enter":
		return m.submitForm()
	case "tab":
		form.next()
		return m, nil
	case "shift+tab":
		form.prev()
		return m, nil
	case "left":
		if form.focus == fieldQuadrant {
			form.cycleQuadrant(-1)
			return m, nil
		}
	case "right":
		if form.focus == fieldQuadrant {
			form.cycleQuadrant(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	if form.focus < len(form.inputs) {
		form.inputs[form.focus], cmd = form.inputs[form.focus].Update(msg)
	}
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	form := m.form
	due, err := form.dueDate(m.now())
	if err != nil {
		form.errText = err.Error()
		return m, nil
	}
	form.errText = ""

	auto := form.quadrant == quadrantAuto
	quadrant := model.ImportantUrgent
	if !auto {
		quadrant = model.Quadrants[form.quadrant-1]
	}

	if form.editing != nil {
		task := *form.editing
		task.Title = strings.TrimSpace(form.inputs[fieldTitle].Value())
		task.Description = strings.TrimSpace(form.inputs[fieldDescription].Value())
		task.DueDate = due
		task.Quadrant = quadrant
		m.form = nil
		if err := m.store.UpdateTask(task); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("error: save task: %v", err), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("updated task: %s", task.Title), IsError: false}
		if auto {
			return m.startClassification(task)
		}
		return m, nil
	}

	task := model.Task{
		Title:       strings.TrimSpace(form.inputs[fieldTitle].Value()),
		Description: strings.TrimSpace(form.inputs[fieldDescription].Value()),
		TimeCreated: m.now().UnixMilli(),
		Priority:    1,
		Quadrant:    quadrant,
		DueDate:     due,
	}
	m.form = nil
	return m.addTask(task, auto)
}
