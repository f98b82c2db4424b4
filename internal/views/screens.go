package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TaskItemData struct {
	Title       string
	Description string
	Due         string
	Selected    bool
}

type MatrixCellData struct {
	Label string
	Tasks []TaskItemData
}

type MatrixPanelData struct {
	// Cells in display order: row-major, importance before urgency.
	Cells []MatrixCellData
}

type ScheduleDayData struct {
	Date  string
	Tasks []TaskItemData
}

type SchedulePanelData struct {
	Days []ScheduleDayData
}

type FormFieldData struct {
	Label   string
	View    string
	Focused bool
}

type FormData struct {
	Title  string
	Fields []FormFieldData
	Error  string
	Hint   string
}

func RenderMatrixPanel(data MatrixPanelData) string {
	cells := make([]string, 0, len(data.Cells))
	for _, cell := range data.Cells {
		cells = append(cells, renderMatrixCell(cell))
	}
	if len(cells) != 4 {
		return strings.Join(cells, "\n")
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, cells[0], cells[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, cells[2], cells[3])
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func renderMatrixCell(cell MatrixCellData) string {
	var b strings.Builder
	b.WriteString(cellTitle.Render(cell.Label) + "\n")
	if len(cell.Tasks) == 0 {
		b.WriteString("(empty)")
	}
	for _, task := range cell.Tasks {
		b.WriteString(renderTaskLine(task))
	}
	return cellStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func RenderSchedulePanel(data SchedulePanelData) string {
	if len(data.Days) == 0 {
		return panelStyle.Render("No schedule yet. Press g to generate one from your tasks.")
	}
	days := make([]string, 0, len(data.Days))
	for _, day := range data.Days {
		var b strings.Builder
		b.WriteString(cellTitle.Render("Date: "+day.Date) + "\n")
		if len(day.Tasks) == 0 {
			b.WriteString("(nothing scheduled)")
		}
		for _, task := range day.Tasks {
			b.WriteString(renderTaskLine(task))
		}
		days = append(days, panelStyle.Render(strings.TrimRight(b.String(), "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, days...)
}

func renderTaskLine(task TaskItemData) string {
	line := "- " + task.Title
	if task.Description != "" {
		line += ": " + task.Description
	}
	if task.Due != "" {
		line += fmt.Sprintf(" (due %s)", task.Due)
	}
	if task.Selected {
		return selectedStyle.Render("> "+line[2:]) + "\n"
	}
	return line + "\n"
}

func RenderForm(data FormData) string {
	var b strings.Builder
	b.WriteString(cellTitle.Render(data.Title) + "\n")
	for _, field := range data.Fields {
		marker := "  "
		if field.Focused {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s: %s\n", marker, field.Label, field.View))
	}
	if data.Error != "" {
		b.WriteString(errorStyle.Render("error: "+data.Error) + "\n")
	}
	if data.Hint != "" {
		b.WriteString(footerStyle.Render(data.Hint) + "\n")
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

type HelpPanelData struct {
	CurrentView string
	Intro       string
	Bindings    []string
	HelpView    string
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	if data.Intro != "" {
		b.WriteString(data.Intro + "\n")
	}
	b.WriteString(cellTitle.Render("Keys ("+data.CurrentView+" view)") + "\n")
	for _, binding := range data.Bindings {
		b.WriteString(binding + "\n")
	}
	if data.HelpView != "" {
		b.WriteString(data.HelpView)
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return panelStyle.Render("command: " + inputView)
}

func RenderClassifying(count int, spinnerView string) string {
	if count <= 0 {
		return ""
	}
	return fmt.Sprintf("%s Classifying %d task(s)...", spinnerView, count)
}
