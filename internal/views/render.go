package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header      string
	Body        string
	StatusLine  string
	Classifying string
	Footer      string
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Width(46)
	cellTitle     = lipgloss.NewStyle().Bold(true).Underline(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	busyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

func RenderApp(data AppData) string {
	status := statusStyle.Render(data.StatusLine)
	if strings.Contains(strings.ToLower(data.StatusLine), "error") {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		data.Body,
	}
	if data.Classifying != "" {
		lines = append(lines, busyStyle.Render(data.Classifying))
	}
	if data.StatusLine != "" {
		lines = append(lines, status)
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
