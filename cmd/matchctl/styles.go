package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobmatch-backend/internal/tracelog"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// styleTraceLine colors a rendered trace line by its status column.
func styleTraceLine(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return line
	}
	switch tracelog.Status(fields[2]) {
	case tracelog.StatusWarn:
		return warnStyle.Render(line)
	case tracelog.StatusSkipped:
		return skipStyle.Render(line)
	default:
		return okStyle.Render(line)
	}
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}
