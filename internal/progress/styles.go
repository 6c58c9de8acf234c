package progress

import "github.com/charmbracelet/lipgloss"

const (
	colorSpinner = "#7D56F4"
	colorDone    = "#04B575"
)

var (
	spinnerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorSpinner))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorDone))
)
