package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Amber
	colorDanger    = lipgloss.Color("196") // Red
	colorCandA     = lipgloss.Color("39")  // Blue
	colorCandB     = lipgloss.Color("170") // Magenta
	colorWhite     = lipgloss.Color("255")
)

// TabActive style for the selected tab label.
var TabActive = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// TabInactive style for the other tab labels.
var TabInactive = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// Title style for a tab headline.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// Subtitle style for the line under a headline.
var Subtitle = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Card style for metric cards.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1).
	MarginRight(1)

// CardTitle style for the card headline.
var CardTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// Label style for metric names.
var Label = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Value style for metric values.
var Value = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// Positive, Negative and NeutralStyle color sentiment values.
var (
	Positive     = lipgloss.NewStyle().Foreground(colorSuccess)
	Negative     = lipgloss.NewStyle().Foreground(colorDanger)
	NeutralStyle = lipgloss.NewStyle().Foreground(colorSecondary)
)

// Warning style for amber notices.
var Warning = lipgloss.NewStyle().
	Foreground(colorWarning)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorDanger).
	Bold(true)

// ErrorBox frames the load error banner.
var ErrorBox = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(colorDanger).
	Padding(0, 1)

// HelpStyle for help and empty-state text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// BarStyle colors horizontal bars.
var BarStyle = lipgloss.NewStyle().
	Foreground(colorPrimary)

// EventsPanel style for the event log overlay.
var EventsPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// EventsHeaderStyle style for section headings inside the overlay.
var EventsHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// candidateStyle colors a candidate's name by roster position.
func candidateStyle(index int) lipgloss.Style {
	if index%2 == 0 {
		return lipgloss.NewStyle().Bold(true).Foreground(colorCandA)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorCandB)
}
