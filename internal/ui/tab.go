package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Tab is one dashboard page. A tab is mounted when it becomes visible and
// disposed when it is hidden; Mount always starts from fresh fetch state.
type Tab interface {
	Title() string
	Mount(sel Selection) tea.Cmd
	SetSelection(sel Selection) tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	Refetch() tea.Cmd
	SetSize(width, height int)
	View(f frame) string
	Keys() []key.Binding
	Dispose()
}
