package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the global key bindings.
type KeyMap struct {
	NextTab   key.Binding
	PrevTab   key.Binding
	Candidate key.Binding
	Refresh   key.Binding
	Events    key.Binding
	Help      key.Binding
	Quit      key.Binding

	tab []key.Binding // bindings of the active tab
}

// DefaultKeyMap returns the default global bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab:   newBinding([]string{"tab", "right"}, "próxima aba", "tab/→"),
		PrevTab:   newBinding([]string{"shift+tab", "left"}, "aba anterior", "S-tab/←"),
		Candidate: newBinding([]string{"c"}, "candidato", "c"),
		Refresh:   newBinding([]string{"r"}, "recarregar", "r"),
		Events:    newBinding([]string{"e"}, "eventos", "e"),
		Help:      newBinding([]string{"?"}, "ajuda", "?"),
		Quit:      newBinding([]string{"q", "ctrl+c"}, "sair", "q"),
	}
}

func newBinding(keys []string, help, display string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(display, help),
	)
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	out := []key.Binding{k.NextTab, k.Candidate, k.Refresh}
	out = append(out, k.tab...)
	return append(out, k.Help, k.Quit)
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Candidate},
		{k.Refresh, k.Events, k.Help, k.Quit},
		k.tab,
	}
}
