package app

import "github.com/charmbracelet/bubbles/v2/key"

type keyMap struct {
	Toggle key.Binding
	Reset  key.Binding
	Hover  key.Binding
	Wheel  key.Binding
	More   key.Binding
	Less   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Hover, k.Wheel, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset, k.Hover, k.Wheel},
		{k.More, k.Less, k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys("space", " "),
		key.WithHelp("space", "start/stop"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Hover: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "pause on hover"),
	),
	Wheel: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "wheel stepping"),
	),
	More: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "more loops"),
	),
	Less: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "fewer loops"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
