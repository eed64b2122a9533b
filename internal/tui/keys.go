package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Popups
	Close    key.Binding
	CloseAll key.Binding

	// Actions
	Reload    key.Binding
	ToggleLog key.Binding

	// Global
	Quit key.Binding
	Help key.Binding

	// Triggers holds one binding per configured trigger control.
	Triggers []key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Close, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{
		{k.Close, k.CloseAll},
		{k.Reload, k.ToggleLog},
		{k.Help, k.Quit},
	}
	if len(k.Triggers) > 0 {
		groups = append(groups, k.Triggers)
	}
	return groups
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close popup"),
		),
		CloseAll: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close all"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload config"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "toggle log"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// reserved reports whether k is taken by a global binding.
func (k KeyMap) reserved(keyName string) bool {
	for _, b := range []key.Binding{k.Close, k.CloseAll, k.Reload, k.ToggleLog, k.Quit, k.Help} {
		for _, bk := range b.Keys() {
			if bk == keyName {
				return true
			}
		}
	}
	return false
}
