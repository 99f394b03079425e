package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the history screen
type KeyMap struct {
	// Navigation
	Up          key.Binding
	Down        key.Binding
	HalfUp      key.Binding
	HalfDown    key.Binding
	Home        key.Binding
	End         key.Binding
	NextSection key.Binding
	PrevSection key.Binding
	PickSection key.Binding

	// Actions
	Quit           key.Binding
	Help           key.Binding
	Escape         key.Binding
	Filter         key.Binding
	ToggleExternal key.Binding
	AddFavorite    key.Binding
	Delete         key.Binding
	ClearScope     key.Binding
	ClearAll       key.Binding

	// Confirmations
	Confirm        key.Binding
	ConfirmAllRead key.Binding
	Deny           key.Binding
	Toggle         key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("C-u", "half page up"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "half page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		NextSection: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab", "next section"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("S-tab", "prev section"),
		),
		PickSection: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "pick section"),
		),

		// Actions
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ToggleExternal: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "toggle non-library"),
		),
		AddFavorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "add to library"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove entry"),
		),
		ClearScope: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear section"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "clear all history"),
		),

		// Confirmations
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y", "confirm"),
		),
		ConfirmAllRead: key.NewBinding(
			key.WithKeys("a", "A"),
			key.WithHelp("a", "remove all for manga"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.NextSection, k.Delete, k.ToggleExternal, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.HalfUp, k.HalfDown, k.Home, k.End},
		{k.NextSection, k.PrevSection, k.PickSection, k.Filter},
		{k.Delete, k.ClearScope, k.ClearAll, k.ToggleExternal, k.AddFavorite},
		{k.Help, k.Escape, k.Quit},
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
