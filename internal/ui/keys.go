package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the editor.
type keyMap struct {
	// Navigation
	Up          key.Binding
	Down        key.Binding
	NextSection key.Binding
	PrevSection key.Binding

	// Editing
	RaiseRole key.Binding
	LowerRole key.Binding
	Save      key.Binding
	Exit      key.Binding

	// Confirm dialog
	Confirm key.Binding
	Cancel  key.Binding

	// General
	CycleTheme key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Previous action"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Next action"),
		),
		NextSection: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next section"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous section"),
		),

		RaiseRole: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "More privileged role"),
		),
		LowerRole: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Less privileged role"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save"),
		),
		Exit: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc/q", "Exit"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "Discard and leave"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "Keep editing"),
		),

		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit without saving"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.LowerRole, k.RaiseRole, k.NextSection, k.Save, k.Exit, k.Help}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextSection, k.PrevSection},
		{k.LowerRole, k.RaiseRole, k.Save, k.Exit},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
