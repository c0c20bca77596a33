package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal asks whether pending edits may be discarded, showing them
// as a diff. Once answered it closes and the model reads discard.
type confirmModal struct {
	title    string
	diff     string
	answered bool
	discard  bool
}

func newConfirmModal(title, diff string) confirmModal {
	return confirmModal{title: title, diff: diff}
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Confirm):
		c.answered, c.discard = true, true
		return c, nil, true
	case key.Matches(keyMsg, keys.Cancel):
		c.answered = true
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.WarningText.Bold(true).Render(c.title))
	b.WriteString("\n\n")
	for _, line := range strings.Split(strings.TrimRight(c.diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(styles.FaintText.Render(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(styles.SuccessText.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(styles.DangerText.Render(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(styles.AccentText.Render(line))
		default:
			b.WriteString(styles.MutedText.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Text.Render("Discard these changes? "))
	b.WriteString(styles.AccentText.Render("[y]es / [n]o"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Warning)).
		Padding(1, 2)
	if width > 0 {
		box = box.MaxWidth(width)
	}

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
