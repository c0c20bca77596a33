package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roomperms/internal/permissions"
)

// renderMain renders header, section body and footer.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)

	body := lipgloss.NewStyle().
		Width(m.width).
		Height(max(bodyHeight, 0)).
		Render(m.renderSection())

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderHeader renders the room line and the section tabs.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{
		bg.Render("roomperms", styles.AccentText.Bold(true)),
		bg.Render(truncate(m.room, max(m.width/2, 16)), styles.Text),
	}
	switch {
	case m.stopped && !m.state.Loaded():
		parts = append(parts, bg.Render("Unavailable", styles.DangerText))
	case !m.state.Loaded():
		parts = append(parts, bg.Render("Loading permissions...", styles.WarningText))
	case m.state.HasChanges():
		parts = append(parts, bg.Render("● unsaved", styles.WarningText.Bold(true)))
	}
	line := styles.Header.Width(m.width).Render(bg.Join(parts, "  "))

	tabs := make([]string, 0, len(permissions.Sections()))
	tabStyles := m.theme.Styles()
	for _, section := range permissions.Sections() {
		style := tabStyles.Tab
		if section == m.state.Section {
			style = tabStyles.ActiveTab
		}
		tabs = append(tabs, style.Render(section.Title()))
	}
	tabLine := lipgloss.NewStyle().Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))

	return lipgloss.JoinVertical(lipgloss.Left, line, tabLine)
}

// renderSection renders one row per editable action.
func (m Model) renderSection() string {
	styles := m.theme.Styles()

	switch {
	case m.stopped && !m.state.Loaded():
		return "\n  " + styles.DangerText.Render("Permissions unavailable. Press q to quit.")
	case !m.state.Loaded():
		return "\n  " + styles.MutedText.Render("Waiting for the room's power levels...")
	}

	compact := m.width < LayoutCompactWidth
	labelWidth := 0
	for _, item := range m.state.Items {
		labelWidth = max(labelWidth, len([]rune(item.Label())))
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, item := range m.state.Items {
		level, _ := m.state.Level(item)

		marker := "  "
		if i == m.cursor {
			marker = styles.AccentText.Render("▸ ")
		}

		label := padRight(item.Label(), labelWidth)
		if i == m.cursor {
			label = styles.Selected.Render(label)
		} else {
			label = styles.Text.Render(label)
		}

		row := marker + label + "  " + styles.LevelStyle(level).Render(padRight(permissions.LevelLabel(level), 12))
		if !compact {
			row += "  " + styles.FaintText.Render(item.String())
		}
		if m.changed(item) {
			row += " " + styles.WarningText.Render("*")
		}
		b.WriteString("  " + row + "\n")
	}
	return b.String()
}

// changed reports whether item differs from the saved baseline.
func (m Model) changed(item permissions.Key) bool {
	if m.state.BaselinePermissions == nil || m.state.CurrentPermissions == nil {
		return false
	}
	return m.state.BaselinePermissions.Level(item) != m.state.CurrentPermissions.Level(item)
}

// renderFooter renders the save status and the short key help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var status string
	switch {
	case m.state.SaveAction.IsLoading():
		status = bg.Render("Saving...", styles.WarningText)
	case m.status != "":
		style := styles.MutedText
		switch m.statusKind {
		case statusSuccess:
			style = styles.SuccessText
		case statusError:
			style = styles.DangerText
		}
		status = bg.Render(truncate(m.status, max(m.width-4, 8)), style)
	}

	helpLine := styles.Footer.Width(m.width).Render(m.help.View(m.keys))
	if status == "" {
		return helpLine
	}
	return lipgloss.JoinVertical(lipgloss.Left, styles.Footer.Width(m.width).Render(status), helpLine)
}
