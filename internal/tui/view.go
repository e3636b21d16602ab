package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StatePrompts:
		content = m.viewPrompts()
	case StateReminder:
		content = docStyle.Render(m.reminderCard.View())
	case StateEditReminder:
		content = m.viewEditReminder()
	}

	parts := []string{m.viewTabs(), content}
	if m.status != "" {
		parts = append(parts, docStyle.Render(statusStyle.Render(m.status)))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	active := m.state
	if active == StateEditReminder {
		active = StateReminder
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewPrompts() string {
	header := progressStyle.Render("Prompt " + m.session.Progress())
	if m.session.CompletedToday() {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, doneStyle.Render("✓ done for today"))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.card.View()))
}

func (m Model) viewEditReminder() string {
	view := m.form.View()
	if m.formError != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, dangerStyle.Render(m.formError))
	}
	return docStyle.Render(view)
}
