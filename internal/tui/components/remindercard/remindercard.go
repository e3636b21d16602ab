package remindercard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/reminder"
)

// EditReminderMsg asks the parent to open the reminder time form.
type EditReminderMsg struct{}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(16)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			MarginTop(2)
)

type Model struct {
	at        models.ReminderTime
	scheduled bool
	width     int
	height    int
}

func New(at models.ReminderTime, scheduled bool) Model {
	return Model{at: at, scheduled: scheduled}
}

func (m *Model) SetReminder(at models.ReminderTime, scheduled bool) {
	m.at = at
	m.scheduled = scheduled
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "e", "enter":
			return m, func() tea.Msg { return EditReminderMsg{} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	status := "not scheduled"
	if m.scheduled {
		status = "scheduled daily"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Daily Reminder"),
		fmt.Sprintf("%s %s", labelStyle.Render("Time:"), valueStyle.Render(reminder.FormatReminderTime(m.at))),
		fmt.Sprintf("%s %s", labelStyle.Render("Status:"), valueStyle.Render(status)),
		hintStyle.Render("Press 'e' to change the reminder time"),
	)
}
