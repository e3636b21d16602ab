package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/tui/components/promptcard"
	"github.com/julianstephens/dayreflect/internal/tui/components/remindercard"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.card.SetSize(msg.Width, msg.Height-4)
		m.reminderCard.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case dayTickMsg:
		m.rollover(time.Time(msg))
		return m, dayTick()

	case promptcard.SelectOptionMsg:
		m.session.RecordResponse(msg.PromptID, msg.OptionID)
		m.status = ""
		if m.session.CompletedToday() {
			m.status = "All prompts answered for today."
		}
		m.refreshCard()
		return m, nil

	case remindercard.EditReminderMsg:
		m.reminderForm = &ReminderFormModel{Time: m.scheduler.GetSavedReminderTime(context.Background()).String()}
		m.form = newReminderForm(m.reminderForm)
		m.formError = ""
		m.state = StateEditReminder
		return m, m.form.Init()
	}

	if m.state == StateEditReminder {
		return m.updateReminderForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + SessionState(len(tabTitles))) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StatePrompts:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Next):
				m.session.Next()
				m.refreshCard()
				return m, nil
			case key.Matches(msg, m.keys.Back):
				m.session.Back()
				m.refreshCard()
				return m, nil
			}
		}
		m.card, cmd = m.card.Update(msg)
	case StateReminder:
		m.reminderCard, cmd = m.reminderCard.Update(msg)
	}
	return m, cmd
}

func (m Model) updateReminderForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.formError = ""
		m.state = StateReminder
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if !m.saveReminder() {
			// Reopen with the rejected input so it can be corrected.
			m.form = newReminderForm(m.reminderForm)
			return m, m.form.Init()
		}
		m.state = StateReminder
		return m, nil
	case huh.StateAborted:
		m.formError = ""
		m.state = StateReminder
		return m, nil
	}
	return m, cmd
}

// rollover starts a new cycle when the calendar day has changed.
func (m *Model) rollover(t time.Time) {
	day := t.In(m.loc).Format(constants.DateFormat)
	if day == m.day {
		return
	}
	m.day = day
	m.session.ResetForToday()
	m.status = ""
	m.refreshCard()
}
