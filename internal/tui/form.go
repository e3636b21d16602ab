package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/reminder"
	"github.com/julianstephens/dayreflect/internal/validation"
)

const reminderRetryMessage = "Couldn't update the reminder. Please try again."

func newReminderForm(fm *ReminderFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Reminder time (HH:MM, 24-hour)").
				Placeholder("08:00").
				Value(&fm.Time).
				Validate(func(s string) error {
					_, err := validation.ParseTimeInput(s)
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// saveReminder applies the submitted time. Bad input and failed writes leave
// an inline message and report false.
func (m *Model) saveReminder() bool {
	at, err := validation.ParseTimeInput(m.reminderForm.Time)
	if err != nil {
		m.formError = err.Error()
		return false
	}

	id, err := m.scheduler.UpdateReminderTime(context.Background(), at)
	if err != nil {
		logger.Warn("Reminder update failed", "time", at.String(), "error", err)
		m.formError = reminderRetryMessage
		return false
	}

	m.formError = ""
	if id == "" {
		m.status = fmt.Sprintf("Reminder time saved as %s. Notifications are off, so nothing was scheduled.", reminder.FormatReminderTime(at))
	} else {
		m.status = fmt.Sprintf("Reminder set for %s.", reminder.FormatReminderTime(at))
	}
	m.refreshReminder()
	return true
}
