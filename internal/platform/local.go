// Package platform implements the reminder notification facility on top of
// the application's own storage.
package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/reminder"
	"github.com/julianstephens/dayreflect/internal/storage"
)

// ErrScheduleNotFound is returned when cancelling an unknown schedule.
var ErrScheduleNotFound = errors.New("schedule not found")

// Prompter asks the user to allow notifications.
type Prompter func(ctx context.Context) (bool, error)

type Option func(*Local)

// WithPrompter sets how RequestPermission asks the user. Without one the
// current setting is the answer.
func WithPrompter(p Prompter) Option {
	return func(l *Local) { l.prompt = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Local) { l.now = now }
}

// Local stores schedules in the application database. The notifications
// setting acts as the permission.
type Local struct {
	store  storage.Provider
	prompt Prompter
	now    func() time.Time
}

var _ reminder.Platform = (*Local)(nil)

func NewLocal(store storage.Provider, opts ...Option) *Local {
	l := &Local{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) PermissionGranted(context.Context) (bool, error) {
	settings, err := l.store.GetSettings()
	if err != nil {
		return false, fmt.Errorf("reading settings: %w", err)
	}
	return settings.NotificationsEnabled, nil
}

// RequestPermission asks through the prompter and records a grant.
func (l *Local) RequestPermission(ctx context.Context) (bool, error) {
	if l.prompt == nil {
		return l.PermissionGranted(ctx)
	}

	granted, err := l.prompt(ctx)
	if err != nil {
		return false, err
	}
	if !granted {
		return false, nil
	}

	settings, err := l.store.GetSettings()
	if err != nil {
		return false, fmt.Errorf("reading settings: %w", err)
	}
	settings.NotificationsEnabled = true
	if err := l.store.SaveSettings(settings); err != nil {
		return false, fmt.Errorf("saving notification permission: %w", err)
	}
	return true, nil
}

func (l *Local) EnsureChannel(ctx context.Context, id, name string) error {
	return l.store.EnsureNotificationChannel(ctx, models.NotificationChannel{
		ID:        id,
		Name:      name,
		CreatedAt: l.now(),
	})
}

func (l *Local) Schedule(ctx context.Context, n reminder.Notification, t reminder.Trigger) (string, error) {
	rs := models.ReminderSchedule{
		ID:        uuid.New().String(),
		Title:     n.Title,
		Body:      n.Body,
		Channel:   n.Channel,
		Hour:      t.Hour,
		Minute:    t.Minute,
		Repeats:   t.Repeats,
		CreatedAt: l.now(),
	}
	if err := l.store.AddReminderSchedule(ctx, rs); err != nil {
		return "", err
	}
	logger.Debug("Reminder schedule stored", "id", rs.ID, "hour", rs.Hour, "minute", rs.Minute)
	return rs.ID, nil
}

func (l *Local) Cancel(ctx context.Context, id string) error {
	err := l.store.DeleteReminderSchedule(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrScheduleNotFound, id)
	}
	return err
}

// Schedules lists every stored schedule.
func (l *Local) Schedules(ctx context.Context) ([]models.ReminderSchedule, error) {
	return l.store.GetAllReminderSchedules(ctx)
}

// Due returns the schedules that should fire at now, in now's location.
func (l *Local) Due(ctx context.Context, now time.Time, grace time.Duration) ([]models.ReminderSchedule, error) {
	all, err := l.store.GetAllReminderSchedules(ctx)
	if err != nil {
		return nil, err
	}
	var due []models.ReminderSchedule
	for _, rs := range all {
		if rs.IsDue(now, grace) {
			due = append(due, rs)
		}
	}
	return due, nil
}

// MarkFired records that a schedule was delivered at the given time.
func (l *Local) MarkFired(ctx context.Context, id string, at time.Time) error {
	return l.store.MarkReminderFired(ctx, id, at)
}

// Occurrence is a schedule's next firing time.
type Occurrence struct {
	Schedule models.ReminderSchedule
	At       time.Time
}

// Upcoming returns the next firing of every active schedule after now.
// One-shot schedules that already fired are skipped.
func (l *Local) Upcoming(ctx context.Context, now time.Time) ([]Occurrence, error) {
	all, err := l.store.GetAllReminderSchedules(ctx)
	if err != nil {
		return nil, err
	}
	var out []Occurrence
	for _, rs := range all {
		if !rs.Repeats && rs.LastFiredAt != nil {
			continue
		}
		out = append(out, Occurrence{Schedule: rs, At: rs.Time().NextAfter(now)})
	}
	return out, nil
}
