// Package reminder keeps a single repeating daily reminder armed at the
// user's chosen time.
package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/storage"
)

// ErrInvalidTime is returned for a reminder time outside 00:00-23:59.
var ErrInvalidTime = errors.New("invalid reminder time")

// ItemStore is the persistence the scheduler needs.
type ItemStore interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItems(ctx context.Context, items ...storage.Item) error
}

// DefaultTime is used whenever no valid time has been saved.
var DefaultTime = models.ReminderTime{Hour: constants.DefaultReminderHour, Minute: constants.DefaultReminderMinute}

type Scheduler struct {
	platform Platform
	items    ItemStore
}

func NewScheduler(platform Platform, items ItemStore) *Scheduler {
	return &Scheduler{platform: platform, items: items}
}

// GetSavedReminderTime returns the persisted time, or DefaultTime when it is
// missing, unreadable or out of range.
func (s *Scheduler) GetSavedReminderTime(ctx context.Context) models.ReminderTime {
	raw, err := s.items.GetItem(ctx, constants.ReminderTimeStorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Debug("Reading reminder time failed, using default", "error", err)
		}
		return DefaultTime
	}

	t, err := decodeTime(raw)
	if err != nil {
		logger.Debug("Saved reminder time is unusable, using default", "value", raw, "error", err)
		return DefaultTime
	}
	return t
}

// decodeTime requires both fields to be present JSON numbers holding whole
// values in range.
func decodeTime(raw string) (models.ReminderTime, error) {
	var fields struct {
		Hour   *float64 `json:"hour"`
		Minute *float64 `json:"minute"`
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return models.ReminderTime{}, err
	}
	if fields.Hour == nil || fields.Minute == nil {
		return models.ReminderTime{}, fmt.Errorf("%w: missing hour or minute", ErrInvalidTime)
	}
	h, m := *fields.Hour, *fields.Minute
	if h != float64(int(h)) || m != float64(int(m)) {
		return models.ReminderTime{}, fmt.Errorf("%w: fractional value", ErrInvalidTime)
	}
	t := models.ReminderTime{Hour: int(h), Minute: int(m)}
	if !t.Valid() {
		return models.ReminderTime{}, fmt.Errorf("%w: %s out of range", ErrInvalidTime, t)
	}
	return t, nil
}

func encodeTime(t models.ReminderTime) string {
	data, _ := json.Marshal(t)
	return string(data)
}

// SavedScheduleID returns the identifier of the armed reminder, if any.
func (s *Scheduler) SavedScheduleID(ctx context.Context) (string, bool) {
	id, err := s.items.GetItem(ctx, constants.ReminderIDStorageKey)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

func (s *Scheduler) ensurePermission(ctx context.Context) (bool, error) {
	granted, err := s.platform.PermissionGranted(ctx)
	if err != nil {
		return false, err
	}
	if granted {
		return true, nil
	}
	return s.platform.RequestPermission(ctx)
}

// ScheduleDailyReminder replaces the armed reminder with a new repeating one at
// override, or at the saved time when override is nil. It returns the new
// schedule id, or "" with a nil error when notification permission is denied.
func (s *Scheduler) ScheduleDailyReminder(ctx context.Context, override *models.ReminderTime) (string, error) {
	granted, err := s.ensurePermission(ctx)
	if err != nil {
		return "", fmt.Errorf("checking notification permission: %w", err)
	}
	if !granted {
		logger.Debug("Notification permission denied, reminder not scheduled")
		return "", nil
	}

	if err := s.platform.EnsureChannel(ctx, constants.ReminderChannelID, constants.ReminderChannelName); err != nil {
		return "", fmt.Errorf("preparing notification channel: %w", err)
	}

	at := s.GetSavedReminderTime(ctx)
	if override != nil {
		if !override.Valid() {
			return "", fmt.Errorf("%w: %s", ErrInvalidTime, override)
		}
		at = *override
	}

	if previous, ok := s.SavedScheduleID(ctx); ok {
		if err := s.platform.Cancel(ctx, previous); err != nil {
			logger.Debug("Ignoring failed cancel of previous reminder", "id", previous, "error", err)
		}
	}

	id, err := s.platform.Schedule(ctx, Content(at), Trigger{Hour: at.Hour, Minute: at.Minute, Repeats: true})
	if err != nil {
		return "", fmt.Errorf("scheduling reminder: %w", err)
	}

	err = s.items.SetItems(ctx,
		storage.Item{Key: constants.ReminderIDStorageKey, Value: id},
		storage.Item{Key: constants.ReminderTimeStorageKey, Value: encodeTime(at)},
	)
	if err != nil {
		if cerr := s.platform.Cancel(ctx, id); cerr != nil {
			logger.Warn("Failed to cancel unrecorded reminder", "id", id, "error", cerr)
		}
		return "", fmt.Errorf("saving reminder: %w", err)
	}

	logger.Info("Daily reminder scheduled", "id", id, "time", at.String())
	return id, nil
}

// UpdateReminderTime saves t and reschedules the reminder at it.
func (s *Scheduler) UpdateReminderTime(ctx context.Context, t models.ReminderTime) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidTime, t)
	}
	if err := s.items.SetItems(ctx, storage.Item{Key: constants.ReminderTimeStorageKey, Value: encodeTime(t)}); err != nil {
		return "", fmt.Errorf("saving reminder time: %w", err)
	}
	return s.ScheduleDailyReminder(ctx, &t)
}

// Content returns the notification shown for a reminder at t.
func Content(t models.ReminderTime) Notification {
	return Notification{
		Title:   constants.ReminderTitle,
		Body:    fmt.Sprintf("It's %s. Take a minute to check in with today's prompts.", FormatReminderTime(t)),
		Channel: constants.ReminderChannelID,
	}
}

// FormatReminderTime renders t on a 12-hour clock, e.g. "8:00 AM".
func FormatReminderTime(t models.ReminderTime) string {
	return time.Date(2000, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format("3:04 PM")
}
