package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/dayreflect/internal/models"
)

// ErrNotFound is returned when a key or row does not exist.
var ErrNotFound = errors.New("not found")

// Item is a single key-value pair of persisted application state.
type Item struct {
	Key   string
	Value string
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Key-value items. SetItems writes all pairs in one transaction.
	GetItem(ctx context.Context, key string) (string, error)
	SetItems(ctx context.Context, items ...Item) error
	DeleteItem(ctx context.Context, key string) error

	// Notification channels
	EnsureNotificationChannel(ctx context.Context, ch models.NotificationChannel) error
	GetNotificationChannel(ctx context.Context, id string) (models.NotificationChannel, error)

	// Reminder schedules
	AddReminderSchedule(ctx context.Context, s models.ReminderSchedule) error
	GetReminderSchedule(ctx context.Context, id string) (models.ReminderSchedule, error)
	GetAllReminderSchedules(ctx context.Context) ([]models.ReminderSchedule, error)
	DeleteReminderSchedule(ctx context.Context, id string) error
	MarkReminderFired(ctx context.Context, id string, at time.Time) error

	// Utils
	GetConfigPath() string
}
