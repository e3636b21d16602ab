package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

// Set DAYREFLECT_TEST_POSTGRES to a disposable database to run these tests, e.g.
// DAYREFLECT_TEST_POSTGRES="postgres://postgres@localhost:5432/dayreflect_test?sslmode=disable"
func setupIntegrationStore(t *testing.T) *Store {
	t.Helper()
	connStr := os.Getenv("DAYREFLECT_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("DAYREFLECT_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() {
		db := store.GetDB()
		_, _ = db.Exec("DELETE FROM kv")
		_, _ = db.Exec("DELETE FROM reminder_schedules")
		_, _ = db.Exec("DELETE FROM notification_channels")
		store.Close()
	})
	return store
}

func TestStoreIntegration(t *testing.T) {
	store := setupIntegrationStore(t)
	ctx := context.Background()

	t.Run("Settings", func(t *testing.T) {
		settings, err := store.GetSettings()
		if err != nil {
			t.Fatalf("Failed to get settings: %v", err)
		}
		settings.Timezone = "UTC"
		if err := store.SaveSettings(settings); err != nil {
			t.Fatalf("Failed to save settings: %v", err)
		}
		got, _ := store.GetSettings()
		if got.Timezone != "UTC" {
			t.Errorf("expected UTC timezone, got %q", got.Timezone)
		}
	})

	t.Run("Items", func(t *testing.T) {
		if err := store.SetItems(ctx,
			storage.Item{Key: constants.ReminderIDStorageKey, Value: "id-1"},
			storage.Item{Key: constants.ReminderTimeStorageKey, Value: `{"hour":9,"minute":15}`},
		); err != nil {
			t.Fatalf("SetItems failed: %v", err)
		}
		got, err := store.GetItem(ctx, constants.ReminderIDStorageKey)
		if err != nil || got != "id-1" {
			t.Fatalf("GetItem = %q, %v", got, err)
		}
		if err := store.DeleteItem(ctx, constants.ReminderIDStorageKey); err != nil {
			t.Fatalf("DeleteItem failed: %v", err)
		}
		if _, err := store.GetItem(ctx, constants.ReminderIDStorageKey); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Schedules", func(t *testing.T) {
		rs := models.ReminderSchedule{
			ID: "pg-1", Title: constants.ReminderTitle, Body: "body", Channel: constants.ReminderChannelID,
			Hour: 8, Minute: 0, Repeats: true, CreatedAt: time.Now().UTC(),
		}
		if err := store.AddReminderSchedule(ctx, rs); err != nil {
			t.Fatalf("AddReminderSchedule failed: %v", err)
		}
		if err := store.MarkReminderFired(ctx, "pg-1", time.Now()); err != nil {
			t.Fatalf("MarkReminderFired failed: %v", err)
		}
		got, err := store.GetReminderSchedule(ctx, "pg-1")
		if err != nil || got.LastFiredAt == nil {
			t.Fatalf("GetReminderSchedule = %+v, %v", got, err)
		}
		if err := store.DeleteReminderSchedule(ctx, "pg-1"); err != nil {
			t.Fatalf("DeleteReminderSchedule failed: %v", err)
		}
	})
}
