package platform

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/reminder"
	"github.com/julianstephens/dayreflect/internal/storage/sqlite"
)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "dayreflect.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestPermissionFollowsSetting(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	l := NewLocal(store)

	granted, err := l.PermissionGranted(ctx)
	if err != nil || !granted {
		t.Fatalf("expected default permission granted, got %v, %v", granted, err)
	}

	settings, _ := store.GetSettings()
	settings.NotificationsEnabled = false
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	granted, _ = l.PermissionGranted(ctx)
	if granted {
		t.Error("expected permission denied when notifications are disabled")
	}
	granted, _ = l.RequestPermission(ctx)
	if granted {
		t.Error("request without prompter should follow the setting")
	}
}

func TestRequestPermissionWithPrompter(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	settings, _ := store.GetSettings()
	settings.NotificationsEnabled = false
	_ = store.SaveSettings(settings)

	declined := NewLocal(store, WithPrompter(func(context.Context) (bool, error) { return false, nil }))
	if granted, err := declined.RequestPermission(ctx); err != nil || granted {
		t.Fatalf("expected decline, got %v, %v", granted, err)
	}

	accepted := NewLocal(store, WithPrompter(func(context.Context) (bool, error) { return true, nil }))
	if granted, err := accepted.RequestPermission(ctx); err != nil || !granted {
		t.Fatalf("expected grant, got %v, %v", granted, err)
	}
	settings, _ = store.GetSettings()
	if !settings.NotificationsEnabled {
		t.Error("grant should enable notifications")
	}
}

func TestScheduleAndCancel(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	l := NewLocal(store, WithClock(fixedClock(time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC))))

	if err := l.EnsureChannel(ctx, constants.ReminderChannelID, constants.ReminderChannelName); err != nil {
		t.Fatalf("EnsureChannel failed: %v", err)
	}
	ch, err := store.GetNotificationChannel(ctx, constants.ReminderChannelID)
	if err != nil || ch.Name != constants.ReminderChannelName {
		t.Fatalf("channel not stored: %+v, %v", ch, err)
	}

	id, err := l.Schedule(ctx, reminder.Notification{Title: "t", Body: "b", Channel: constants.ReminderChannelID}, reminder.Trigger{Hour: 9, Minute: 30, Repeats: true})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	all, _ := l.Schedules(ctx)
	if len(all) != 1 || all[0].ID != id || all[0].Hour != 9 || all[0].Minute != 30 {
		t.Fatalf("unexpected schedules %+v", all)
	}

	if err := l.Cancel(ctx, id); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if err := l.Cancel(ctx, id); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestDueAndUpcoming(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	l := NewLocal(store, WithClock(fixedClock(time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC))))

	id, err := l.Schedule(ctx, reminder.Notification{Title: "t", Body: "b"}, reminder.Trigger{Hour: 8, Minute: 0, Repeats: true})
	if err != nil {
		t.Fatal(err)
	}

	at := time.Date(2024, 7, 1, 8, 2, 0, 0, time.UTC)
	due, err := l.Due(ctx, at, 10*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != id {
		t.Fatalf("expected schedule due, got %+v", due)
	}

	if err := l.MarkFired(ctx, id, at); err != nil {
		t.Fatal(err)
	}
	due, _ = l.Due(ctx, at.Add(time.Minute), 10*time.Minute)
	if len(due) != 0 {
		t.Errorf("schedule must fire at most once per day, got %d", len(due))
	}

	up, err := l.Upcoming(ctx, at)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 7, 2, 8, 0, 0, 0, time.UTC)
	if len(up) != 1 || !up[0].At.Equal(want) {
		t.Errorf("expected next occurrence %v, got %+v", want, up)
	}
}

func TestWorksWithReminderScheduler(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	s := reminder.NewScheduler(NewLocal(store), store)

	first, err := s.ScheduleDailyReminder(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.UpdateReminderTime(ctx, models.ReminderTime{Hour: 19, Minute: 0})
	if err != nil {
		t.Fatal(err)
	}

	all, _ := store.GetAllReminderSchedules(ctx)
	if len(all) != 1 || all[0].ID != second || all[0].ID == first {
		t.Fatalf("expected only the second schedule stored, got %+v", all)
	}
	if all[0].Hour != 19 {
		t.Errorf("expected hour 19, got %d", all[0].Hour)
	}
}
