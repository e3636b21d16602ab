package delivery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/platform"
)

type fakeSource struct {
	mu        sync.Mutex
	granted   bool
	schedules []models.ReminderSchedule
	at        func(models.ReminderSchedule) time.Time
	fired     []string
}

func (s *fakeSource) PermissionGranted(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.granted, nil
}

func (s *fakeSource) Upcoming(_ context.Context, now time.Time) ([]platform.Occurrence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []platform.Occurrence
	for _, rs := range s.schedules {
		at := rs.Time().NextAfter(now)
		if s.at != nil {
			at = s.at(rs)
		}
		out = append(out, platform.Occurrence{Schedule: rs, At: at})
	}
	return out, nil
}

func (s *fakeSource) MarkFired(_ context.Context, id string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired = append(s.fired, id)
	return nil
}

func (s *fakeSource) set(schedules ...models.ReminderSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules = schedules
}

func TestReconcilerSyncArmsAndCancels(t *testing.T) {
	e := NewEngine(newChanDisplay(), &fakeClients{})
	defer e.Stop()
	src := &fakeSource{granted: true}
	src.set(
		models.ReminderSchedule{ID: "a", Title: "Morning", Hour: 8, Repeats: true},
		models.ReminderSchedule{ID: "b", Title: "Evening", Hour: 20, Repeats: true},
	)
	r := NewReconciler(e, src, time.Now)

	if err := r.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if len(e.Pending()) != 2 {
		t.Fatalf("expected 2 pending, got %v", e.Pending())
	}

	// Re-syncing the same schedules is a no-op.
	if err := r.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(e.Pending()) != 2 {
		t.Fatalf("expected 2 pending after resync, got %v", e.Pending())
	}

	src.set(models.ReminderSchedule{ID: "b", Title: "Evening", Hour: 20, Repeats: true})
	if err := r.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	pending := e.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected removed schedule to be cancelled, got %v", pending)
	}
}

func TestReconcilerPermissionRevoked(t *testing.T) {
	e := NewEngine(newChanDisplay(), &fakeClients{})
	defer e.Stop()
	src := &fakeSource{granted: true}
	src.set(models.ReminderSchedule{ID: "a", Title: "Morning", Hour: 8, Repeats: true})
	r := NewReconciler(e, src, time.Now)

	if err := r.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	src.mu.Lock()
	src.granted = false
	src.mu.Unlock()
	if err := r.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(e.Pending()) != 0 {
		t.Errorf("expected nothing armed without permission, got %v", e.Pending())
	}
}

func TestReconcilerFiredMarksAndRearms(t *testing.T) {
	display := newChanDisplay()
	var r *Reconciler
	e := NewEngine(display, &fakeClients{}, OnShown(func(n Shown) { r.Fired(n) }))
	defer e.Stop()

	src := &fakeSource{granted: true}
	fireAt := time.Now().Add(30 * time.Millisecond)
	src.at = func(models.ReminderSchedule) time.Time { return fireAt }
	src.set(models.ReminderSchedule{ID: "a", Title: "Morning", Hour: 8, Repeats: true})
	r = NewReconciler(e, src, time.Now)

	if err := r.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The next occurrence is a day later.
	src.mu.Lock()
	src.at = func(models.ReminderSchedule) time.Time { return fireAt.Add(24 * time.Hour) }
	src.mu.Unlock()

	waitShown(t, display.ch, time.Second)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		src.mu.Lock()
		fired := len(src.fired)
		src.mu.Unlock()
		if fired == 1 && len(e.Pending()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	src.mu.Lock()
	defer src.mu.Unlock()
	if len(src.fired) != 1 || src.fired[0] != "a" {
		t.Errorf("fired = %v, want [a]", src.fired)
	}
	pending := e.Pending()
	if len(pending) != 1 || pending[0] != Key("Morning", fireAt.Add(24*time.Hour)) {
		t.Errorf("expected re-armed next occurrence, got %v", pending)
	}
}

func TestReconcilerIgnoresForeignNotifications(t *testing.T) {
	e := NewEngine(newChanDisplay(), &fakeClients{})
	src := &fakeSource{granted: true}
	r := NewReconciler(e, src, time.Now)

	r.Fired(Shown{Key: "manual-1"})
	if len(src.fired) != 0 {
		t.Errorf("expected no MarkFired for unknown key, got %v", src.fired)
	}
}
