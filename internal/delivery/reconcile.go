package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/platform"
)

// Source supplies the stored reminder schedules the daemon keeps armed.
type Source interface {
	PermissionGranted(ctx context.Context) (bool, error)
	Upcoming(ctx context.Context, now time.Time) ([]platform.Occurrence, error)
	MarkFired(ctx context.Context, id string, at time.Time) error
}

// Reconciler keeps one engine slot armed for the next occurrence of every
// stored schedule.
type Reconciler struct {
	engine *Engine
	source Source
	now    func() time.Time

	mu    sync.Mutex
	armed map[string]string // engine key -> schedule id
}

func NewReconciler(engine *Engine, source Source, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{engine: engine, source: source, now: now, armed: make(map[string]string)}
}

// Sync arms new occurrences and cancels those whose schedule is gone.
func (r *Reconciler) Sync(ctx context.Context) error {
	granted, err := r.source.PermissionGranted(ctx)
	if err != nil {
		return fmt.Errorf("checking permission: %w", err)
	}

	var occurrences []platform.Occurrence
	if granted {
		occurrences, err = r.source.Upcoming(ctx, r.now())
		if err != nil {
			return fmt.Errorf("listing schedules: %w", err)
		}
	}

	desired := make(map[string]platform.Occurrence, len(occurrences))
	for _, o := range occurrences {
		desired[Key(o.Schedule.Title, o.At)] = o
	}

	r.mu.Lock()
	var stale []string
	for key := range r.armed {
		if _, ok := desired[key]; !ok {
			stale = append(stale, key)
			delete(r.armed, key)
		}
	}
	var fresh []platform.Occurrence
	for key, o := range desired {
		if _, ok := r.armed[key]; !ok {
			r.armed[key] = o.Schedule.ID
			fresh = append(fresh, o)
		}
	}
	r.mu.Unlock()

	for _, key := range stale {
		r.engine.Cancel(key)
	}
	for _, o := range fresh {
		if _, err := r.engine.Schedule(ctx, Request{Title: o.Schedule.Title, Body: o.Schedule.Body, NotifyAt: o.At}); err != nil {
			return fmt.Errorf("arming schedule %s: %w", o.Schedule.ID, err)
		}
	}
	if len(stale) > 0 || len(fresh) > 0 {
		logger.Debug("Reminders reconciled", "armed", len(fresh), "cancelled", len(stale))
	}
	return nil
}

// Fired records that the notification under n.Key was shown and arms the
// schedule's next occurrence. Notifications not armed by r are ignored.
func (r *Reconciler) Fired(n Shown) {
	r.mu.Lock()
	id, ok := r.armed[n.Key]
	delete(r.armed, n.Key)
	r.mu.Unlock()
	if !ok {
		return
	}

	ctx := context.Background()
	if err := r.source.MarkFired(ctx, id, n.ShownAt); err != nil {
		logger.Warn("Failed to record fired reminder", "id", id, "error", err)
	}
	if err := r.Sync(ctx); err != nil {
		logger.Warn("Failed to re-arm reminders", "error", err)
	}
}

// Run syncs immediately and then every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	if err := r.Sync(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Sync(ctx); err != nil {
				logger.Warn("Reminder sync failed", "error", err)
			}
		}
	}
}
