// Package delivery shows reminder notifications at their target time and
// routes the user's response to them.
package delivery

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/logger"
)

var ErrStopped = errors.New("delivery: engine stopped")

// Action is a button offered on a shown notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Shown is a notification as it is presented to the user.
type Shown struct {
	Key                string    `json:"key"`
	Title              string    `json:"title"`
	Body               string    `json:"body"`
	Tag                string    `json:"tag"`
	RequireInteraction bool      `json:"requireInteraction"`
	Actions            []Action  `json:"actions"`
	URL                string    `json:"url"`
	ShownAt            time.Time `json:"shownAt"`
}

// Displayer presents notifications.
type Displayer interface {
	Show(ctx context.Context, n Shown) error
}

// Clients are the open app views a notification can bring forward.
type Clients interface {
	// Focus brings an existing view forward and reports whether one existed.
	Focus(ctx context.Context) (bool, error)
	Open(ctx context.Context, url string) error
}

// Request asks for a notification at NotifyAt.
type Request struct {
	Title    string
	Body     string
	NotifyAt time.Time
}

// Key identifies a request's slot: the title and the target in Unix milliseconds.
func Key(title string, notifyAt time.Time) string {
	return title + "-" + strconv.FormatInt(notifyAt.UnixMilli(), 10)
}

type EngineOption func(*Engine)

// WithClock overrides the time source used to decide whether a target has passed.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// OnShown registers a callback run after every notification is displayed.
func OnShown(fn func(Shown)) EngineOption {
	return func(e *Engine) { e.onShown = fn }
}

type slot struct {
	timer *time.Timer
	at    time.Time
}

// Engine holds at most one pending timer per key.
type Engine struct {
	mu      sync.Mutex
	slots   map[string]*slot
	visible map[string]Shown // by tag
	display Displayer
	clients Clients
	now     func() time.Time
	onShown func(Shown)
	stopped bool
}

func NewEngine(display Displayer, clients Clients, opts ...EngineOption) *Engine {
	e := &Engine{
		slots:   make(map[string]*slot),
		visible: make(map[string]Shown),
		display: display,
		clients: clients,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schedule arms req, replacing any pending request with the same key. A
// target at or before now is shown immediately.
func (e *Engine) Schedule(ctx context.Context, req Request) (string, error) {
	key := Key(req.Title, req.NotifyAt)

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return "", ErrStopped
	}
	if existing, ok := e.slots[key]; ok {
		existing.timer.Stop()
		delete(e.slots, key)
	}

	delay := req.NotifyAt.Sub(e.now())
	if delay <= 0 {
		e.mu.Unlock()
		return key, e.show(ctx, key, req)
	}

	s := &slot{at: req.NotifyAt}
	s.timer = time.AfterFunc(delay, func() { e.fire(key, s, req) })
	e.slots[key] = s
	e.mu.Unlock()

	logger.Debug("Notification scheduled", "key", key, "at", req.NotifyAt.Format(time.RFC3339))
	return key, nil
}

func (e *Engine) fire(key string, s *slot, req Request) {
	e.mu.Lock()
	if e.slots[key] != s {
		// Replaced or cancelled after the timer started.
		e.mu.Unlock()
		return
	}
	delete(e.slots, key)
	e.mu.Unlock()

	if err := e.show(context.Background(), key, req); err != nil {
		logger.Warn("Failed to show notification", "key", key, "error", err)
	}
}

func (e *Engine) show(ctx context.Context, key string, req Request) error {
	n := Shown{
		Key:                key,
		Title:              req.Title,
		Body:               req.Body,
		Tag:                constants.NotificationTag,
		RequireInteraction: true,
		Actions: []Action{
			{Action: constants.NotificationActionOpen, Title: "Open App"},
			{Action: constants.NotificationActionDrop, Title: "Dismiss"},
		},
		URL:     constants.NotificationURL,
		ShownAt: e.now(),
	}

	e.mu.Lock()
	e.visible[n.Tag] = n
	e.mu.Unlock()

	if err := e.display.Show(ctx, n); err != nil {
		return err
	}
	if e.onShown != nil {
		e.onShown(n)
	}
	return nil
}

// Cancel disarms the pending request under key.
func (e *Engine) Cancel(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slots[key]
	if !ok {
		return false
	}
	s.timer.Stop()
	delete(e.slots, key)
	return true
}

// Pending returns the armed keys in target order.
func (e *Engine) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := make([]string, 0, len(e.slots))
	for k := range e.slots {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return e.slots[a].at.Compare(e.slots[b].at)
	})
	return keys
}

// Visible returns the notifications shown and not yet interacted with.
func (e *Engine) Visible() []Shown {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Shown, 0, len(e.visible))
	for _, n := range e.visible {
		out = append(out, n)
	}
	return out
}

// HandleInteraction closes the reminder notification. Any action other than
// dismiss then focuses an open app view, or opens one if none exists.
func (e *Engine) HandleInteraction(ctx context.Context, action string) error {
	e.mu.Lock()
	delete(e.visible, constants.NotificationTag)
	e.mu.Unlock()

	if action == constants.NotificationActionDrop {
		return nil
	}

	focused, err := e.clients.Focus(ctx)
	if err != nil {
		logger.Debug("Focusing existing view failed", "error", err)
	}
	if focused {
		return nil
	}
	return e.clients.Open(ctx, constants.NotificationURL)
}

// Stop cancels every pending timer. Later calls to Schedule fail.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	for key, s := range e.slots {
		s.timer.Stop()
		delete(e.slots, key)
	}
}
