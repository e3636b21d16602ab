// Package session holds the day's reflection cycle: the prompt set, the
// recorded responses, the navigation position and the daily completion mark.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/storage"
)

// ItemStore is the persistence the session needs.
type ItemStore interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItems(ctx context.Context, items ...storage.Item) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the location that defines a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

type state struct {
	prompts         []models.Prompt
	responses       []models.Response
	currentIndex    int
	lastCompletedOn *time.Time
}

// Store is the reflection session. All methods are safe for concurrent use;
// each operation replaces the whole state under one lock.
type Store struct {
	mu    sync.Mutex
	items ItemStore
	now   func() time.Time
	loc   *time.Location
	st    state
}

// New returns an empty store that persists to items. Nothing is read.
func New(items ItemStore, opts ...Option) *Store {
	s := &Store{
		items: items,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a store seeded from the persisted snapshot. A missing or
// unreadable snapshot starts an empty session.
func Open(ctx context.Context, items ItemStore, opts ...Option) *Store {
	s := New(items, opts...)

	snap, err := loadSnapshot(ctx, items)
	if err != nil {
		logger.Warn("Discarding persisted session", "error", err)
		return s
	}
	s.st.responses = snap.Responses
	s.st.lastCompletedOn = snap.LastCompletedOn
	return s
}

func loadSnapshot(ctx context.Context, items ItemStore) (models.SessionSnapshot, error) {
	var snap models.SessionSnapshot
	if items == nil {
		return snap, nil
	}

	raw, err := items.GetItem(ctx, constants.SessionStorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return snap, nil
		}
		return models.SessionSnapshot{}, fmt.Errorf("reading session: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return models.SessionSnapshot{}, fmt.Errorf("decoding session: %w", err)
	}
	return snap, nil
}

func (s *Store) today(t *time.Time) bool {
	return t != nil && SameLocalDay(*t, s.now(), s.loc)
}

// apply replaces the state with fn's result and persists it.
// Callers must not hold s.mu.
func (s *Store) apply(fn func(st state) state) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st = fn(s.st)
	s.persistLocked()
}

func (s *Store) persistLocked() {
	if s.items == nil {
		return
	}
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		logger.Error("Failed to encode session", "error", err)
		return
	}
	if err := s.items.SetItems(context.Background(), storage.Item{Key: constants.SessionStorageKey, Value: string(data)}); err != nil {
		logger.Warn("Failed to persist session", "error", err)
	}
}

func (s *Store) snapshotLocked() models.SessionSnapshot {
	snap := models.SessionSnapshot{Responses: slices.Clone(s.st.responses)}
	if snap.Responses == nil {
		snap.Responses = []models.Response{}
	}
	if s.st.lastCompletedOn != nil {
		t := *s.st.lastCompletedOn
		snap.LastCompletedOn = &t
	}
	return snap
}

// SetPrompts installs the day's prompt set. Responses survive only when the
// cycle was already completed today, and then only for prompts still in the set.
func (s *Store) SetPrompts(prompts []models.Prompt) {
	s.apply(func(st state) state {
		st.prompts = slices.Clone(prompts)

		if !s.today(st.lastCompletedOn) {
			st.responses = nil
			st.currentIndex = 0
			st.lastCompletedOn = nil
			return st
		}

		known := make(map[string]bool, len(prompts))
		for _, p := range prompts {
			known[p.ID] = true
		}
		st.responses = slices.DeleteFunc(slices.Clone(st.responses), func(r models.Response) bool {
			return !known[r.PromptID]
		})
		st.currentIndex = clampIndex(st.currentIndex, len(prompts))
		return st
	})
}

// Next advances to the following prompt. It is a no-op on the last prompt.
func (s *Store) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.currentIndex < len(s.st.prompts)-1 {
		s.st.currentIndex++
	}
}

// Back returns to the previous prompt. It is a no-op on the first prompt.
func (s *Store) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.currentIndex > 0 {
		s.st.currentIndex--
	}
}

// RecordResponse stores optionID as the answer to promptID, replacing any
// earlier answer. The pair is not checked against the prompt set.
func (s *Store) RecordResponse(promptID, optionID string) {
	s.apply(func(st state) state {
		now := s.now()
		responses := slices.DeleteFunc(slices.Clone(st.responses), func(r models.Response) bool {
			return r.PromptID == promptID
		})
		st.responses = append(responses, models.Response{
			PromptID:    promptID,
			OptionID:    optionID,
			SubmittedAt: now,
		})

		if len(st.prompts) > 0 && len(st.responses) >= len(st.prompts) {
			st.lastCompletedOn = &now
		}
		return st
	})
}

// ResetForToday starts a fresh cycle unless one was completed today.
func (s *Store) ResetForToday() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.today(s.st.lastCompletedOn) {
		return
	}
	if s.st.currentIndex == 0 && len(s.st.responses) == 0 {
		return
	}
	s.st.currentIndex = 0
	s.st.responses = nil
	s.persistLocked()
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func (s *Store) Prompts() []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.prompts)
}

func (s *Store) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.currentIndex
}

// CurrentPrompt returns the prompt at the current index.
func (s *Store) CurrentPrompt() (models.Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.st.prompts) == 0 {
		return models.Prompt{}, false
	}
	return s.st.prompts[s.st.currentIndex], true
}

// Responses returns the recorded answers in arrival order.
func (s *Store) Responses() []models.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.responses)
}

func (s *Store) ResponseFor(promptID string) (models.Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.st.responses {
		if r.PromptID == promptID {
			return r, true
		}
	}
	return models.Response{}, false
}

func (s *Store) LastCompletedOn() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.lastCompletedOn == nil {
		return time.Time{}, false
	}
	return *s.st.lastCompletedOn, true
}

// CompletedToday reports whether every prompt has an answer and the cycle was
// completed on the current calendar day.
func (s *Store) CompletedToday() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.st.prompts)
	return n > 0 && len(s.st.responses) >= n && s.today(s.st.lastCompletedOn)
}

// Progress returns the 1-based position as "i/n", or "0/0" with no prompts.
func (s *Store) Progress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.st.prompts)
	if n == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", s.st.currentIndex+1, n)
}

// Snapshot returns the persisted subset of the current state.
func (s *Store) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}
