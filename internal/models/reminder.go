package models

import (
	"fmt"
	"time"
)

// ReminderTime is a time of day for the daily reminder.
type ReminderTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t ReminderTime) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// String returns the time in HH:MM form.
func (t ReminderTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// NextAfter returns the first occurrence of this time of day strictly after now, in now's location.
func (t ReminderTime) NextAfter(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, t.Hour, t.Minute, 0, 0, now.Location())
	}
	return next
}

// NotificationChannel is a named delivery channel that schedules are posted to.
type NotificationChannel struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Importance string    `json:"importance"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReminderSchedule is a notification armed on the local platform.
type ReminderSchedule struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Channel     string     `json:"channel"`
	Hour        int        `json:"hour"`
	Minute      int        `json:"minute"`
	Repeats     bool       `json:"repeats"`
	CreatedAt   time.Time  `json:"created_at"`
	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`
}

func (s *ReminderSchedule) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("schedule id cannot be empty")
	}
	if s.Title == "" {
		return fmt.Errorf("schedule title cannot be empty")
	}
	if !s.Time().Valid() {
		return fmt.Errorf("invalid schedule time %02d:%02d", s.Hour, s.Minute)
	}
	return nil
}

func (s *ReminderSchedule) Time() ReminderTime {
	return ReminderTime{Hour: s.Hour, Minute: s.Minute}
}

// IsDue reports whether the schedule should fire at now. A schedule is due once
// per calendar day, at or after its time of day and within grace of it.
func (s *ReminderSchedule) IsDue(now time.Time, grace time.Duration) bool {
	target := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, now.Location())
	if now.Before(target) || now.Sub(target) > grace {
		return false
	}
	if s.LastFiredAt == nil {
		return true
	}
	last := s.LastFiredAt.In(now.Location())
	if !s.Repeats {
		return false
	}
	return !(last.Year() == now.Year() && last.Month() == now.Month() && last.Day() == now.Day())
}
