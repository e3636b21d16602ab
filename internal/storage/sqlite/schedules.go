package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/storage"
)

const scheduleColumns = "id, title, body, channel, hour, minute, repeats, created_at, last_fired_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (models.ReminderSchedule, error) {
	var rs models.ReminderSchedule
	var repeats int
	var createdAt string
	var lastFired sql.NullString

	if err := row.Scan(&rs.ID, &rs.Title, &rs.Body, &rs.Channel, &rs.Hour, &rs.Minute, &repeats, &createdAt, &lastFired); err != nil {
		return models.ReminderSchedule{}, err
	}
	rs.Repeats = repeats != 0

	var err error
	if rs.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.ReminderSchedule{}, fmt.Errorf("parsing created_at for schedule %s: %w", rs.ID, err)
	}
	if lastFired.Valid {
		t, err := parseTime(lastFired.String)
		if err != nil {
			return models.ReminderSchedule{}, fmt.Errorf("parsing last_fired_at for schedule %s: %w", rs.ID, err)
		}
		rs.LastFiredAt = &t
	}
	return rs, nil
}

func (s *Store) AddReminderSchedule(ctx context.Context, rs models.ReminderSchedule) error {
	if err := rs.Validate(); err != nil {
		return err
	}

	repeats := 0
	if rs.Repeats {
		repeats = 1
	}
	var lastFired sql.NullString
	if rs.LastFiredAt != nil {
		lastFired = sql.NullString{String: formatTime(*rs.LastFiredAt), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO reminder_schedules ("+scheduleColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rs.ID, rs.Title, rs.Body, rs.Channel, rs.Hour, rs.Minute, repeats, formatTime(rs.CreatedAt), lastFired)
	return err
}

func (s *Store) GetReminderSchedule(ctx context.Context, id string) (models.ReminderSchedule, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+scheduleColumns+" FROM reminder_schedules WHERE id = ?", id)
	rs, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ReminderSchedule{}, fmt.Errorf("schedule %q: %w", id, storage.ErrNotFound)
		}
		return models.ReminderSchedule{}, err
	}
	return rs, nil
}

func (s *Store) GetAllReminderSchedules(ctx context.Context) ([]models.ReminderSchedule, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+scheduleColumns+" FROM reminder_schedules ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []models.ReminderSchedule
	for rows.Next() {
		rs, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, rs)
	}
	return schedules, rows.Err()
}

func (s *Store) DeleteReminderSchedule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reminder_schedules WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "schedule", id)
}

func (s *Store) MarkReminderFired(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, "UPDATE reminder_schedules SET last_fired_at = ? WHERE id = ?", formatTime(at), id)
	if err != nil {
		return err
	}
	return requireAffected(res, "schedule", id)
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
