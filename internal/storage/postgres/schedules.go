package postgres

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
	var lastFired sql.NullTime
	if err := row.Scan(&rs.ID, &rs.Title, &rs.Body, &rs.Channel, &rs.Hour, &rs.Minute, &rs.Repeats, &rs.CreatedAt, &lastFired); err != nil {
		return models.ReminderSchedule{}, err
	}
	if lastFired.Valid {
		t := lastFired.Time
		rs.LastFiredAt = &t
	}
	return rs, nil
}

func (s *Store) AddReminderSchedule(ctx context.Context, rs models.ReminderSchedule) error {
	if err := rs.Validate(); err != nil {
		return err
	}
	var lastFired sql.NullTime
	if rs.LastFiredAt != nil {
		lastFired = sql.NullTime{Time: rs.LastFiredAt.UTC(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO reminder_schedules ("+scheduleColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		rs.ID, rs.Title, rs.Body, rs.Channel, rs.Hour, rs.Minute, rs.Repeats, rs.CreatedAt.UTC(), lastFired)
	return err
}

func (s *Store) GetReminderSchedule(ctx context.Context, id string) (models.ReminderSchedule, error) {
	rs, err := scanSchedule(s.db.QueryRowContext(ctx, "SELECT "+scheduleColumns+" FROM reminder_schedules WHERE id = $1", id))
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
	res, err := s.db.ExecContext(ctx, "DELETE FROM reminder_schedules WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func (s *Store) MarkReminderFired(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, "UPDATE reminder_schedules SET last_fired_at = $1 WHERE id = $2", at.UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("schedule %q: %w", id, storage.ErrNotFound)
	}
	return nil
}
