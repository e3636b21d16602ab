package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/storage"
)

// EnsureNotificationChannel creates or renames a channel. The original
// creation time is kept.
func (s *Store) EnsureNotificationChannel(ctx context.Context, ch models.NotificationChannel) error {
	if ch.Importance == "" {
		ch.Importance = "default"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_channels (id, name, importance, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, importance = excluded.importance`,
		ch.ID, ch.Name, ch.Importance, formatTime(ch.CreatedAt))
	return err
}

func (s *Store) GetNotificationChannel(ctx context.Context, id string) (models.NotificationChannel, error) {
	var ch models.NotificationChannel
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, importance, created_at FROM notification_channels WHERE id = ?", id,
	).Scan(&ch.ID, &ch.Name, &ch.Importance, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NotificationChannel{}, fmt.Errorf("channel %q: %w", id, storage.ErrNotFound)
		}
		return models.NotificationChannel{}, err
	}
	if ch.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.NotificationChannel{}, fmt.Errorf("parsing channel created_at: %w", err)
	}
	return ch, nil
}
