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

func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("item %q: %w", key, storage.ErrNotFound)
		}
		return "", err
	}
	return value, nil
}

func (s *Store) SetItems(ctx context.Context, items ...storage.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			item.Key, item.Value, now)
		if err != nil {
			return fmt.Errorf("failed to set item %q: %w", item.Key, err)
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = $1", key)
	return err
}

func (s *Store) EnsureNotificationChannel(ctx context.Context, ch models.NotificationChannel) error {
	if ch.Importance == "" {
		ch.Importance = "default"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_channels (id, name, importance, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, importance = EXCLUDED.importance`,
		ch.ID, ch.Name, ch.Importance, ch.CreatedAt.UTC())
	return err
}

func (s *Store) GetNotificationChannel(ctx context.Context, id string) (models.NotificationChannel, error) {
	var ch models.NotificationChannel
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, importance, created_at FROM notification_channels WHERE id = $1", id,
	).Scan(&ch.ID, &ch.Name, &ch.Importance, &ch.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NotificationChannel{}, fmt.Errorf("channel %q: %w", id, storage.ErrNotFound)
		}
		return models.NotificationChannel{}, err
	}
	return ch, nil
}
