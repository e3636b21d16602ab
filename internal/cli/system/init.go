package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/storage"
	"github.com/julianstephens/dayreflect/internal/storage/postgres"
	"github.com/julianstephens/dayreflect/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized dayreflect storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := copyData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return errors.New("--force is only supported for SQLite storage")
	}
	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copiedKeys are the key-value items carried over by init --source.
var copiedKeys = []string{
	constants.SessionStorageKey,
	constants.ReminderIDStorageKey,
	constants.ReminderTimeStorageKey,
}

func openSource(source string) (storage.Provider, error) {
	if storage.IsPostgres(source) || strings.Contains(source, "host=") {
		if err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	}
	path, err := cli.ExpandPath(source)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

func copyData(ctx *cli.Context, source string) error {
	src, err := openSource(source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	bg := context.Background()

	ctx.Println("  Copying settings...")
	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	ctx.Println("  Copying session and reminder state...")
	var items []storage.Item
	for _, key := range copiedKeys {
		value, err := src.GetItem(bg, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s from source: %w", key, err)
		}
		items = append(items, storage.Item{Key: key, Value: value})
	}
	if len(items) > 0 {
		if err := ctx.Store.SetItems(bg, items...); err != nil {
			return fmt.Errorf("failed to save state to destination: %w", err)
		}
	}
	ctx.Printf("    Copied %d items\n", len(items))

	ctx.Println("  Copying reminder schedules...")
	schedules, err := src.GetAllReminderSchedules(bg)
	if err != nil {
		return fmt.Errorf("failed to get schedules from source: %w", err)
	}
	channels := map[string]bool{}
	for _, rs := range schedules {
		if rs.Channel != "" && !channels[rs.Channel] {
			ch, err := src.GetNotificationChannel(bg, rs.Channel)
			if err == nil {
				if err := ctx.Store.EnsureNotificationChannel(bg, ch); err != nil {
					return fmt.Errorf("failed to add channel %s: %w", ch.ID, err)
				}
			}
			channels[rs.Channel] = true
		}
		if err := ctx.Store.AddReminderSchedule(bg, rs); err != nil {
			return fmt.Errorf("failed to add schedule %s: %w", rs.ID, err)
		}
	}
	ctx.Printf("    Copied %d schedules\n", len(schedules))
	return nil
}
