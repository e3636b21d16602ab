package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/dayreflect/internal/backup"
	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/platform"
	"github.com/julianstephens/dayreflect/internal/prompts"
	"github.com/julianstephens/dayreflect/internal/reminder"
	"github.com/julianstephens/dayreflect/internal/session"
	"github.com/julianstephens/dayreflect/internal/storage"
	"github.com/julianstephens/dayreflect/internal/storage/sqlite"
	"github.com/julianstephens/dayreflect/internal/utils"
)

type Context struct {
	Store     storage.Provider
	ConfigDir string
	Out       io.Writer
	Now       func() time.Time
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Clock returns Now, defaulting to time.Now.
func (c *Context) Clock() func() time.Time {
	if c.Now == nil {
		return time.Now
	}
	return c.Now
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Settings reads the stored settings, falling back to defaults on error.
func (c *Context) Settings() models.Settings {
	settings, err := c.Store.GetSettings()
	if err != nil {
		logger.Warn("Failed to read settings, using defaults", "error", err)
		return models.DefaultSettings()
	}
	return settings
}

// Location is the configured timezone.
func (c *Context) Location() *time.Location {
	return utils.LocationFromSettings(c.Settings())
}

// OpenSession loads the persisted session without installing prompts.
func (c *Context) OpenSession(ctx context.Context) *session.Store {
	return session.Open(ctx, c.Store,
		session.WithClock(c.Clock()),
		session.WithLocation(c.Location()),
	)
}

// Session opens today's reflection session over the configured prompt set.
func (c *Context) Session(ctx context.Context) *session.Store {
	s := c.OpenSession(ctx)
	s.SetPrompts(prompts.Resolve(c.Settings().PromptsFile))
	return s
}

// Platform is the notification facility backed by the store.
func (c *Context) Platform(opts ...platform.Option) *platform.Local {
	return platform.NewLocal(c.Store, append([]platform.Option{platform.WithClock(c.Clock())}, opts...)...)
}

// Scheduler returns the daily reminder scheduler.
func (c *Context) Scheduler(opts ...platform.Option) *reminder.Scheduler {
	return reminder.NewScheduler(c.Platform(opts...), c.Store)
}
