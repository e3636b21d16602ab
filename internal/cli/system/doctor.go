package system

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dayreflect/internal/backup"
	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/delivery"
	"github.com/julianstephens/dayreflect/internal/perspective"
	"github.com/julianstephens/dayreflect/internal/prompts"
	"github.com/julianstephens/dayreflect/internal/storage"
	"github.com/julianstephens/dayreflect/internal/storage/sqlite"
	"github.com/julianstephens/dayreflect/internal/utils"
	"github.com/julianstephens/dayreflect/internal/validation"
)

type DoctorCmd struct{}

// check is one diagnostic. Warnings are reported but do not fail the run.
type check struct {
	name    string
	needsDB bool
	warn    bool
	run     func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warn: true, run: checkBackupsPresent},
	{name: "Prompt set", needsDB: true, run: checkPrompts},
	{name: "Reminder schedule", needsDB: true, run: checkReminder},
	{name: "Clock/timezone", needsDB: true, run: checkClockTimezone},
	{name: "Delivery daemon", warn: true, run: checkDaemon},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true

	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

type dbHolder interface {
	GetDB() *sql.DB
}

func checkDBReachable(ctx *cli.Context) error {
	h, ok := ctx.Store.(dbHolder)
	if !ok {
		return nil
	}
	db := h.GetDB()
	if db == nil {
		if err := ctx.Store.Load(); err != nil {
			return fmt.Errorf("failed to load database: %w", err)
		}
		if db = h.GetDB(); db == nil {
			return fmt.Errorf("database connection is nil")
		}
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func versions(ctx *cli.Context) (current, latest int, ok bool, err error) {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return 0, 0, false, nil
	}
	current, latest, err = m.SchemaVersion()
	if err != nil {
		return 0, 0, true, fmt.Errorf("failed to read schema version: %w", err)
	}
	return current, latest, true, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, ok, err := versions(ctx)
	if !ok || err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, ok, err := versions(ctx)
	if !ok || err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'dayreflect migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'dayreflect backup create'")
	}
	return nil
}

func checkPrompts(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	set := prompts.Builtin()
	if settings.PromptsFile != "" {
		if set, err = prompts.LoadFile(settings.PromptsFile); err != nil {
			return fmt.Errorf("prompts file %s: %w", settings.PromptsFile, err)
		}
	}

	result := validation.ValidatePrompts(set, perspective.Default().Has)
	return result.Err()
}

func checkReminder(ctx *cli.Context) error {
	bg := context.Background()
	schedules, err := ctx.Store.GetAllReminderSchedules(bg)
	if err != nil {
		return fmt.Errorf("failed to get reminder schedules: %w", err)
	}

	id, armed := ctx.Scheduler().SavedScheduleID(bg)
	if armed {
		if _, err := ctx.Store.GetReminderSchedule(bg, id); errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("saved reminder %s has no schedule (run 'dayreflect reminder schedule')", id)
		} else if err != nil {
			return fmt.Errorf("failed to get reminder schedule: %w", err)
		}
	}

	orphans := 0
	for _, rs := range schedules {
		if rs.ID != id {
			orphans++
		}
	}
	if orphans > 0 {
		return fmt.Errorf("found %d schedule(s) not tracked as the daily reminder", orphans)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone setting: %q", settings.Timezone)
	}

	now := ctx.Clock()()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkDaemon(ctx *cli.Context) error {
	client, err := delivery.Dial(delivery.LockfilePath(ctx.ConfigDir))
	if err != nil {
		if errors.Is(err, delivery.ErrDaemonNotRunning) {
			return fmt.Errorf("delivery daemon is not running (start it with 'dayreflect serve')")
		}
		return err
	}
	if _, err := client.Status(context.Background()); err != nil {
		return fmt.Errorf("delivery daemon did not answer: %w", err)
	}
	return nil
}
