package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/dayreflect/internal/cli"
)

type DebugCmd struct {
	DBPath        DebugDBPathCmd        `cmd:"" help:"Show database path."`
	DumpSession   DebugDumpSessionCmd   `cmd:"" help:"Dump the persisted session as JSON."`
	DumpSchedules DebugDumpSchedulesCmd `cmd:"" help:"Dump reminder schedules as JSON."`
	DumpSettings  DebugDumpSettingsCmd  `cmd:"" help:"Dump settings data as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"path":       ctx.Store.GetConfigPath(),
		"config_dir": ctx.ConfigDir,
	})
}

type DebugDumpSessionCmd struct{}

func (cmd *DebugDumpSessionCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, ctx.OpenSession(context.Background()).Snapshot())
}

type DebugDumpSchedulesCmd struct{}

func (cmd *DebugDumpSchedulesCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	schedules, err := ctx.Store.GetAllReminderSchedules(bg)
	if err != nil {
		return fmt.Errorf("failed to get schedules: %w", err)
	}
	id, _ := ctx.Scheduler().SavedScheduleID(bg)
	return printJSON(ctx, map[string]any{
		"reminder_id":   id,
		"reminder_time": ctx.Scheduler().GetSavedReminderTime(bg),
		"schedules":     schedules,
	})
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(ctx, settings)
}
