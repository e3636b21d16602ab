// Package reminders holds the commands that manage the daily reminder.
package reminders

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/delivery"
	"github.com/julianstephens/dayreflect/internal/platform"
	"github.com/julianstephens/dayreflect/internal/reminder"
	"github.com/julianstephens/dayreflect/internal/validation"
)

type ReminderCmd struct {
	Show     ReminderShowCmd     `cmd:"" help:"Show the saved reminder time and schedule." default:"1"`
	Set      ReminderSetCmd      `cmd:"" help:"Change the reminder time (HH:MM) and reschedule."`
	Schedule ReminderScheduleCmd `cmd:"" help:"Re-arm the reminder at the saved time."`
}

type ReminderShowCmd struct{}

func (c *ReminderShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	sched := ctx.Scheduler()
	at := sched.GetSavedReminderTime(bg)

	ctx.Printf("Reminder time: %s (%s)\n", at.String(), reminder.FormatReminderTime(at))
	id, ok := sched.SavedScheduleID(bg)
	if !ok {
		ctx.Println("Schedule:      not scheduled")
	} else {
		ctx.Printf("Schedule:      %s\n", id)
		rs, err := ctx.Store.GetReminderSchedule(bg, id)
		if err != nil {
			ctx.Println("               (missing from storage; run `dayreflect reminder schedule`)")
		} else if rs.LastFiredAt != nil {
			ctx.Printf("Last fired:    %s\n", rs.LastFiredAt.In(ctx.Location()).Format("2006-01-02 15:04"))
		}
	}

	granted, err := ctx.Platform().PermissionGranted(bg)
	if err != nil {
		return err
	}
	ctx.Printf("Notifications: %s\n", enabledLabel(granted))

	client, err := delivery.Dial(delivery.LockfilePath(ctx.ConfigDir))
	if err != nil {
		if errors.Is(err, delivery.ErrDaemonNotRunning) {
			ctx.Println("Daemon:        not running")
			return nil
		}
		ctx.Printf("Daemon:        unavailable (%v)\n", err)
		return nil
	}
	st, err := client.Status(bg)
	if err != nil {
		ctx.Printf("Daemon:        unavailable (%v)\n", err)
		return nil
	}
	ctx.Printf("Daemon:        running, %d pending\n", len(st.Pending))
	return nil
}

func enabledLabel(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

type ReminderSetCmd struct {
	Time     string `arg:"" help:"Reminder time as HH:MM (24-hour)."`
	NoPrompt bool   `help:"Do not ask for notification permission; use the current setting."`
}

func (c *ReminderSetCmd) Run(ctx *cli.Context) error {
	at, err := validation.ParseTimeInput(c.Time)
	if err != nil {
		return err
	}

	id, err := scheduler(ctx, c.NoPrompt).UpdateReminderTime(context.Background(), at)
	if err != nil {
		return fmt.Errorf("couldn't update the reminder, please try again: %w", err)
	}
	ctx.Printf("✓ Reminder time saved: %s\n", reminder.FormatReminderTime(at))
	printScheduled(ctx, id)
	return nil
}

type ReminderScheduleCmd struct {
	NoPrompt bool `help:"Do not ask for notification permission; use the current setting."`
}

func (c *ReminderScheduleCmd) Run(ctx *cli.Context) error {
	sched := scheduler(ctx, c.NoPrompt)
	id, err := sched.ScheduleDailyReminder(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	printScheduled(ctx, id)
	return nil
}

func scheduler(ctx *cli.Context, noPrompt bool) *reminder.Scheduler {
	if noPrompt {
		return ctx.Scheduler()
	}
	return ctx.Scheduler(platform.WithPrompter(cli.ConfirmNotifications))
}

func printScheduled(ctx *cli.Context, id string) {
	if id == "" {
		ctx.Println("Notifications are disabled; no reminder was scheduled.")
		return
	}
	ctx.Printf("✓ Daily reminder scheduled (%s)\n", id)
}
