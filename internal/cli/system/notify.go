package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/delivery"
	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/notifier"
)

var newNotifier = func() delivery.TrayNotifier { return notifier.New() }

// NotifyCmd fires due reminders once and exits. It is meant for cron or a
// system timer on hosts that do not run the delivery daemon.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	pf := ctx.Platform()

	granted, err := pf.PermissionGranted(bg)
	if err != nil {
		return err
	}
	if !granted {
		if c.DryRun {
			ctx.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	now := ctx.Clock()().In(ctx.Location())
	due, err := pf.Due(bg, now, constants.ReminderGracePeriod)
	if err != nil {
		return fmt.Errorf("failed to read reminder schedules: %w", err)
	}
	if len(due) == 0 {
		if c.DryRun {
			ctx.Println("No reminders due.")
		}
		return nil
	}

	n := newNotifier()
	for _, rs := range due {
		if c.DryRun {
			ctx.Printf("[DryRun] %s: %s\n", rs.Title, rs.Body)
			continue
		}
		if err := n.Notify(bg, rs.Title, rs.Body); err != nil {
			if errors.Is(err, notifier.ErrTrayNotRunning) {
				logger.Warn("Tray app not running; reminder left for the next run", "id", rs.ID)
			} else {
				logger.Error("Failed to send notification", "id", rs.ID, "error", err)
			}
			continue
		}
		if err := pf.MarkFired(bg, rs.ID, now); err != nil {
			logger.Warn("Failed to record fired reminder", "id", rs.ID, "error", err)
		}
	}
	return nil
}
