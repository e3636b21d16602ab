package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/delivery"
	"github.com/julianstephens/dayreflect/internal/logger"
)

// ServeCmd runs the background delivery daemon.
type ServeCmd struct {
	SyncInterval time.Duration `help:"How often stored schedules are reread." default:"1m"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	lockPath := delivery.LockfilePath(ctx.ConfigDir)
	if _, err := delivery.Dial(lockPath); err == nil {
		return fmt.Errorf("delivery daemon is already running (lockfile %s)", lockPath)
	} else if !errors.Is(err, delivery.ErrDaemonNotRunning) {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := ctx.Location()
	clock := func() time.Time { return ctx.Clock()().In(loc) }

	var rec *delivery.Reconciler
	engine := delivery.NewEngine(
		delivery.TrayDisplay{Notifier: newNotifier()},
		delivery.ProcessClients{
			ViewLockPath:  delivery.ViewLockfilePath(ctx.ConfigDir),
			LaunchCommand: ctx.Settings().LaunchCommand,
		},
		delivery.WithClock(clock),
		delivery.OnShown(func(n delivery.Shown) { rec.Fired(n) }),
	)
	defer engine.Stop()
	rec = delivery.NewReconciler(engine, ctx.Platform(), clock)

	srv, err := delivery.NewServer(engine, lockPath)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	interval := c.SyncInterval
	if interval <= 0 {
		interval = constants.DeliverySyncInterval
	}
	go func() {
		if err := rec.Run(sigCtx, interval); err != nil {
			logger.Error("Reminder sync stopped", "error", err)
		}
	}()

	ctx.Printf("Delivery daemon running (lockfile %s). Press Ctrl+C to stop.\n", lockPath)
	if err := srv.Serve(sigCtx); err != nil {
		return fmt.Errorf("delivery server failed: %w", err)
	}
	ctx.Println("Delivery daemon stopped.")
	return nil
}
