package delivery

import (
	"context"
	"errors"

	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/notifier"
)

// TrayNotifier is what TrayDisplay sends through.
type TrayNotifier interface {
	Notify(ctx context.Context, title, body string) error
}

// TrayDisplay shows notifications through the tray app. When the tray is not
// running the notification is only logged.
type TrayDisplay struct {
	Notifier TrayNotifier
}

func (d TrayDisplay) Show(ctx context.Context, n Shown) error {
	err := d.Notifier.Notify(ctx, n.Title, n.Body)
	if errors.Is(err, notifier.ErrTrayNotRunning) {
		logger.Warn("Tray app not running; notification not shown", "title", n.Title)
		return nil
	}
	return err
}
