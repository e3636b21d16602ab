package cli

import (
	"context"

	"github.com/charmbracelet/huh"
)

// ConfirmNotifications asks on the terminal whether reminders may be sent.
func ConfirmNotifications(ctx context.Context) (bool, error) {
	allow := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Allow dayreflect to send a daily reminder?").
				Description("You can turn this off later with `dayreflect settings --notifications=false`.").
				Affirmative("Allow").
				Negative("Not now").
				Value(&allow),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return allow, nil
}
