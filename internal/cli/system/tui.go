package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/delivery"
	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	bg := context.Background()
	if _, err := ctx.Scheduler().ScheduleDailyReminder(bg, nil); err != nil {
		logger.Warn("Failed to arm daily reminder on startup", "error", err)
	}

	release, err := delivery.RegisterView(delivery.ViewLockfilePath(ctx.ConfigDir))
	if err != nil {
		logger.Warn("Failed to register app view", "error", err)
	}
	defer release()

	m := tui.NewModel(tui.Deps{
		Session:   ctx.Session(bg),
		Scheduler: ctx.Scheduler(),
		Location:  ctx.Location(),
		Now:       ctx.Clock(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
