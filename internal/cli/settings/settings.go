package settings

import (
	"fmt"
	"os"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/prompts"
	"github.com/julianstephens/dayreflect/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Notifications *bool   `help:"Enable or disable reminder notifications."`
	Timezone      *string `help:"IANA timezone for day boundaries, or Local."`
	PromptsFile   *string `help:"YAML file with a custom prompt set (empty to use the built-in prompts)." type:"string"`
	LaunchCommand *string `help:"Command run to open the app from a notification."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		promptsFile := settings.PromptsFile
		if promptsFile == "" {
			promptsFile = "(built-in)"
		}
		launch := settings.LaunchCommand
		if launch == "" {
			launch = "(none)"
		}
		ctx.Println("Current Settings:")
		ctx.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		ctx.Printf("  Timezone:              %s\n", settings.Timezone)
		ctx.Printf("  Prompts File:          %s\n", promptsFile)
		ctx.Printf("  Launch Command:        %s\n", launch)
		return nil
	}

	updated := false
	if c.Notifications != nil {
		settings.NotificationsEnabled = *c.Notifications
		updated = true
	}
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.PromptsFile != nil {
		path := *c.PromptsFile
		if path != "" {
			expanded, err := cli.ExpandPath(path)
			if err != nil {
				return err
			}
			if _, err := os.Stat(expanded); err != nil {
				return fmt.Errorf("prompts file not accessible: %w", err)
			}
			if _, err := prompts.LoadFile(expanded); err != nil {
				return fmt.Errorf("invalid prompts file: %w", err)
			}
			path = expanded
		}
		settings.PromptsFile = path
		updated = true
	}
	if c.LaunchCommand != nil {
		settings.LaunchCommand = *c.LaunchCommand
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Println("Settings updated successfully.")
	} else {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
