package models

import (
	"fmt"

	"github.com/julianstephens/dayreflect/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingNotificationsEnabled:
			if value != "true" && value != "false" {
				return Settings{}, fmt.Errorf("parsing %s: invalid boolean %q", key, value)
			}
			settings.NotificationsEnabled = value == "true"
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingPromptsFile:
			settings.PromptsFile = value
		case constants.SettingLaunchCommand:
			settings.LaunchCommand = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingNotificationsEnabled: fmt.Sprintf("%v", settings.NotificationsEnabled),
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingPromptsFile:          settings.PromptsFile,
		constants.SettingLaunchCommand:        settings.LaunchCommand,
	}
}

// DefaultSettings returns the settings written on first run.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		Timezone:             constants.DefaultTimezone,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}
