package constants

const (
	SettingNotificationsEnabled = "notifications_enabled"
	SettingTimezone             = "timezone"
	SettingPromptsFile          = "prompts_file"
	SettingLaunchCommand        = "launch_command"

	// Default Settings Values
	DefaultNotificationsEnabled = true
	DefaultTimezone             = "Local" // Use system local timezone by default
)
