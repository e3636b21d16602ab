package models

// Settings represents application-wide settings
type Settings struct {
	NotificationsEnabled bool   `json:"notifications_enabled"` // doubles as the notification permission
	Timezone             string `json:"timezone"`              // IANA timezone name or "Local"
	PromptsFile          string `json:"prompts_file"`          // optional YAML prompt set override
	LaunchCommand        string `json:"launch_command"`        // command that opens a new app view
}
