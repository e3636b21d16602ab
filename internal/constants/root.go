package constants

import "time"

const (
	AppName            = "dayreflect"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/dayreflect/dayreflect.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "dayreflect-"
	BackupFileSuffix = ".db"

	// Storage keys for the key-value table
	SessionStorageKey      = "prompt-store"
	ReminderIDStorageKey   = "reminder-notification-id"
	ReminderTimeStorageKey = "reminder-time"

	// Reminder defaults
	DefaultReminderHour   = 8
	DefaultReminderMinute = 0
	ReminderChannelID     = "daily-reminders"
	ReminderChannelName   = "Daily reminders"
	ReminderTitle         = "Time for today's reflection"

	// Delivery constants
	NotificationTag        = "dayreflect-reminder"
	NotificationURL        = "/"
	DeliveryLockfileName   = "dayreflect-delivery.lock"
	ViewLockfileName       = "dayreflect-view.lock"
	DeliverySecretHeader   = "X-Dayreflect-Secret"
	DeliveryMessagesPath   = "/messages"
	ScheduleMessageType    = "SCHEDULE_NOTIFICATION"
	ClickMessageType       = "NOTIFICATION_CLICK"
	NotificationActionOpen = "open"
	NotificationActionDrop = "dismiss"

	// Tray notifier constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifyRequestTimeout   = 5 * time.Second
	NotifierLockfileName   = "dayreflect-notifier.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.julianstephens.dayreflect"
	TraySecretHeader       = "X-Dayreflect-Tray-Secret"
	TrayExecutablePrefix   = "dayreflect-tray"

	// ReminderGracePeriod is how late a reminder may still fire.
	ReminderGracePeriod = 15 * time.Minute

	// DeliverySyncInterval is how often the daemon rereads stored schedules.
	DeliverySyncInterval = time.Minute

	// DBConnectionEnvVar holds a PostgreSQL connection string that overrides the default database.
	DBConnectionEnvVar = "DAYREFLECT_DB_CONNECTION"
)
