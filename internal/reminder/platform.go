package reminder

import "context"

// Notification is the content of a scheduled reminder.
type Notification struct {
	Title   string
	Body    string
	Channel string
}

// Trigger fires at Hour:Minute local time, every day when Repeats is set.
type Trigger struct {
	Hour    int
	Minute  int
	Repeats bool
}

// Platform is the notification facility reminders are scheduled on.
type Platform interface {
	// PermissionGranted reports the current permission without asking.
	PermissionGranted(ctx context.Context) (bool, error)
	// RequestPermission asks for permission and reports the outcome.
	RequestPermission(ctx context.Context) (bool, error)
	EnsureChannel(ctx context.Context, id, name string) error
	Schedule(ctx context.Context, n Notification, t Trigger) (string, error)
	Cancel(ctx context.Context, id string) error
}
