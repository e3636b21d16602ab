// Package notifier shows desktop notifications through the dayreflect tray app.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/lockfile"
	"github.com/julianstephens/dayreflect/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrTrayNotRunning is returned when no tray app is available to show a notification.
var ErrTrayNotRunning = errors.New("dayreflect-tray is not running")

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

type Notifier struct {
	client     *http.Client
	retries    int
	retryDelay time.Duration
}

func New() *Notifier {
	return &Notifier{
		client:     &http.Client{Timeout: constants.NotifyRequestTimeout},
		retries:    constants.NotifyMaxRetries,
		retryDelay: constants.NotifyRetryDelay,
	}
}

// Notify shows title and body as one tray notification.
func (n *Notifier) Notify(ctx context.Context, title, body string) error {
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}

	lock, err := lockfile.Read(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		if errors.Is(err, lockfile.ErrNotRunning) {
			return ErrTrayNotRunning
		}
		return err
	}
	if err := lockfile.Validate(lock, constants.TrayExecutablePrefix, findProcessFunc); err != nil {
		if errors.Is(err, lockfile.ErrNotRunning) {
			return ErrTrayNotRunning
		}
		return err
	}

	payload := WebhookPayload{
		Text:       formatText(title, body),
		DurationMs: constants.NotificationDurationMs,
	}
	return n.sendWithRetry(ctx, fmt.Sprintf("http://127.0.0.1:%d", lock.Port), lock.Secret, payload)
}

func formatText(title, body string) string {
	if body == "" {
		return title
	}
	if title == "" {
		return body
	}
	return title + "\n" + body
}

// GetTrayAppConfigDir returns the directory holding the tray lockfile. The
// tray's settings.json may point it elsewhere via settings.lockfile_dir.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err != nil {
		return trayConfigDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err != nil {
		logger.Debug("Ignoring unreadable tray settings", "error", err)
		return trayConfigDir, nil
	}
	if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
		return *store.Settings.LockfileDir, nil
	}
	return trayConfigDir, nil
}

// statusError is a non-200 reply; 4xx replies are not retried.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("notification failed with status %d: %s", e.code, e.body)
}

func (n *Notifier) sendWithRetry(ctx context.Context, url, secret string, payload WebhookPayload) error {
	var err error
	for attempt := 0; attempt < n.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.retryDelay * time.Duration(attempt)):
			}
		}

		err = n.send(ctx, url, secret, payload)
		if err == nil {
			return nil
		}

		var se *statusError
		if errors.As(err, &se) && se.code >= 400 && se.code < 500 {
			return err
		}
		logger.Debug("Tray notification attempt failed", "attempt", attempt+1, "error", err)
	}
	return err
}

func (n *Notifier) send(ctx context.Context, url, secret string, payload WebhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.TraySecretHeader, secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return &statusError{code: res.StatusCode, body: string(body)}
}
