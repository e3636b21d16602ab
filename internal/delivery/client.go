package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/lockfile"
)

// ErrDaemonNotRunning is returned when no delivery daemon is advertised.
var ErrDaemonNotRunning = errors.New("delivery daemon is not running")

var findProcessFunc lockfile.FindProcessFunc = ps.FindProcess

// Client talks to a running delivery daemon.
type Client struct {
	lock lockfile.Lock
	http *http.Client
}

// Dial reads the daemon's lockfile and checks that its process is alive.
func Dial(lockPath string) (*Client, error) {
	lock, err := lockfile.Read(lockPath)
	if err != nil {
		if errors.Is(err, lockfile.ErrNotRunning) {
			return nil, ErrDaemonNotRunning
		}
		return nil, err
	}
	if err := lockfile.Validate(lock, constants.AppName, findProcessFunc); err != nil {
		if errors.Is(err, lockfile.ErrNotRunning) {
			return nil, ErrDaemonNotRunning
		}
		return nil, err
	}
	return &Client{lock: lock, http: &http.Client{Timeout: constants.NotifyRequestTimeout}}, nil
}

func (c *Client) url() string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", c.lock.Port, constants.DeliveryMessagesPath)
}

// Send posts msg to the daemon.
func (c *Client) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.DeliverySecretHeader, c.lock.Secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("daemon returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}

// Status fetches the daemon's pending and visible notifications.
func (c *Client) Status(ctx context.Context) (Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(), nil)
	if err != nil {
		return Status{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(constants.DeliverySecretHeader, c.lock.Secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("failed to query daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return Status{}, fmt.Errorf("failed to decode status: %w", err)
	}
	return st, nil
}
