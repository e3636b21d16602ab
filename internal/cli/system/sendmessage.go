package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/delivery"
)

// SendMessageCmd posts one message to the running delivery daemon.
type SendMessageCmd struct {
	Type   string        `arg:"" enum:"schedule,click" help:"Message type: schedule or click."`
	Title  string        `help:"Notification title (schedule)."`
	Body   string        `help:"Notification body (schedule)."`
	At     string        `help:"Delivery time as RFC3339 (schedule)."`
	In     time.Duration `help:"Delivery delay from now (schedule)."`
	Action string        `help:"Notification action (click)." default:"open"`
}

func (c *SendMessageCmd) message(now time.Time) (delivery.Message, error) {
	switch c.Type {
	case "schedule":
		if c.Title == "" {
			return delivery.Message{}, errors.New("--title is required for schedule messages")
		}
		at := now.Add(c.In)
		if c.At != "" {
			t, err := time.Parse(time.RFC3339, c.At)
			if err != nil {
				return delivery.Message{}, fmt.Errorf("invalid --at: %w", err)
			}
			at = t
		}
		return delivery.ScheduleMessage(c.Title, c.Body, at), nil
	case "click":
		switch c.Action {
		case constants.NotificationActionOpen, constants.NotificationActionDrop:
		default:
			return delivery.Message{}, fmt.Errorf("unknown action %q", c.Action)
		}
		return delivery.ClickMessage(c.Action), nil
	}
	return delivery.Message{}, fmt.Errorf("unknown message type %q", c.Type)
}

func (c *SendMessageCmd) Run(ctx *cli.Context) error {
	msg, err := c.message(ctx.Clock()())
	if err != nil {
		return err
	}

	client, err := delivery.Dial(delivery.LockfilePath(ctx.ConfigDir))
	if err != nil {
		return err
	}
	if err := client.Send(context.Background(), msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	ctx.Println("✓ Message accepted")
	return nil
}
