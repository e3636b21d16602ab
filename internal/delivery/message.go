package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dayreflect/internal/constants"
)

// ErrUnknownMessage is returned for a message type the engine does not handle.
var ErrUnknownMessage = errors.New("delivery: unknown message type")

// ErrMalformedMessage is returned when a message cannot be decoded.
var ErrMalformedMessage = errors.New("delivery: malformed message")

var errMissingTitle = errors.New("schedule message requires a title")

// Message is the wire form accepted by HandleMessage. NotifyAt is Unix milliseconds.
type Message struct {
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body,omitempty"`
	NotifyAt int64  `json:"notifyAt,omitempty"`
	Action   string `json:"action,omitempty"`
}

// ScheduleMessage builds a SCHEDULE_NOTIFICATION message.
func ScheduleMessage(title, body string, at time.Time) Message {
	return Message{Type: constants.ScheduleMessageType, Title: title, Body: body, NotifyAt: at.UnixMilli()}
}

// ClickMessage builds a NOTIFICATION_CLICK message.
func ClickMessage(action string) Message {
	return Message{Type: constants.ClickMessageType, Action: action}
}

// HandleMessage decodes raw and dispatches it.
func (e *Engine) HandleMessage(ctx context.Context, raw []byte) error {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return e.Dispatch(ctx, msg)
}

func (e *Engine) Dispatch(ctx context.Context, msg Message) error {
	switch msg.Type {
	case constants.ScheduleMessageType:
		if msg.Title == "" {
			return errMissingTitle
		}
		_, err := e.Schedule(ctx, Request{
			Title:    msg.Title,
			Body:     msg.Body,
			NotifyAt: time.UnixMilli(msg.NotifyAt),
		})
		return err
	case constants.ClickMessageType:
		return e.HandleInteraction(ctx, msg.Action)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}
