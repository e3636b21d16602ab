package models

import (
	"fmt"
	"strings"
	"time"
)

// Option is one selectable answer of a Prompt.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Prompt is a single daily reflection question.
type Prompt struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Options     []Option `json:"options" yaml:"options"`
}

// Option returns the option with the given id.
func (p Prompt) Option(id string) (Option, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

func (p Prompt) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("prompt id cannot be empty")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("prompt %q: title cannot be empty", p.ID)
	}
	if len(p.Options) == 0 {
		return fmt.Errorf("prompt %q: at least one option is required", p.ID)
	}
	seen := make(map[string]bool, len(p.Options))
	for _, o := range p.Options {
		if strings.TrimSpace(o.ID) == "" {
			return fmt.Errorf("prompt %q: option id cannot be empty", p.ID)
		}
		if seen[o.ID] {
			return fmt.Errorf("prompt %q: duplicate option id %q", p.ID, o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}

// Response is the user's answer to one prompt.
type Response struct {
	PromptID    string    `json:"promptId"`
	OptionID    string    `json:"optionId"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SessionSnapshot is the persisted subset of the reflection session.
// Prompts and the navigation index are never part of it.
type SessionSnapshot struct {
	Responses       []Response `json:"responses"`
	LastCompletedOn *time.Time `json:"lastCompletedOn,omitempty"`
}
