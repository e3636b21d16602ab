// Package prompts provides the daily reflection prompt set.
package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/perspective"
	"github.com/julianstephens/dayreflect/internal/validation"
)

// Builtin returns a fresh copy of the default five prompts.
func Builtin() []models.Prompt {
	return []models.Prompt{
		{
			ID:          "gratitude",
			Title:       "What lifted you today?",
			Description: "Capture one small thing that helped you feel grounded or appreciative.",
			Options: []models.Option{
				{ID: "nature", Label: "Fresh air or nature"},
				{ID: "people", Label: "Someone I spoke with"},
				{ID: "self", Label: "A personal win"},
			},
		},
		{
			ID:          "energy",
			Title:       "Where is your energy?",
			Description: "Name the pace you're carrying into the rest of the day.",
			Options: []models.Option{
				{ID: "high", Label: "Buzzing"},
				{ID: "steady", Label: "Even"},
				{ID: "low", Label: "Gentle"},
			},
		},
		{
			ID:          "connection",
			Title:       "Who feels close right now?",
			Description: "Notice the relationships you want to strengthen today.",
			Options: []models.Option{
				{ID: "friend", Label: "A friend"},
				{ID: "family", Label: "Family"},
				{ID: "community", Label: "Community"},
			},
		},
		{
			ID:          "focus",
			Title:       "What deserves your focus?",
			Description: "Pick the area you'll give your best attention.",
			Options: []models.Option{
				{ID: "create", Label: "Creating"},
				{ID: "learn", Label: "Learning"},
				{ID: "rest", Label: "Resting"},
			},
		},
		{
			ID:          "emotion",
			Title:       "What feeling is loudest?",
			Description: "Meet it with curiosity and name it out loud.",
			Options: []models.Option{
				{ID: "joy", Label: "Joy"},
				{ID: "calm", Label: "Calm"},
				{ID: "tension", Label: "Tension"},
			},
		},
	}
}

type promptFile struct {
	Prompts []models.Prompt `yaml:"prompts"`
}

// LoadFile reads and validates a YAML prompt set.
func LoadFile(path string) ([]models.Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML prompt set of the form
//
//	prompts:
//	  - id: energy
//	    title: Where is your energy?
//	    options:
//	      - {id: high, label: Buzzing}
func Parse(data []byte) ([]models.Prompt, error) {
	var f promptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	result := validation.ValidatePrompts(f.Prompts, nil)
	if err := result.Err(); err != nil {
		return nil, err
	}

	for _, w := range validation.ValidatePrompts(f.Prompts, perspective.Default().Has).Conflicts {
		logger.Debug("Prompt option without perspective", "prompt", w.PromptID, "detail", w.Description)
	}
	return f.Prompts, nil
}

// Resolve returns the prompt set from path, or the built-in set when path is
// empty or the file cannot be used.
func Resolve(path string) []models.Prompt {
	if path == "" {
		return Builtin()
	}
	p, err := LoadFile(path)
	if err != nil {
		logger.Warn("Falling back to built-in prompts", "path", path, "error", err)
		return Builtin()
	}
	return p
}
