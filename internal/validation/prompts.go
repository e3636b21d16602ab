package validation

import (
	"fmt"
	"strings"

	"github.com/julianstephens/dayreflect/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictEmptyPromptSet     ConflictType = "empty_prompt_set"
	ConflictDuplicatePromptID  ConflictType = "duplicate_prompt_id"
	ConflictInvalidPrompt      ConflictType = "invalid_prompt"
	ConflictMissingPerspective ConflictType = "missing_perspective"
)

// Conflict represents a problem detected in a prompt set
type Conflict struct {
	Type        ConflictType
	Description string
	PromptID    string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Err returns the report as an error, or nil when there are no conflicts.
func (vr *ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	return fmt.Errorf("%s", strings.TrimSpace(vr.FormatReport()))
}

// ValidatePrompts checks a prompt set for structural problems. When hasPerspective
// is non-nil, every option is also checked for an authored perspective.
func ValidatePrompts(prompts []models.Prompt, hasPerspective func(promptID, optionID string) bool) ValidationResult {
	var result ValidationResult

	if len(prompts) == 0 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictEmptyPromptSet,
			Description: "prompt set is empty",
		})
		return result
	}

	seen := make(map[string]bool, len(prompts))
	for _, p := range prompts {
		if seen[p.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicatePromptID,
				Description: fmt.Sprintf("duplicate prompt id %q", p.ID),
				PromptID:    p.ID,
			})
			continue
		}
		seen[p.ID] = true

		if err := p.Validate(); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidPrompt,
				Description: err.Error(),
				PromptID:    p.ID,
			})
			continue
		}

		if hasPerspective == nil {
			continue
		}
		for _, o := range p.Options {
			if !hasPerspective(p.ID, o.ID) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMissingPerspective,
					Description: fmt.Sprintf("prompt %q: option %q has no perspective and will use the fallback", p.ID, o.ID),
					PromptID:    p.ID,
				})
			}
		}
	}

	return result
}
