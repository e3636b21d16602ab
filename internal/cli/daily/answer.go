package daily

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/perspective"
)

// AnswerCmd records one or more answers. The session keeps answers only once
// every prompt is answered, so a full day is usually given in one call.
type AnswerCmd struct {
	Answers []string `arg:"" name:"prompt=option" help:"Answers as PROMPT=OPTION pairs."`
}

type answer struct {
	prompt models.Prompt
	option models.Option
}

func parseAnswers(pairs []string, set []models.Prompt) ([]answer, error) {
	byID := make(map[string]models.Prompt, len(set))
	for _, p := range set {
		byID[p.ID] = p
	}

	out := make([]answer, 0, len(pairs))
	for _, pair := range pairs {
		promptID, optionID, ok := strings.Cut(pair, "=")
		promptID, optionID = strings.TrimSpace(promptID), strings.TrimSpace(optionID)
		if !ok || promptID == "" || optionID == "" {
			return nil, fmt.Errorf("invalid answer %q (expected PROMPT=OPTION)", pair)
		}
		p, ok := byID[promptID]
		if !ok {
			return nil, fmt.Errorf("unknown prompt %q", promptID)
		}
		opt, ok := p.Option(optionID)
		if !ok {
			return nil, fmt.Errorf("prompt %q has no option %q (options: %s)", promptID, optionID, optionIDs(p.Options))
		}
		out = append(out, answer{prompt: p, option: opt})
	}
	return out, nil
}

func (c *AnswerCmd) Run(ctx *cli.Context) error {
	s := ctx.Session(context.Background())

	answers, err := parseAnswers(c.Answers, s.Prompts())
	if err != nil {
		return err
	}

	for _, a := range answers {
		s.RecordResponse(a.prompt.ID, a.option.ID)
		ctx.Printf("✓ %s: %s\n", a.prompt.Title, a.option.Label)
		if text, ok := perspective.Reveal(a.prompt.ID, a.option.ID); ok {
			ctx.Printf("  %s\n", text)
		}
	}

	ctx.Println()
	if s.CompletedToday() {
		ctx.Println("All prompts answered for today. See you tomorrow.")
		return nil
	}
	ctx.Printf("Progress: %d/%d answered. Answers are kept once every prompt is answered.\n", len(s.Responses()), len(s.Prompts()))
	return nil
}
