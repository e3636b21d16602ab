// Package daily holds the commands that work with today's reflection prompts.
package daily

import (
	"context"
	"strings"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/perspective"
)

type TodayCmd struct {
	Perspectives bool `help:"Show the perspective for each answered prompt." short:"p"`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	s := ctx.Session(context.Background())
	now := ctx.Clock()().In(ctx.Location())

	ctx.Printf("Reflection for %s (%s)\n\n", now.Format(constants.DateFormat), s.Progress())

	for i, p := range s.Prompts() {
		marker := " "
		if i == s.CurrentIndex() {
			marker = ">"
		}
		ctx.Printf("%s %d. %s\n", marker, i+1, p.Title)

		resp, ok := s.ResponseFor(p.ID)
		if !ok {
			ctx.Printf("     (not answered)  options: %s\n", optionIDs(p.Options))
			continue
		}
		label := resp.OptionID
		if opt, ok := p.Option(resp.OptionID); ok {
			label = opt.Label
		}
		ctx.Printf("     ✓ %s\n", label)
		if c.Perspectives {
			if text, ok := perspective.Reveal(p.ID, resp.OptionID); ok {
				ctx.Printf("       %s\n", text)
			}
		}
	}

	ctx.Println()
	if s.CompletedToday() {
		ctx.Println("All prompts answered for today.")
	} else {
		answered := len(s.Responses())
		ctx.Printf("%d of %d answered.\n", answered, len(s.Prompts()))
	}
	return nil
}

func optionIDs(opts []models.Option) string {
	ids := make([]string, len(opts))
	for i, o := range opts {
		ids[i] = o.ID
	}
	return strings.Join(ids, ", ")
}
