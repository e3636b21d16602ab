package daily

import (
	"context"

	"github.com/julianstephens/dayreflect/internal/cli"
)

type ResetCmd struct{}

// Run clears a previous day's session. Today's answers are kept.
func (c *ResetCmd) Run(ctx *cli.Context) error {
	s := ctx.OpenSession(context.Background())
	before := len(s.Responses())
	s.ResetForToday()
	if len(s.Responses()) < before {
		ctx.Println("✓ Cleared responses from a previous day.")
		return nil
	}
	ctx.Println("Nothing to reset; today's session is current.")
	return nil
}
