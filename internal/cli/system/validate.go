package system

import (
	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/perspective"
	"github.com/julianstephens/dayreflect/internal/prompts"
	"github.com/julianstephens/dayreflect/internal/validation"
)

// ValidateCmd checks a prompt set for structural problems and for options
// without an authored perspective. Conflicts are reported, not returned.
type ValidateCmd struct {
	File string `arg:"" optional:"" help:"Prompt set YAML to check. Defaults to the configured set." type:"path"`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	path := cmd.File
	if path == "" {
		path = ctx.Settings().PromptsFile
	}

	var set []models.Prompt
	if path == "" {
		ctx.Println("Validating built-in prompts...")
		set = prompts.Builtin()
	} else {
		ctx.Printf("Validating %s...\n", path)
		loaded, err := prompts.LoadFile(path)
		if err != nil {
			return err
		}
		set = loaded
	}

	result := validation.ValidatePrompts(set, perspective.Default().Has)
	ctx.Println()
	ctx.Println(result.FormatReport())
	return nil
}
