package clicmd

import (
	"github.com/urfave/cli/v2"

	"github.com/mco-dev/mco/internal/types"
)

// RunCommand returns the run command: dispatches the prompt to every
// admitted provider and captures free-text payload only, with no
// findings normalization.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Dispatch a free-form prompt to every configured provider",
		Flags:  dispatchFlags(),
		Action: runDispatch(types.ModeRun),
	}
}
