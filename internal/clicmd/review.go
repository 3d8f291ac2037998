package clicmd

import (
	"github.com/urfave/cli/v2"

	"github.com/mco-dev/mco/internal/types"
)

// ReviewCommand returns the review command: dispatches the prompt to
// every admitted provider and normalizes their output into Findings,
// producing a PASS/FAIL/ESCALATE/PARTIAL decision.
func ReviewCommand() *cli.Command {
	return &cli.Command{
		Name:   "review",
		Usage:  "Dispatch a review prompt to every configured provider",
		Flags:  dispatchFlags(),
		Action: runDispatch(types.ModeReview),
	}
}
