// Package clicmd implements the mco CLI's commands: review, run,
// inspect, list, and version. Grounded on the teacher's cli/cmd package
// (flags.go, inspect.go, list.go, version.go, run.go) and
// cmd/quarry/main.go's ExitErrHandler, adapted from Quarry's
// run/job/proxy/executor domain to MCO's task/provider domain.
package clicmd

import "github.com/urfave/cli/v2"

// FormatFlag selects output format: json, table, yaml.
var FormatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Usage:   "Output format: json, table, yaml",
}

// NoColorFlag disables colored output.
var NoColorFlag = &cli.BoolFlag{
	Name:  "no-color",
	Usage: "Disable colored output",
}

// ReadOnlyFlags returns the shared flags for read-only commands
// (inspect, list, version).
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{FormatFlag, NoColorFlag}
}

// Exit codes for review/run, per the decision-to-exit-code mapping.
const (
	ExitPass     = 0
	ExitFail     = 1
	ExitEscalate = 2
	ExitPartial  = 3
	ExitUsage    = 64
	ExitInternal = 70
)
