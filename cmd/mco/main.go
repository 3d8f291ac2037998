// Package main provides the mco CLI entrypoint.
//
// Usage:
//
//	mco <command> [options]
//
// Exit codes for review/run, per §6:
//   - 0: PASS
//   - 1: FAIL
//   - 2: ESCALATE
//   - 3: PARTIAL
//   - 64: usage error
//   - 70: internal error
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mco-dev/mco/internal/clicmd"
	"github.com/mco-dev/mco/internal/types"
)

// commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "mco",
		Usage:          "Multi-CLI orchestrator for AI coding agents",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			clicmd.ReviewCommand(),
			clicmd.RunCommand(),
			clicmd.InspectCommand(),
			clicmd.ListCommand(),
			clicmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes set via cli.Exit so the
// decision-to-exit-code mapping in clicmd reaches the shell.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
