package clicmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mco-dev/mco/internal/config"
	"github.com/mco-dev/mco/internal/reader"
	"github.com/mco-dev/mco/internal/render"
)

// listWarningThreshold is the number of items above which we warn about using --limit.
const listWarningThreshold = 100

// ListCommand returns the list command. Lists known task_ids under an
// artifact base, newest first; must not mutate state.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List known tasks under an artifact base",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "artifact-base",
				Usage: "Artifact base directory (defaults to mco.json's artifact_base)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of tasks to return (0 = no limit)",
				Value: 0,
			},
		),
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	cfg, err := config.Load("mco.json")
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}
	base := cfg.ArtifactBase
	if v := c.String("artifact-base"); v != "" {
		base = v
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}

	fr := reader.NewFSReader(base)
	limit := c.Int("limit")
	items, err := fr.ListTasks(reader.ListTasksOptions{Limit: limit})
	if err != nil {
		return cli.Exit(err.Error(), ExitFail)
	}

	if len(items) > listWarningThreshold && limit == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d results. Consider using --limit to reduce output.\n\n", len(items))
	}

	return r.Render(items)
}

func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
