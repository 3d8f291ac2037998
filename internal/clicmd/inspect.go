package clicmd

import (
	"github.com/urfave/cli/v2"

	"github.com/mco-dev/mco/internal/config"
	"github.com/mco-dev/mco/internal/reader"
	"github.com/mco-dev/mco/internal/render"
)

// InspectCommand returns the inspect command. Loads run.json and the
// per-provider results for a single task; must not mutate state.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect a single task by ID",
		ArgsUsage: "<task-id>",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "artifact-base",
				Usage: "Artifact base directory (defaults to mco.json's artifact_base)",
			},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("task-id required", ExitUsage)
	}
	taskID := c.Args().First()

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
	resp, err := fr.InspectTask(taskID)
	if err != nil {
		return cli.Exit(err.Error(), ExitFail)
	}

	return r.Render(resp)
}
