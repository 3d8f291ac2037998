package clicmd

import (
	"github.com/urfave/cli/v2"

	"github.com/mco-dev/mco/internal/render"
	"github.com/mco-dev/mco/internal/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command. Must not spawn any
// adapter subprocess.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return cli.Exit(err.Error(), ExitUsage)
		}
		resp := VersionResponse{Version: types.Version, Commit: commit}
		return r.Render(resp)
	}
}
