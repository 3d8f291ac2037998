package clicmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mco-dev/mco/internal/adapter"
	"github.com/mco-dev/mco/internal/artifact"
	"github.com/mco-dev/mco/internal/config"
	"github.com/mco-dev/mco/internal/dispatcher"
	"github.com/mco-dev/mco/internal/log"
	"github.com/mco-dev/mco/internal/notify"
	"github.com/mco-dev/mco/internal/tui"
	"github.com/mco-dev/mco/internal/types"
)

// dispatchFlags returns the flags common to review and run, per §6's
// common-flag list.
func dispatchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "repo", Usage: "Path to the repository under review", Required: true},
		&cli.StringFlag{Name: "prompt", Usage: "Prompt text sent to every provider"},
		&cli.StringFlag{Name: "prompt-file", Usage: "Path to a file containing the prompt (mutually exclusive with --prompt)"},
		&cli.StringFlag{Name: "providers", Usage: "CSV of provider_ids to dispatch (default: all detected)"},
		&cli.StringFlag{Name: "config", Usage: "Path to mco.json/mco.yaml", Value: "mco.json"},
		&cli.BoolFlag{Name: "json", Usage: "Also emit the RunResult document to stdout"},
		&cli.StringFlag{Name: "result-mode", Usage: "artifact, stdout, or both", Value: "artifact"},
		&cli.StringFlag{Name: "allow-paths", Usage: "CSV of paths the providers may read or write"},
		&cli.StringFlag{Name: "target-paths", Usage: "CSV of paths the task is specifically about"},
		&cli.StringFlag{Name: "enforcement-mode", Usage: "strict or lenient"},
		&cli.IntFlag{Name: "stall-timeout", Usage: "Stall timeout override, seconds"},
		&cli.IntFlag{Name: "review-hard-timeout", Usage: "Review hard deadline override, seconds"},
		&cli.IntFlag{Name: "max-parallelism", Usage: "Max concurrent admitted providers override"},
		&cli.StringFlag{Name: "artifact-base", Usage: "Artifact base override"},
		&cli.StringFlag{Name: "webhook-url", Usage: "Notify this URL on completion"},
		&cli.StringFlag{Name: "redis-addr", Usage: "Publish a completion event to this Redis address"},
		&cli.BoolFlag{Name: "tui", Usage: "Show a live progress view while providers run (mutually exclusive with --result-mode stdout or both)"},
	}
}

func csvFlag(c *cli.Context, name string) []string {
	raw := c.String(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func resolvePrompt(c *cli.Context) (string, error) {
	prompt := c.String("prompt")
	promptFile := c.String("prompt-file")
	if prompt != "" && promptFile != "" {
		return "", fmt.Errorf("--prompt and --prompt-file are mutually exclusive")
	}
	if promptFile != "" {
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return "", fmt.Errorf("read --prompt-file: %w", err)
		}
		return string(data), nil
	}
	if prompt == "" {
		return "", fmt.Errorf("--prompt or --prompt-file is required")
	}
	return prompt, nil
}

// buildTask assembles a Task from merged config and CLI flag overrides.
func buildTask(c *cli.Context, mode types.Mode, registry *adapter.Registry) (types.Task, config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return types.Task{}, config.Config{}, fmt.Errorf("load config: %w", err)
	}

	prompt, err := resolvePrompt(c)
	if err != nil {
		return types.Task{}, config.Config{}, err
	}

	repo, err := filepath.Abs(c.String("repo"))
	if err != nil {
		return types.Task{}, config.Config{}, fmt.Errorf("resolve --repo: %w", err)
	}

	providerIDs := csvFlag(c, "providers")
	if len(providerIDs) == 0 {
		providerIDs = cfg.Providers
	}
	if len(providerIDs) == 0 {
		providerIDs = registry.IDs()
	}

	override := config.Config{
		Policy: types.Policy{
			StallTimeoutSeconds:      c.Int("stall-timeout"),
			ReviewHardTimeoutSeconds: c.Int("review-hard-timeout"),
			MaxProviderParallelism:   c.Int("max-parallelism"),
		},
	}
	if v := c.String("artifact-base"); v != "" {
		override.ArtifactBase = v
	}
	cfg = cfg.Merge(override)

	enforcement := cfg.Policy.EnforcementMode
	if v := c.String("enforcement-mode"); v != "" {
		enforcement = types.EnforcementMode(v)
	}
	if enforcement != types.EnforcementStrict && enforcement != types.EnforcementLenient {
		return types.Task{}, config.Config{}, fmt.Errorf("invalid --enforcement-mode: %q", enforcement)
	}

	task := types.Task{
		TaskID:      GenerateTaskID(),
		Mode:        mode,
		Prompt:      prompt,
		RepoPath:    repo,
		ProviderIDs: providerIDs,
		Policy:      cfg.Policy,
		PathConstraints: types.PathConstraints{
			AllowPaths:      csvFlag(c, "allow-paths"),
			TargetPaths:     csvFlag(c, "target-paths"),
			EnforcementMode: enforcement,
		},
	}
	return task, cfg, nil
}

func resolveSink(ctx context.Context, artifactBase string) (artifact.Sink, error) {
	if strings.HasPrefix(artifactBase, "s3://") {
		rest := strings.TrimPrefix(artifactBase, "s3://")
		parts := strings.SplitN(rest, "/", 2)
		cfg := artifact.S3Config{Bucket: parts[0]}
		if len(parts) == 2 {
			cfg.Prefix = parts[1]
		}
		return artifact.NewS3Sink(ctx, cfg)
	}
	return artifact.NewFSSink(artifactBase), nil
}

// resolveNotifier builds a Notifier from --webhook-url/--redis-addr,
// falling back to policy.notify.webhook_url/redis_addr from mco.json
// when the flag wasn't set (CLI flags still win per the config-override
// order).
func resolveNotifier(c *cli.Context, cfg config.Config) notify.Notifier {
	url := c.String("webhook-url")
	if url == "" {
		url = cfg.Policy.Notify.WebhookURL
	}
	if url != "" {
		if wh, err := notify.NewWebhook(notify.WebhookConfig{URL: url}); err == nil {
			return wh
		}
	}

	addr := c.String("redis-addr")
	if addr == "" {
		addr = cfg.Policy.Notify.RedisAddr
	}
	if addr != "" {
		if !strings.Contains(addr, "://") {
			addr = "redis://" + addr
		}
		if rd, err := notify.NewRedis(notify.RedisConfig{URL: addr}); err == nil {
			return rd
		}
	}
	return nil
}

// runDispatch implements both the review and run commands: they differ
// only in Task.Mode, so the flag set, dispatch, artifact-write, notify,
// and exit-code mapping are shared.
func runDispatch(mode types.Mode) cli.ActionFunc {
	return func(c *cli.Context) error {
		registry := adapter.NewRegistry()

		task, cfg, err := buildTask(c, mode, registry)
		if err != nil {
			return cli.Exit(err.Error(), ExitUsage)
		}

		resultMode := c.String("result-mode")
		if resultMode != "artifact" && resultMode != "stdout" && resultMode != "both" {
			return cli.Exit(fmt.Sprintf("invalid --result-mode: %q", resultMode), ExitUsage)
		}
		useTUI := c.Bool("tui")
		if useTUI && (resultMode == "stdout" || resultMode == "both") {
			return cli.Exit("--tui is mutually exclusive with --result-mode stdout/both", ExitUsage)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := log.NewTaskLogger(task.TaskID, string(task.Mode))
		d := dispatcher.New(registry, 0, logger)

		var dr dispatcher.DispatchResult
		if useTUI {
			dr, err = tui.Run(ctx, d, task)
			if err != nil {
				return cli.Exit(err.Error(), ExitInternal)
			}
		} else {
			dr = d.Dispatch(ctx, task)
		}

		var artifactPath string
		if resultMode == "artifact" || resultMode == "both" {
			sink, err := resolveSink(ctx, cfg.ArtifactBase)
			if err != nil {
				return cli.Exit(err.Error(), ExitInternal)
			}
			if err := artifact.NewWriter(sink).Write(ctx, task.TaskID, dr); err != nil {
				return cli.Exit(err.Error(), ExitInternal)
			}
			artifactPath = filepath.Join(cfg.ArtifactBase, task.TaskID)
		}

		if resultMode == "stdout" || resultMode == "both" || c.Bool("json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(dr.RunResult); err != nil {
				return cli.Exit(err.Error(), ExitInternal)
			}
		}

		if n := resolveNotifier(c, cfg); n != nil {
			event := notify.EventFromRunResult(dr.RunResult, artifactPath)
			_ = n.Notify(ctx, event)
			_ = n.Close()
		}

		if cfg.StateFile != "" {
			marker := config.StateMarker{
				TaskID:   task.TaskID,
				Mode:     task.Mode,
				Decision: dr.RunResult.Decision,
				EndedAt:  dr.RunResult.EndedAt,
			}
			_ = config.WriteStateFile(cfg.StateFile, marker)
		}

		return cli.Exit("", decisionExitCode(dr.RunResult.Decision))
	}
}

func decisionExitCode(d types.Decision) int {
	switch d {
	case types.DecisionPass:
		return ExitPass
	case types.DecisionFail:
		return ExitFail
	case types.DecisionEscalate:
		return ExitEscalate
	case types.DecisionPartial:
		return ExitPartial
	default:
		return ExitInternal
	}
}
