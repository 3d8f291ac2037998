// Package config loads mco.json (or the optional mco.yaml variant),
// expands environment variables in string fields, and merges CLI flag
// overrides on top, per the config-override-order rule: CLI flags
// override config file values; config file overrides built-in defaults.
//
// Grounded on the teacher's cli/config package: Config.go's field shape
// and strict-decode discipline, and load.go's env-expand-then-decode
// pipeline (cli/config/config.go, cli/config/load.go).
package config

import (
	"github.com/mco-dev/mco/internal/types"
)

// DefaultArtifactBase is the artifact directory used when neither the
// config file nor a CLI flag supplies one.
const DefaultArtifactBase = "reports/review"

// DefaultStateFile is the best-effort last-run marker path.
const DefaultStateFile = ".mco/state.json"

// Config is the top-level shape of mco.json / mco.yaml. All fields are
// optional; CLI flags always take precedence at merge time.
type Config struct {
	Providers    []string     `json:"providers,omitempty" yaml:"providers,omitempty"`
	ArtifactBase string       `json:"artifact_base,omitempty" yaml:"artifact_base,omitempty"`
	StateFile    string       `json:"state_file,omitempty" yaml:"state_file,omitempty"`
	Policy       types.Policy `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// Default returns a Config with the spec's built-in defaults: no fixed
// provider subset (resolved at dispatch time from --providers or the
// full closed set), the default artifact base and state file, and
// types.DefaultPolicy().
func Default() Config {
	return Config{
		ArtifactBase: DefaultArtifactBase,
		StateFile:    DefaultStateFile,
		Policy:       types.DefaultPolicy(),
	}
}

// Merge layers override on top of c, returning a new Config. Only
// non-zero fields of override replace c's fields; this is used to apply
// a config file on top of Default(), and then CLI flag overrides on top
// of that result.
func (c Config) Merge(override Config) Config {
	out := c
	if len(override.Providers) > 0 {
		out.Providers = override.Providers
	}
	if override.ArtifactBase != "" {
		out.ArtifactBase = override.ArtifactBase
	}
	if override.StateFile != "" {
		out.StateFile = override.StateFile
	}
	out.Policy = mergePolicy(out.Policy, override.Policy)
	return out
}

func mergePolicy(base, override types.Policy) types.Policy {
	out := base
	if override.StallTimeoutSeconds != 0 {
		out.StallTimeoutSeconds = override.StallTimeoutSeconds
	}
	if override.ReviewHardTimeoutSeconds != 0 {
		out.ReviewHardTimeoutSeconds = override.ReviewHardTimeoutSeconds
	}
	if override.MaxProviderParallelism != 0 {
		out.MaxProviderParallelism = override.MaxProviderParallelism
	}
	if override.EnforcementMode != "" {
		out.EnforcementMode = override.EnforcementMode
	}
	if len(override.ProviderTimeouts) > 0 {
		out.ProviderTimeouts = override.ProviderTimeouts
	}
	if len(override.ProviderPermissions) > 0 {
		out.ProviderPermissions = override.ProviderPermissions
	}
	if override.Notify.WebhookURL != "" {
		out.Notify.WebhookURL = override.Notify.WebhookURL
	}
	if override.Notify.RedisAddr != "" {
		out.Notify.RedisAddr = override.Notify.RedisAddr
	}
	return out
}
