// Package aggregate implements the pure decision function and the
// RunResult assembly step, grounded on the teacher's split between
// DetermineOutcome (pure classification) and buildResult (side-effecting
// assembly) in runtime/run.go.
package aggregate

import (
	"sort"
	"time"

	"github.com/mco-dev/mco/internal/types"
)

// Decide applies the review-mode decision table in order, first match
// wins, per §4.5. Decide is a pure function of providerResults: same
// inputs always produce the same decision.
func Decide(mode types.Mode, providerResults map[string]types.ProviderResult) types.Decision {
	if mode == types.ModeRun {
		return decideRunMode(providerResults)
	}
	return decideReviewMode(providerResults)
}

func decideReviewMode(results map[string]types.ProviderResult) types.Decision {
	anySucceeded := false
	anyCriticalFinding := false
	anyHighFinding := false
	anyDegraded := false

	for _, r := range results {
		if succeeded(r.RunState) {
			anySucceeded = true
		}
		if degraded(r.RunState) {
			anyDegraded = true
		}
		for _, f := range r.Findings {
			switch f.Severity {
			case types.SeverityCritical:
				anyCriticalFinding = true
			case types.SeverityHigh:
				anyHighFinding = true
			}
		}
	}

	switch {
	case anyCriticalFinding:
		return types.DecisionFail
	case !anySucceeded:
		return types.DecisionFail
	case anyDegraded:
		return types.DecisionPartial
	case anyHighFinding:
		return types.DecisionEscalate
	default:
		return types.DecisionPass
	}
}

func decideRunMode(results map[string]types.ProviderResult) types.Decision {
	succeededCount, total := 0, 0
	for _, r := range results {
		total++
		if succeeded(r.RunState) {
			succeededCount++
		}
	}
	switch {
	case succeededCount == 0:
		return types.DecisionFail
	case succeededCount < total:
		return types.DecisionPartial
	default:
		return types.DecisionPass
	}
}

// succeeded reports whether a provider reached a terminal, non-cancelled,
// non-error state.
func succeeded(s types.RunState) bool {
	return s == types.StateExitedOK
}

// degraded reports whether a provider ended in one of the states that,
// alongside at least one success, yields PARTIAL.
func degraded(s types.RunState) bool {
	switch s {
	case types.StateCancelledStall, types.StateCancelledHard, types.StateSpawnFailed,
		types.StateExitedErr, types.StateSkippedUndetected:
		return true
	default:
		return false
	}
}

// BuildRunResult assembles the final RunResult from per-provider results,
// in the task's canonical provider order. Findings are tagged with their
// provider_id and assigned a stable per-provider ordinal if the adapter
// did not already provide one, and the aggregated findings list is the
// concatenation of per-provider findings in provider order (stable).
func BuildRunResult(taskID string, mode types.Mode, startedAt, endedAt time.Time, providerOrder []string, results map[string]types.ProviderResult) types.RunResult {
	normalized := make(map[string]types.ProviderResult, len(results))
	var allFindings []types.Finding

	for _, id := range providerOrder {
		r, ok := results[id]
		if !ok {
			continue
		}
		r.Findings = normalizeFindings(id, r.Findings)
		normalized[id] = r
		allFindings = append(allFindings, r.Findings...)
	}

	return types.RunResult{
		TaskID:          taskID,
		Mode:            mode,
		StartedAt:       startedAt,
		EndedAt:         endedAt,
		Decision:        Decide(mode, normalized),
		ProviderResults: normalized,
		Findings:        allFindings,
	}
}

func normalizeFindings(providerID string, in []types.Finding) []types.Finding {
	out := make([]types.Finding, len(in))
	for i, f := range in {
		f.ProviderID = providerID
		if f.Ordinal == 0 {
			f.Ordinal = i
		}
		out[i] = f.Truncate()
	}
	return out
}

// SortedProviderIDs returns the keys of a provider_results map in
// deterministic order, for callers (e.g. the artifact writer) that need
// a stable iteration order distinct from the task's provider order (for
// example when reconstructing a RunResult read back from disk).
func SortedProviderIDs(results map[string]types.ProviderResult) []string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
