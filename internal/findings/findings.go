// Package findings implements the shared finding-recovery pipeline used
// by every adapter's Parse step in review mode: try a whole-document
// JSON decode, then scan for fenced JSON blocks, then fall back to a
// heuristic line scan. None of these failing is an error — it is
// recorded as a parse diagnostic and the caller proceeds with zero
// findings, per the adapter contract.
package findings

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mco-dev/mco/internal/types"
)

// documentShape is what Recover expects a whole-document or fenced-block
// JSON payload to look like.
type documentShape struct {
	Findings []rawFinding `json:"findings"`
}

type rawFinding struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Evidence       string `json:"evidence"`
	Recommendation string `json:"recommendation"`
}

var fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n```")

// heuristicLine matches lines of the loose shape
// "SEVERITY: title - evidence", e.g. "HIGH: sql injection in login - ...".
var heuristicLine = regexp.MustCompile(`(?i)^\s*(critical|high|medium|low|info)\s*[:\-]\s*(.+)$`)

// Recover attempts, in order, a whole-document JSON decode, a scan of
// fenced JSON blocks, and a heuristic line scan of stdout. It returns the
// first strategy that yields at least one finding. If none do, it
// returns zero findings and a non-empty diagnostic — never an error.
func Recover(stdout []byte) (result []types.Finding, diagnostic string) {
	if fs, ok := decodeDocument(stdout); ok && len(fs) > 0 {
		return fs, ""
	}
	if fs, ok := scanFencedBlocks(stdout); ok && len(fs) > 0 {
		return fs, ""
	}
	if fs := scanHeuristicLines(stdout); len(fs) > 0 {
		return fs, ""
	}
	return nil, "no findings recovered: output did not match the JSON document, fenced-block, or heuristic-line shapes"
}

func decodeDocument(raw []byte) ([]types.Finding, bool) {
	var doc documentShape
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(raw)))
	if err := dec.Decode(&doc); err != nil {
		return nil, false
	}
	return convert(doc.Findings), true
}

func scanFencedBlocks(raw []byte) ([]types.Finding, bool) {
	matches := fencedJSONBlock.FindAllSubmatch(raw, -1)
	var out []types.Finding
	for _, m := range matches {
		var doc documentShape
		if err := json.Unmarshal(bytes.TrimSpace(m[1]), &doc); err != nil {
			continue
		}
		out = append(out, convert(doc.Findings)...)
	}
	return out, len(matches) > 0
}

func scanHeuristicLines(raw []byte) []types.Finding {
	var out []types.Finding
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		m := heuristicLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, types.Finding{
			Severity: normalizeSeverity(m[1]),
			Category: "uncategorized",
			Title:    strings.TrimSpace(m[2]),
			Evidence: line,
		})
	}
	return out
}

func convert(raw []rawFinding) []types.Finding {
	out := make([]types.Finding, 0, len(raw))
	for _, r := range raw {
		out = append(out, types.Finding{
			Severity:       normalizeSeverity(r.Severity),
			Category:       defaultString(r.Category, "uncategorized"),
			Title:          r.Title,
			Evidence:       r.Evidence,
			Recommendation: r.Recommendation,
		})
	}
	return out
}

func normalizeSeverity(s string) types.Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return types.SeverityCritical
	case "high":
		return types.SeverityHigh
	case "medium":
		return types.SeverityMedium
	case "low":
		return types.SeverityLow
	default:
		return types.SeverityInfo
	}
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// ErrEmptyPayload is returned by ExtractPayload when run-mode stdout is
// entirely empty.
var ErrEmptyPayload = fmt.Errorf("empty stdout payload")

// ExtractPayload returns the free-text payload for run mode: stdout with
// trailing whitespace trimmed.
func ExtractPayload(stdout []byte) (string, error) {
	trimmed := strings.TrimRight(string(stdout), "\r\n\t ")
	if trimmed == "" {
		return "", ErrEmptyPayload
	}
	return trimmed, nil
}
