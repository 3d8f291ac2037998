package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mco-dev/mco/internal/adapter"
	"github.com/mco-dev/mco/internal/dispatcher"
	"github.com/mco-dev/mco/internal/types"
)

func TestModelViewRendersPendingProviders(t *testing.T) {
	d := dispatcher.New(adapter.NewRegistry(), 0, nil)
	done := make(chan dispatcher.DispatchResult, 1)
	m := New(d, []string{"claude", "codex"}, types.Policy{}, done)

	view := m.View()
	if !strings.Contains(view, "claude:") || !strings.Contains(view, "codex:") {
		t.Errorf("View() = %q, want rows for claude and codex", view)
	}
	if !strings.Contains(view, "pending") {
		t.Errorf("View() = %q, want pending state before any tick", view)
	}
}

func TestModelUpdateQuitsOnDoneMsg(t *testing.T) {
	d := dispatcher.New(adapter.NewRegistry(), 0, nil)
	done := make(chan dispatcher.DispatchResult, 1)
	m := New(d, []string{"claude"}, types.Policy{}, done)

	result := dispatcher.DispatchResult{RunResult: types.RunResult{TaskID: "t1"}}
	next, cmd := m.Update(doneMsg{result: result})
	nm := next.(Model)

	if nm.Result() == nil || nm.Result().RunResult.TaskID != "t1" {
		t.Errorf("Result() = %v, want TaskID t1", nm.Result())
	}
	if cmd == nil {
		t.Error("expected a tea.Quit command after doneMsg")
	}
}

func TestModelUpdateQuitsOnQKey(t *testing.T) {
	d := dispatcher.New(adapter.NewRegistry(), 0, nil)
	done := make(chan dispatcher.DispatchResult, 1)
	m := New(d, []string{"claude"}, types.Policy{}, done)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("expected a tea.Quit command after 'q'")
	}
}

func TestStateGlyphKnownStates(t *testing.T) {
	tests := []struct {
		state string
		want  string
	}{
		{string(types.StateExitedOK), "✓"},
		{string(types.StateExitedErr), "✗"},
		{string(types.StateSkippedUndetected), "–"},
	}
	for _, tt := range tests {
		got := stateGlyph(tt.state, "*")
		if !strings.Contains(got, tt.want) {
			t.Errorf("stateGlyph(%q) = %q, want to contain %q", tt.state, got, tt.want)
		}
	}
}

func TestStallFractionClampsToWindow(t *testing.T) {
	d := dispatcher.New(adapter.NewRegistry(), 0, nil)
	done := make(chan dispatcher.DispatchResult, 1)
	policy := types.Policy{StallTimeoutSeconds: 10}
	m := New(d, []string{"claude"}, policy, done)

	tests := []struct {
		elapsed time.Duration
		state   types.RunState
		want    float64
	}{
		{elapsed: 5 * time.Second, state: types.StateRunning, want: 0.5},
		{elapsed: 20 * time.Second, state: types.StateRunning, want: 1},
		{elapsed: 20 * time.Second, state: types.StateExitedOK, want: 1},
	}
	for _, tt := range tests {
		snap := dispatcher.ProviderSnapshot{ProviderID: "claude", RunState: tt.state, Elapsed: tt.elapsed}
		if got := m.stallFraction("claude", snap); got != tt.want {
			t.Errorf("stallFraction(elapsed=%v, state=%v) = %v, want %v", tt.elapsed, tt.state, got, tt.want)
		}
	}
}

func TestPollIntervalIsPositive(t *testing.T) {
	if pollInterval <= 0 {
		t.Error("pollInterval must be positive")
	}
	if pollInterval >= time.Second {
		t.Error("pollInterval should be sub-second for a responsive view")
	}
}
