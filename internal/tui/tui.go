package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mco-dev/mco/internal/dispatcher"
	"github.com/mco-dev/mco/internal/types"
)

// Run dispatches task through disp while rendering a live Bubble Tea
// view of each provider's progress, and returns the same
// DispatchResult Dispatch itself would have returned. disp.Dispatch
// runs on its own goroutine; the returned program exits only once the
// dispatch has completed (or the user quits early, in which case Run
// still blocks until the in-flight dispatch finishes, since wait-all
// cannot be skipped).
func Run(ctx context.Context, disp *dispatcher.Dispatcher, task types.Task) (dispatcher.DispatchResult, error) {
	done := make(chan dispatcher.DispatchResult, 1)
	go func() {
		done <- disp.Dispatch(ctx, task)
	}()

	model := New(disp, task.ProviderIDs, task.Policy, done)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return <-done, err
	}

	m := finalModel.(Model)
	if r := m.Result(); r != nil {
		return *r, nil
	}
	// The user quit before the dispatch finished; wait-all still
	// applies, so block for the result that's already in flight.
	return <-done, nil
}
