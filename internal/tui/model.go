package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mco-dev/mco/internal/dispatcher"
	"github.com/mco-dev/mco/internal/types"
)

// pollInterval is how often the model asks the dispatcher for a fresh
// Snapshot. Decoupled from dispatcher.snapshotTickInterval: the TUI can
// refresh its view on its own cadence regardless of how often the
// dispatcher updates its internal counters.
const pollInterval = 150 * time.Millisecond

type tickMsg time.Time

type doneMsg struct {
	result dispatcher.DispatchResult
}

// Model is a Bubble Tea model rendering one row per provider, polling
// Dispatcher.Snapshot() while the dispatch it belongs to is in flight.
type Model struct {
	disp        *dispatcher.Dispatcher
	providerIDs []string
	policy      types.Policy
	done        <-chan dispatcher.DispatchResult

	snapshot map[string]dispatcher.ProviderSnapshot
	spin     spinner.Model
	prog     progress.Model
	result   *dispatcher.DispatchResult
	quitting bool
}

// New creates a Model that renders providerIDs (in task order) and
// waits on done for the final DispatchResult once every provider
// reaches a terminal state. policy supplies each provider's stall
// window, used to size its progress bar's fraction-of-window fill.
func New(disp *dispatcher.Dispatcher, providerIDs []string, policy types.Policy, done <-chan dispatcher.DispatchResult) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = WarningStyle
	return Model{
		disp:        disp,
		providerIDs: providerIDs,
		policy:      policy,
		done:        done,
		snapshot:    make(map[string]dispatcher.ProviderSnapshot),
		spin:        s,
		prog:        progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, pollCmd(), waitDoneCmd(m.done))
}

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitDoneCmd(done <-chan dispatcher.DispatchResult) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{result: <-done}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		for _, s := range m.disp.Snapshot() {
			m.snapshot[s.ProviderID] = s
		}
		return m, pollCmd()

	case doneMsg:
		r := msg.result
		m.result = &r
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting && m.result != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("mco dispatch"))
	b.WriteString("\n\n")

	for _, id := range m.providerIDs {
		snap, ok := m.snapshot[id]
		label := LabelStyle.Render(id + ":")
		if !ok {
			b.WriteString(fmt.Sprintf("%s %s\n", label, MutedStyle.Render("pending")))
			continue
		}

		state := string(snap.RunState)
		glyph := stateGlyph(state, m.spin.View())
		stateText := RunStateStyle(state).Render(state)
		detail := ValueStyle.Render(fmt.Sprintf("%db out / %db err / %s", snap.StdoutBytes, snap.StderrBytes, snap.Elapsed.Round(time.Second)))
		bar := m.prog.ViewAs(m.stallFraction(id, snap))
		b.WriteString(fmt.Sprintf("%s %s %s  %s  %s\n", label, glyph, stateText, bar, detail))
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return BoxStyle.Render(b.String()) + "\n" + help
}

// Result returns the final DispatchResult once the program has quit
// after receiving doneMsg, or nil if the user quit early.
func (m Model) Result() *dispatcher.DispatchResult {
	return m.result
}

// stallFraction returns how far snap's elapsed time is into id's stall
// window, clamped to [0, 1]. For terminal states it shows 1 (full) on
// a clean exit or the fraction at cancellation otherwise, giving a
// quick visual read of "how close to stalling did this get."
func (m Model) stallFraction(id string, snap dispatcher.ProviderSnapshot) float64 {
	window := time.Duration(m.policy.StallWindowFor(id)) * time.Second
	if window <= 0 {
		return 0
	}
	if snap.RunState == types.StateExitedOK {
		return 1
	}
	f := snap.Elapsed.Seconds() / window.Seconds()
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func stateGlyph(state, spinnerFrame string) string {
	switch state {
	case "running", "stalling", "cancelling", "admitted", "spawning":
		return spinnerFrame
	case "exited_ok":
		return SuccessStyle.Render("✓")
	case "exited_err", "cancelled_stall", "cancelled_hard", "spawn_failed":
		return ErrorStyle.Render("✗")
	case "skipped_undetected":
		return MutedStyle.Render("–")
	default:
		return " "
	}
}
