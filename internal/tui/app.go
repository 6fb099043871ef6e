// Package tui renders reconciliation progress with bubble tea.
// It consumes the engine's event stream through an EventBridge; the engine
// itself never touches terminal state.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joe/mirror-tree/internal/syncengine"
)

const defaultBarWidth = 40

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	phaseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// EngineDoneMsg signals that the engine run returned, successfully or not.
type EngineDoneMsg struct {
	Err error
}

// Model is the bubble tea model for a reconciliation run.
type Model struct {
	bridge *EventBridge
	cancel func()

	bar       progress.Model
	phase     string
	current   string
	completed int
	total     int
	deleted   int
	pruned    int
	failures  int

	summary *syncengine.Summary
	runErr  error
}

// NewModel creates a model listening on the given bridge.
// cancel is invoked when the user aborts with q or ctrl+c.
func NewModel(bridge *EventBridge, cancel func()) *Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = defaultBarWidth

	return &Model{
		bridge: bridge,
		cancel: cancel,
		bar:    bar,
		phase:  "starting",
	}
}

// Summary returns the run summary once the engine has finished.
func (m *Model) Summary() *syncengine.Summary {
	return m.summary
}

// Err returns the engine's fatal error, if any.
func (m *Model) Err() error {
	return m.runErr
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.bridge.ListenCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, defaultBarWidth*2)

		return m, nil

	case EngineDoneMsg:
		m.runErr = msg.Err

		return m, tea.Quit

	case EngineEventMsg:
		m.apply(msg.Event)

		return m, m.bridge.ListenCmd()
	}

	return m, nil
}

// apply folds one engine event into the display state.
func (m *Model) apply(event syncengine.Event) {
	switch event := event.(type) {
	case syncengine.EnumerateStarted:
		m.phase = "enumerating " + event.Target
	case syncengine.PlanStarted:
		m.phase = "planning"
	case syncengine.CopyStarted:
		m.phase = "copying"
		m.total = event.Total
	case syncengine.FileCopied:
		m.current = event.Path
		m.completed = event.Completed
		m.total = event.Total
	case syncengine.CleanStarted:
		m.phase = "cleaning stale files"
	case syncengine.FileDeleted:
		m.current = event.Path
		m.deleted++
	case syncengine.PruneStarted:
		m.phase = "pruning empty directories"
	case syncengine.DirPruned:
		m.current = event.Path
		m.pruned++
	case syncengine.ItemFailed:
		m.failures++
	case syncengine.RunComplete:
		m.summary = event.Summary
		m.phase = "done"
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	view := titleStyle.Render("mirror-tree") + "\n"
	view += phaseStyle.Render(m.phase) + "\n"

	if m.total > 0 {
		view += m.bar.ViewAs(float64(m.completed)/float64(m.total))
		view += fmt.Sprintf(" %d/%d\n", m.completed, m.total)
	}

	if m.current != "" {
		view += currentStyle.Render(m.current) + "\n"
	}

	if m.failures > 0 {
		view += errorStyle.Render(fmt.Sprintf("%d item(s) failed", m.failures)) + "\n"
	}

	return view
}
