// Package main is the entry point for the mirror-tree application.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/mirror-tree/internal/config"
	"github.com/joe/mirror-tree/internal/syncengine"
	"github.com/joe/mirror-tree/internal/tui"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summary, err := run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printSummary(summary)

	if len(summary.Errors) > 0 {
		os.Exit(1)
	}
}

func run(cfg *config.Config) (*syncengine.Summary, error) {
	engine, err := syncengine.NewEngine(cfg.InputPath, cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	engine.Workers = cfg.Workers
	engine.CleanStale = !cfg.NoClean
	engine.PruneEmpty = !cfg.NoPrune
	engine.DeleteHidden = cfg.DeleteHidden
	engine.MaxDepth = cfg.MaxDepth

	if cfg.Pattern != "" {
		filter := syncengine.NewGlobFilter(cfg.Pattern)
		engine.InputFilter = filter
		engine.OutputFilter = filter
	}

	if cfg.LogFile != "" {
		if err := engine.EnableFileLogging(cfg.LogFile); err != nil {
			return nil, err
		}
	}

	interactive := !cfg.Plain && !cfg.Quiet && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		return runWithTUI(engine)
	}

	if !cfg.Quiet {
		engine.Reporter = syncengine.ReporterFunc(func(current string, completed, total int) {
			fmt.Printf("copied (%d/%d) %s\n", completed, total, current)
		})
	}

	return engine.Run()
}

// runWithTUI runs the engine in the background and renders its event
// stream until the run finishes or the user aborts.
func runWithTUI(engine *syncengine.Engine) (*syncengine.Summary, error) {
	bridge := tui.NewEventBridge()
	engine.SetEventEmitter(bridge)

	model := tui.NewModel(bridge, engine.Cancel)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		_, err := engine.Run()
		program.Send(tui.EngineDoneMsg{Err: err})
	}()

	finalModel, err := program.Run()
	bridge.Close()

	if err != nil {
		return nil, fmt.Errorf("failed to run progress UI: %w", err)
	}

	final, ok := finalModel.(*tui.Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", finalModel) //nolint:err113 // internal invariant
	}

	if final.Err() != nil {
		return nil, final.Err()
	}

	if final.Summary() == nil {
		return nil, syncengine.ErrRunCancelled
	}

	return final.Summary(), nil
}

func printSummary(summary *syncengine.Summary) {
	fmt.Printf("copied %d, identical %d, deleted %d stale, pruned %d directories\n",
		summary.Copied, summary.Skipped, summary.Deleted, summary.Pruned)

	for _, itemErr := range summary.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", itemErr)
	}
}
