// Package syncengine implements one-way directory reconciliation: it makes
// an output tree's file set match an input tree's by copying new or changed
// files, deleting stale files, and pruning directories left empty.
package syncengine

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joe/mirror-tree/pkg/fileops"
	"github.com/joe/mirror-tree/pkg/filesystem"
)

// DefaultWorkers is the default copy/enumeration concurrency bound.
const DefaultWorkers = 4

// Phase names used in events and per-item errors.
const (
	PhaseEnumerate = "enumerate"
	PhasePlan      = "plan"
	PhaseCopy      = "copy"
	PhaseClean     = "clean"
	PhasePrune     = "prune"
)

// Exported variables.
var (
	ErrRunCancelled = errors.New("run cancelled")
)

// ItemError records a tolerated per-item failure inside a phase.
type ItemError struct {
	Phase string
	Path  string
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e ItemError) Unwrap() error {
	return e.Err
}

// Summary reports what a run did. Per-item errors are listed but do not
// turn the overall outcome into failure.
type Summary struct {
	Copied  int
	Skipped int
	Deleted int
	Pruned  int
	Errors  []ItemError
}

// Engine reconciles the output tree against the input tree.
// Option fields may be set between NewEngine and Run; zero values mean
// defaults (accept-all filters, metadata comparator, DefaultWorkers).
type Engine struct {
	InputPath  string
	OutputPath string

	// InputFilter and OutputFilter are applied independently to the two
	// enumerations. Stale protection follows the filtered input
	// enumeration: output paths excluded by InputFilter are deleted.
	// Callers wanting them protected must filter both sides alike.
	InputFilter  PathFilter
	OutputFilter PathFilter

	Comparator Comparator
	Workers    int

	CleanStale   bool // delete stale output files (default true)
	PruneEmpty   bool // prune directories left empty (default true)
	DeleteHidden bool // treat OS marker files as deletable when pruning
	MaxDepth     int  // prune recursion bound, 0 = unlimited

	Reporter ProgressReporter
	FileOps  *fileops.FileOps

	inputFS  filesystem.FileSystem
	outputFS filesystem.FileSystem

	emitter    EventEmitter
	cancelChan chan struct{}
	cancelOnce sync.Once
	closeFunc  func()

	logFile *os.File
	logMu   sync.Mutex
}

// NewEngine creates a new reconciliation engine.
// Supports both local paths and SFTP URLs (sftp://user@host:port/path).
// Returns (*Engine, error) where error indicates filesystem setup failure.
func NewEngine(input, output string) (*Engine, error) {
	inputFS, outputFS, inPath, outPath, closer, err := filesystem.CreateFileSystemPair(input, output)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystems: %w", err)
	}

	engine := NewEngineWithFileSystems(inPath, outPath, inputFS, outputFS)
	engine.closeFunc = closer

	return engine, nil
}

// NewEngineWithFileSystems creates an engine over explicit filesystems.
// Used directly by tests with the mock filesystem.
func NewEngineWithFileSystems(inPath, outPath string, inputFS, outputFS filesystem.FileSystem) *Engine {
	return &Engine{
		InputPath:  inPath,
		OutputPath: outPath,
		Workers:    DefaultWorkers,
		CleanStale: true,
		PruneEmpty: true,
		FileOps:    fileops.NewDualFileOps(inputFS, outputFS),
		inputFS:    inputFS,
		outputFS:   outputFS,
		cancelChan: make(chan struct{}),
	}
}

// SetEventEmitter sets the event emitter for UI communication.
// The emitter is optional - if nil, no events will be emitted.
func (e *Engine) SetEventEmitter(emitter EventEmitter) {
	e.emitter = emitter
}

// emit sends an event if an emitter is configured.
// Safe to call even when emitter is nil.
func (e *Engine) emit(event Event) {
	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}

// Cancel stops the run at the next cancellation point.
func (e *Engine) Cancel() {
	e.cancelOnce.Do(func() {
		close(e.cancelChan)
	})
}

// Close cleans up resources, including SFTP connections if any.
// Should be called when done with the engine.
func (e *Engine) Close() {
	e.CloseLog()

	if e.closeFunc != nil {
		e.closeFunc()
	}
}

// Run executes the reconciliation: enumerate both trees, plan, copy,
// clean stale files, prune empty directories. Each phase is a full
// barrier on the previous one.
//
// Enumeration failure is fatal: a partial tree view would produce a
// silently wrong plan. Failures inside the later phases are tolerated
// per item and collected in the summary.
func (e *Engine) Run() (*Summary, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	comparator := normalizeComparator(e.Comparator, e.inputFS, e.outputFS)

	e.logToFile(fmt.Sprintf("run started: %s -> %s", e.InputPath, e.OutputPath))

	input, output, err := e.enumerateTrees(workers)
	if err != nil {
		return nil, err
	}

	if err := e.checkCancellation(); err != nil {
		return nil, err
	}

	// Plan
	e.emit(PlanStarted{})

	plan := BuildPlan(input, output, e.InputPath, e.OutputPath, comparator)

	e.emit(PlanComplete{
		FilesToCopy:   len(plan.Copies),
		FilesToSkip:   len(plan.Skipped),
		FilesToDelete: len(plan.Stale),
		BytesToCopy:   plan.BytesToCopy(),
	})
	e.logToFile(fmt.Sprintf("plan: %d to copy, %d identical, %d stale",
		len(plan.Copies), len(plan.Skipped), len(plan.Stale)))

	summary := &Summary{
		Skipped: len(plan.Skipped),
		Errors:  append([]ItemError(nil), plan.CompareErrors...),
	}

	if err := e.checkCancellation(); err != nil {
		return nil, err
	}

	// Copy
	e.emit(CopyStarted{Total: len(plan.Copies)})

	executor := &copyExecutor{
		ops:      e.FileOps,
		workers:  workers,
		reporter: e.Reporter,
		emit:     e.emit,
		cancel:   e.cancelChan,
	}

	copied, copyErrs := executor.run(plan.Copies)
	summary.Copied = copied
	summary.Errors = append(summary.Errors, copyErrs...)

	e.emit(CopyComplete{Copied: copied})

	if err := e.checkCancellation(); err != nil {
		return nil, err
	}

	// Clean stale output files
	if e.CleanStale {
		e.emit(CleanStarted{Total: len(plan.Stale)})

		cleaner := &staleCleaner{fsys: e.outputFS, root: e.OutputPath, emit: e.emit}
		deleted, cleanErrs := cleaner.clean(plan.Stale)
		summary.Deleted = deleted
		summary.Errors = append(summary.Errors, cleanErrs...)

		e.emit(CleanComplete{Deleted: deleted})
	}

	if err := e.checkCancellation(); err != nil {
		return nil, err
	}

	// Prune directories left empty by cleanup; depends on post-cleanup
	// state, so it runs last.
	if e.PruneEmpty {
		e.emit(PruneStarted{})

		pruner := newDirPruner(e.outputFS, e.OutputPath, PruneOptions{
			Filter:       e.OutputFilter,
			DeleteHidden: e.DeleteHidden,
			MaxDepth:     e.MaxDepth,
		}, e.emit)

		pruned, pruneErrs := pruner.prune()
		summary.Pruned = pruned
		summary.Errors = append(summary.Errors, pruneErrs...)

		e.emit(PruneComplete{Pruned: pruned})
	}

	e.logToFile(fmt.Sprintf("run complete: copied %d, skipped %d, deleted %d, pruned %d, %d item errors",
		summary.Copied, summary.Skipped, summary.Deleted, summary.Pruned, len(summary.Errors)))
	e.emit(RunComplete{Summary: summary})

	return summary, nil
}

// enumerateTrees lists the input and output trees in parallel and joins
// before planning.
func (e *Engine) enumerateTrees(workers int) (input, output map[string]filesystem.FileInfo, err error) {
	var (
		inputErr, outputErr error
		wg                  sync.WaitGroup
	)

	wg.Add(2) //nolint:mnd // Two parallel enumerations

	e.emit(EnumerateStarted{Target: "input"})
	e.emit(EnumerateStarted{Target: "output"})

	go func() {
		defer wg.Done()

		input, inputErr = Enumerate(e.inputFS, e.InputPath, EnumerateOptions{
			Filter:  e.InputFilter,
			Workers: workers,
		})
		if inputErr == nil {
			e.emit(EnumerateComplete{Target: "input", Count: len(input)})
		}
	}()

	go func() {
		defer wg.Done()

		output, outputErr = Enumerate(e.outputFS, e.OutputPath, EnumerateOptions{
			Filter:  e.OutputFilter,
			Workers: workers,
		})
		if outputErr == nil {
			e.emit(EnumerateComplete{Target: "output", Count: len(output)})
		}
	}()

	wg.Wait()

	if inputErr != nil {
		return nil, nil, fmt.Errorf("failed to enumerate input tree: %w", inputErr)
	}

	if outputErr != nil {
		return nil, nil, fmt.Errorf("failed to enumerate output tree: %w", outputErr)
	}

	return input, output, nil
}

// checkCancellation returns ErrRunCancelled if Cancel has been called.
func (e *Engine) checkCancellation() error {
	if cancelled(e.cancelChan) {
		return ErrRunCancelled
	}

	return nil
}

// EnableFileLogging enables logging to a file for debugging
func (e *Engine) EnableFileLogging(logPath string) error {
	f, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	e.logFile = f
	e.logToFile(fmt.Sprintf("=== Run Log Started: %s ===", time.Now().Format(time.RFC3339)))
	e.logToFile("Input: " + e.InputPath)
	e.logToFile("Output: " + e.OutputPath)

	return nil
}

// CloseLog closes the log file if open
func (e *Engine) CloseLog() {
	if e.logFile != nil {
		e.logToFile(fmt.Sprintf("=== Run Log Ended: %s ===", time.Now().Format(time.RFC3339)))
		_ = e.logFile.Close()
		e.logFile = nil
	}
}

func (e *Engine) logToFile(message string) {
	if e.logFile == nil {
		return
	}

	e.logMu.Lock()
	defer e.logMu.Unlock()

	_, _ = fmt.Fprintln(e.logFile, message)
}
