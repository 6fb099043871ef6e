package syncengine

import (
	"sync"

	"github.com/joe/mirror-tree/pkg/fileops"
)

// ProgressReporter receives one callback per completed copy task.
// Completed counts increase monotonically; completion order between
// files is unspecified. The engine never implements rendering itself.
type ProgressReporter interface {
	Report(current string, completed, total int)
}

// ReporterFunc adapts a plain function to the ProgressReporter interface.
type ReporterFunc func(current string, completed, total int)

// Report calls f.
func (f ReporterFunc) Report(current string, completed, total int) {
	f(current, completed, total)
}

// copyExecutor runs the plan's copy tasks on a bounded worker pool.
// A failed copy is recorded and skipped; one missing or locked file must
// not abort the batch.
type copyExecutor struct {
	ops      *fileops.FileOps
	workers  int
	reporter ProgressReporter
	emit     func(Event)
	cancel   <-chan struct{}

	mu        sync.Mutex
	completed int
	copied    int
	errs      []ItemError
}

func (x *copyExecutor) run(tasks []CopyTask) (int, []ItemError) {
	total := len(tasks)
	if total == 0 {
		return 0, nil
	}

	jobs := make(chan CopyTask)

	var wg sync.WaitGroup

	for range x.workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for task := range jobs {
				x.runTask(task, total)
			}
		}()
	}

	for _, task := range tasks {
		if cancelled(x.cancel) {
			break
		}

		jobs <- task
	}

	close(jobs)
	wg.Wait()

	return x.copied, x.errs
}

func (x *copyExecutor) runTask(task CopyTask, total int) {
	if cancelled(x.cancel) {
		return
	}

	_, err := x.ops.CopyFile(task.Source, task.Dest, nil, x.cancel)

	// The completed increment and the Report/emit calls stay under one
	// lock: counts must reach the reporter in increasing order, so no
	// worker may report between another worker's increment and report.
	x.mu.Lock()
	defer x.mu.Unlock()

	x.completed++
	completed := x.completed

	if err != nil {
		x.errs = append(x.errs, ItemError{Phase: PhaseCopy, Path: task.Path, Err: err})
		x.emit(ItemFailed{Phase: PhaseCopy, Path: task.Path, Err: err})

		return
	}

	x.copied++

	// Reporter is called at most once per task, only after completion.
	if x.reporter != nil {
		x.reporter.Report(task.Path, completed, total)
	}

	x.emit(FileCopied{Path: task.Path, Size: task.Size, Completed: completed, Total: total})
}

// cancelled checks the cancel channel without blocking.
func cancelled(cancel <-chan struct{}) bool {
	if cancel == nil {
		return false
	}

	select {
	case <-cancel:
		return true
	default:
		return false
	}
}
