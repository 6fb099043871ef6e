package syncengine

// Event is the interface implemented by all engine events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// Enumeration phase events

// EnumerateStarted is emitted when enumeration begins for a tree ("input" or "output").
type EnumerateStarted struct {
	Target string
}

func (EnumerateStarted) isEvent() {}

// EnumerateComplete is emitted when enumeration finishes for a tree.
type EnumerateComplete struct {
	Target string
	Count  int
}

func (EnumerateComplete) isEvent() {}

// Planning phase events

// PlanStarted is emitted when diff planning begins.
type PlanStarted struct{}

func (PlanStarted) isEvent() {}

// PlanComplete is emitted when planning finishes.
type PlanComplete struct {
	FilesToCopy   int
	FilesToSkip   int
	FilesToDelete int
	BytesToCopy   int64
}

func (PlanComplete) isEvent() {}

// Copy phase events

// CopyStarted is emitted when copy execution begins.
type CopyStarted struct {
	Total int
}

func (CopyStarted) isEvent() {}

// FileCopied is emitted after each file copy completes.
// Completed increases monotonically from 1 to Total.
type FileCopied struct {
	Path      string
	Size      int64
	Completed int
	Total     int
}

func (FileCopied) isEvent() {}

// CopyComplete is emitted when all copy tasks have finished.
type CopyComplete struct {
	Copied int
}

func (CopyComplete) isEvent() {}

// Cleanup phase events

// CleanStarted is emitted when stale file deletion begins.
type CleanStarted struct {
	Total int
}

func (CleanStarted) isEvent() {}

// FileDeleted is emitted after each stale file is deleted.
type FileDeleted struct {
	Path string
}

func (FileDeleted) isEvent() {}

// CleanComplete is emitted when stale file deletion finishes.
type CleanComplete struct {
	Deleted int
}

func (CleanComplete) isEvent() {}

// Prune phase events

// PruneStarted is emitted when empty directory pruning begins.
type PruneStarted struct{}

func (PruneStarted) isEvent() {}

// DirPruned is emitted for each removed directory.
type DirPruned struct {
	Path string
}

func (DirPruned) isEvent() {}

// PruneComplete is emitted when pruning finishes.
type PruneComplete struct {
	Pruned int
}

func (PruneComplete) isEvent() {}

// Error and terminal events

// ItemFailed is emitted when a single item fails inside a phase.
// Per-item failures do not abort the run.
type ItemFailed struct {
	Phase string
	Path  string
	Err   error
}

func (ItemFailed) isEvent() {}

// RunComplete is emitted when all phases have finished.
type RunComplete struct {
	Summary *Summary
}

func (RunComplete) isEvent() {}
