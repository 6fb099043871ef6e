package syncengine

import (
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/joe/mirror-tree/pkg/filesystem"
)

// DefaultEnumerateWorkers caps concurrent directory reads during enumeration.
// Unbounded fan-out exhausts file descriptors on large trees.
const DefaultEnumerateWorkers = 8

// EnumerateOptions configures a tree enumeration.
type EnumerateOptions struct {
	// FullPath renders results as absolute paths joined with the root
	// instead of root-relative paths.
	FullPath bool

	// AsRoot renders relative paths as if rooted at "/".
	AsRoot bool

	// IncludeDirectories adds directory entries to the result set.
	// Recursion into directories happens regardless.
	IncludeDirectories bool

	// Filter is applied to every candidate path. Rejected candidates are
	// excluded from the result, but rejected directories are still
	// recursed into. Nil means accept all.
	Filter PathFilter

	// Workers bounds the number of concurrent directory reads.
	// Zero or negative means DefaultEnumerateWorkers.
	Workers int
}

// Enumerate recursively lists every file (optionally every directory)
// under root, keyed by rendered path. Entries carry size/mtime metadata
// from the listing so planners need no extra stat calls.
//
// Any directory that cannot be read aborts the whole enumeration: a
// partial tree view would silently corrupt the diff.
func Enumerate(fsys filesystem.FileSystem, root string, opts EnumerateOptions) (map[string]filesystem.FileInfo, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultEnumerateWorkers
	}

	w := &treeWalker{
		fsys:   fsys,
		root:   root,
		opts:   opts,
		filter: normalizeFilter(opts.Filter),
		sem:    make(chan struct{}, workers),
		found:  make(map[string]filesystem.FileInfo),
	}

	w.wg.Add(1)
	go w.walk(root, "")
	w.wg.Wait()

	if w.err != nil {
		return nil, w.err
	}

	return w.found, nil
}

// treeWalker fans out one goroutine per subdirectory, with a semaphore
// bounding how many directory reads are in flight at once. Goroutines are
// cheap; open directory handles are not.
type treeWalker struct {
	fsys   filesystem.FileSystem
	root   string
	opts   EnumerateOptions
	filter PathFilter

	sem chan struct{}
	wg  sync.WaitGroup

	mu    sync.Mutex
	found map[string]filesystem.FileInfo

	failed  atomic.Bool
	errOnce sync.Once
	err     error
}

func (w *treeWalker) walk(dir, rel string) {
	defer w.wg.Done()

	if w.failed.Load() {
		return
	}

	w.sem <- struct{}{}
	entries, err := w.fsys.ReadDir(dir)
	<-w.sem

	if err != nil {
		w.fail(err)
		return
	}

	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		childAbs := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if w.opts.IncludeDirectories && w.filter.ShouldInclude(childRel) {
				w.record(childRel, entry)
			}

			// Recurse even when the filter rejected the directory:
			// the filter governs inclusion, not traversal.
			w.wg.Add(1)
			go w.walk(childAbs, childRel)

			continue
		}

		if w.filter.ShouldInclude(childRel) {
			w.record(childRel, entry)
		}
	}
}

// record stores one candidate under its rendered key. Set semantics: a
// rendered path can only be recorded once per walk because every entry
// has a unique relative path.
func (w *treeWalker) record(rel string, entry os.FileInfo) {
	info := filesystem.FileInfo{
		RelativePath: rel,
		Size:         entry.Size(),
		ModTime:      entry.ModTime(),
		IsDir:        entry.IsDir(),
	}

	w.mu.Lock()
	w.found[w.render(rel)] = info
	w.mu.Unlock()
}

func (w *treeWalker) fail(err error) {
	w.failed.Store(true)
	w.errOnce.Do(func() {
		w.err = err
	})
}

// render converts a relative path into the configured result form.
func (w *treeWalker) render(rel string) string {
	switch {
	case w.opts.FullPath:
		return filepath.Join(w.root, rel)
	case w.opts.AsRoot:
		return "/" + rel
	default:
		return rel
	}
}
