package syncengine

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/joe/mirror-tree/pkg/filesystem"
)

// hiddenMarkers are OS-generated metadata files that can make a directory
// look non-empty after every real file has been reconciled away.
var hiddenMarkers = map[string]bool{
	".DS_Store":   true,
	"Thumbs.db":   true,
	"desktop.ini": true,
}

// isHiddenMarker reports whether name is an OS marker file, including
// AppleDouble "._*" companions.
func isHiddenMarker(name string) bool {
	return hiddenMarkers[name] || strings.HasPrefix(name, "._")
}

// PruneOptions configures empty directory pruning.
type PruneOptions struct {
	// Filter protects directories from pruning. A rejected directory is
	// never removed and counts as non-empty from its parent's point of
	// view; its children are still visited. Nil means accept all.
	Filter PathFilter

	// DeleteHidden treats OS marker files (.DS_Store, Thumbs.db,
	// desktop.ini, ._*) as deletable, so a directory containing only
	// markers is still considered empty.
	DeleteHidden bool

	// MaxDepth stops recursion at the given depth; directories at the
	// bound are treated as non-removable. Zero means unlimited.
	MaxDepth int
}

// dirPruner removes output directories left empty by stale file cleanup.
// It recurses post-order: a parent's emptiness can only be evaluated after
// every child directory has resolved to retained or removed. The root
// itself (depth 0) is never removed.
type dirPruner struct {
	fsys   filesystem.FileSystem
	root   string
	opts   PruneOptions
	filter PathFilter
	emit   func(Event)

	pruned int
	errs   []ItemError
}

func newDirPruner(fsys filesystem.FileSystem, root string, opts PruneOptions, emit func(Event)) *dirPruner {
	return &dirPruner{
		fsys:   fsys,
		root:   root,
		opts:   opts,
		filter: normalizeFilter(opts.Filter),
		emit:   emit,
	}
}

func (p *dirPruner) prune() (int, []ItemError) {
	p.pruneDir(p.root, "", 0)

	return p.pruned, p.errs
}

// pruneDir resolves one directory to retained (false) or removed (true).
func (p *dirPruner) pruneDir(abs, rel string, depth int) bool {
	entries, err := p.fsys.ReadDir(abs)
	if err != nil {
		// An unreadable directory is retained; cleanup already ran, so
		// this is tolerated per-item rather than aborting the run.
		p.fail(rel, err)

		return false
	}

	var (
		remaining int
		hidden    []string
	)

	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		childAbs := filepath.Join(abs, entry.Name())

		if entry.IsDir() {
			if p.opts.MaxDepth > 0 && depth+1 >= p.opts.MaxDepth {
				// Recursion bound reached: unexplored, so non-removable.
				remaining++
				continue
			}

			if !p.pruneDir(childAbs, childRel, depth+1) {
				remaining++
			}

			continue
		}

		if p.opts.DeleteHidden && isHiddenMarker(entry.Name()) {
			hidden = append(hidden, childAbs)
			continue
		}

		remaining++
	}

	if remaining > 0 || depth == 0 {
		return false
	}

	if !p.filter.ShouldInclude(rel) {
		// Protected by the filter: never pruned, reported non-empty.
		return false
	}

	// Remove leftover marker files first; the directory delete below
	// requires an empty directory.
	for _, markerAbs := range hidden {
		err := p.fsys.Remove(markerAbs)
		if err != nil {
			p.fail(rel, err)

			return false
		}
	}

	err = p.fsys.Remove(abs)
	if err != nil {
		p.fail(rel, err)

		return false
	}

	p.pruned++
	p.emit(DirPruned{Path: rel})

	return true
}

func (p *dirPruner) fail(rel string, err error) {
	p.errs = append(p.errs, ItemError{Phase: PhasePrune, Path: rel, Err: err})
	p.emit(ItemFailed{Phase: PhasePrune, Path: rel, Err: err})
}
