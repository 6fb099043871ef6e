package syncengine

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joe/mirror-tree/pkg/filesystem"
)

// staleCleaner deletes output files whose relative path is absent from
// the input enumeration. Each deletion is independent: a failure on one
// path is recorded and the rest are still attempted.
type staleCleaner struct {
	fsys filesystem.FileSystem
	root string
	emit func(Event)
}

func (c *staleCleaner) clean(stale []string) (int, []ItemError) {
	var (
		deleted int
		errs    []ItemError
	)

	for _, rel := range stale {
		abs := filepath.Join(c.root, filepath.FromSlash(rel))

		err := c.fsys.Remove(abs)
		if err != nil {
			// Already gone counts as cleaned: a racing deleter achieved
			// the same outcome.
			if errors.Is(err, os.ErrNotExist) {
				deleted++
				c.emit(FileDeleted{Path: rel})

				continue
			}

			errs = append(errs, ItemError{Phase: PhaseClean, Path: rel, Err: err})
			c.emit(ItemFailed{Phase: PhaseClean, Path: rel, Err: err})

			continue
		}

		deleted++
		c.emit(FileDeleted{Path: rel})
	}

	return deleted, errs
}
