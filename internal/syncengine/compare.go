package syncengine

import (
	"time"

	"github.com/joe/mirror-tree/pkg/filesystem"
)

// Comparator decides whether a file already present at both ends is
// equivalent and the copy can be skipped.
//
// Implementations must be permissive on error: when equivalence cannot be
// established (missing output file, stat failure), report non-equivalence
// so the file is copied rather than silently skipped.
type Comparator interface {
	// Equivalent returns true when the files at the two absolute paths are
	// considered the same. An error is scoped to the single file pair; the
	// planner treats it as "not equivalent".
	Equivalent(inputPath, outputPath string) (bool, error)
}

// ComparatorFunc adapts a plain function to the Comparator interface.
type ComparatorFunc func(inputPath, outputPath string) (bool, error)

// Equivalent calls f.
func (f ComparatorFunc) Equivalent(inputPath, outputPath string) (bool, error) {
	return f(inputPath, outputPath)
}

// MetadataComparator is the default Comparator: two files are equivalent
// when they have equal size and equal modification time. Times are
// truncated to whole seconds because SFTP (and FAT) preserve at best
// second precision.
type MetadataComparator struct {
	InputFS  filesystem.FileSystem
	OutputFS filesystem.FileSystem
}

// NewMetadataComparator creates a MetadataComparator over the given filesystems.
func NewMetadataComparator(inputFS, outputFS filesystem.FileSystem) *MetadataComparator {
	return &MetadataComparator{InputFS: inputFS, OutputFS: outputFS}
}

// Equivalent compares size and modification time. Any stat failure on
// either side yields (false, nil): missing information must force a copy,
// never suppress one.
func (c *MetadataComparator) Equivalent(inputPath, outputPath string) (bool, error) {
	inputInfo, err := c.InputFS.Stat(inputPath)
	if err != nil {
		return false, nil //nolint:nilerr // permissive on error: force a copy
	}

	outputInfo, err := c.OutputFS.Stat(outputPath)
	if err != nil {
		return false, nil //nolint:nilerr // permissive on error: force a copy
	}

	if inputInfo.Size() != outputInfo.Size() {
		return false, nil
	}

	inputTime := inputInfo.ModTime().Truncate(time.Second)
	outputTime := outputInfo.ModTime().Truncate(time.Second)

	return inputTime.Equal(outputTime), nil
}

// normalizeComparator returns the comparator itself or the metadata default.
func normalizeComparator(c Comparator, inputFS, outputFS filesystem.FileSystem) Comparator {
	if c == nil {
		return NewMetadataComparator(inputFS, outputFS)
	}

	return c
}
