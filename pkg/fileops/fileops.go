// Package fileops provides file operation primitives for copying files
// across filesystem boundaries with progress reporting and cancellation.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/joe/mirror-tree/pkg/filesystem"
)

// Exported constants.
const (
	// BufferSize is the size of the buffer used for file copy operations (32KB)
	BufferSize = 32 * 1024
	// DefaultDirPermissions is the default permission mode for created directories
	DefaultDirPermissions = 0o750
)

// ErrCopyCancelled is returned when a copy is aborted via the cancel channel.
var ErrCopyCancelled = errors.New("copy cancelled")

// ProgressCallback is called during file operations to report progress
type ProgressCallback func(bytesTransferred int64, totalBytes int64, currentFile string)

// FileOps provides file operations with dependency injection for filesystem access.
// Supports dual filesystems for cross-filesystem operations (e.g., local to SFTP).
type FileOps struct {
	SourceFS filesystem.FileSystem // Filesystem holding the input tree
	DestFS   filesystem.FileSystem // Filesystem holding the output tree
}

// NewFileOps creates a new FileOps instance operating on a single filesystem.
func NewFileOps(fs filesystem.FileSystem) *FileOps {
	return &FileOps{SourceFS: fs, DestFS: fs}
}

// NewDualFileOps creates a new FileOps instance with separate input and output filesystems.
func NewDualFileOps(sourceFS, destFS filesystem.FileSystem) *FileOps {
	return &FileOps{SourceFS: sourceFS, DestFS: destFS}
}

// NewRealFileOps creates a new FileOps instance using the real filesystem.
func NewRealFileOps() *FileOps {
	return NewFileOps(filesystem.NewRealFileSystem())
}

// EnsureDir creates the directory (and parents) on the destination filesystem.
// Idempotent if the directory already exists.
func (fo *FileOps) EnsureDir(path string) error {
	err := fo.DestFS.MkdirAll(path, DefaultDirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", path, err)
	}

	return nil
}

// CopyFile copies a file from src (on the source filesystem) to dst (on the
// destination filesystem), creating destination directories as needed and
// preserving the source modification time. If cancelChan is non-nil and
// closed, the copy aborts with ErrCopyCancelled.
// Returns the number of bytes written.
func (fo *FileOps) CopyFile(src, dst string, progress ProgressCallback, cancelChan <-chan struct{}) (int64, error) {
	sourceFile, err := fo.SourceFS.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	err = fo.EnsureDir(filepath.Dir(dst))
	if err != nil {
		return 0, err
	}

	destFile, err := fo.DestFS.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	written, err := fo.copyLoop(sourceFile, destFile, sourceInfo.Size(), src, progress, cancelChan)

	closeErr := destFile.Close()

	if err != nil {
		return written, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	if closeErr != nil {
		return written, fmt.Errorf("failed to finalize %s: %w", dst, closeErr)
	}

	// Preserve modification time so metadata comparison recognizes the copy
	err = fo.DestFS.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())
	if err != nil {
		return written, fmt.Errorf("failed to preserve modification time for %s: %w", dst, err)
	}

	return written, nil
}

// copyLoop copies bytes in BufferSize chunks, reporting progress and
// honoring cancellation between chunks.
func (fo *FileOps) copyLoop(
	src io.Reader,
	dst io.Writer,
	totalBytes int64,
	label string,
	progress ProgressCallback,
	cancelChan <-chan struct{},
) (int64, error) {
	buf := make([]byte, BufferSize)

	var written int64

	for {
		if cancelChan != nil {
			select {
			case <-cancelChan:
				return written, ErrCopyCancelled
			default:
			}
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			w, writeErr := dst.Write(buf[:n])

			written += int64(w)

			if writeErr != nil {
				return written, writeErr
			}

			if w != n {
				return written, io.ErrShortWrite
			}

			if progress != nil {
				progress(written, totalBytes, label)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}

			return written, readErr
		}
	}
}

// StatModTime returns the size and modification time of a file on the given
// filesystem, truncated to whole seconds. Remote filesystems (and FAT) only
// preserve second precision, so comparisons use that granularity.
func StatModTime(fs filesystem.FileSystem, path string) (int64, time.Time, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return 0, time.Time{}, err
	}

	return info.Size(), info.ModTime().Truncate(time.Second), nil
}
