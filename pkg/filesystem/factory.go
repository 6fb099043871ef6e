package filesystem

import (
	"fmt"
)

// CreateFileSystem creates a FileSystem for the given path.
// Returns (filesystem, basePath, closer, error).
// - filesystem: The FileSystem to use for operations
// - basePath: The actual path to use with the filesystem (stripped of URL prefix)
// - closer: A function to call when done (closes SFTP connections), or nil for local
func CreateFileSystem(pathStr string) (FileSystem, string, func(), error) {
	parsed, err := ParsePath(pathStr)
	if err != nil {
		return nil, "", nil, err
	}

	if !parsed.IsRemote {
		return NewRealFileSystem(), parsed.LocalPath, nil, nil
	}

	conn, err := Connect(parsed.Host, parsed.Port, parsed.User)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to connect to %s@%s:%d: %w",
			parsed.User, parsed.Host, parsed.Port, err)
	}

	fs := NewSFTPFileSystem(conn)
	closer := func() {
		_ = conn.Close()
	}

	return fs, parsed.Path, closer, nil
}

// CreateFileSystemPair creates filesystems for input and output paths.
// Returns (inputFS, outputFS, inPath, outPath, closer, error).
// The closer function should be called when done to clean up any connections.
func CreateFileSystemPair(inputPath, outputPath string) (
	inputFS FileSystem,
	outputFS FileSystem,
	inPath string,
	outPath string,
	closer func(),
	err error,
) {
	var inCloser, outCloser func()

	inputFS, inPath, inCloser, err = CreateFileSystem(inputPath)
	if err != nil {
		return nil, nil, "", "", nil, fmt.Errorf("failed to create input filesystem: %w", err)
	}

	outputFS, outPath, outCloser, err = CreateFileSystem(outputPath)
	if err != nil {
		// Clean up input side if output fails
		if inCloser != nil {
			inCloser()
		}

		return nil, nil, "", "", nil, fmt.Errorf("failed to create output filesystem: %w", err)
	}

	closer = func() {
		if inCloser != nil {
			inCloser()
		}
		if outCloser != nil {
			outCloser()
		}
	}

	return inputFS, outputFS, inPath, outPath, closer, nil
}
