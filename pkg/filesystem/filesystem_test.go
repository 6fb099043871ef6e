//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package filesystem_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/mirror-tree/pkg/filesystem"
)

func TestRealFileSystemReadDir(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	g.Expect(os.WriteFile(filepath.Join(dir, "a.txt"), []byte("aaa"), 0o600)).Should(Succeed())
	g.Expect(os.MkdirAll(filepath.Join(dir, "sub"), 0o750)).Should(Succeed())

	fsys := filesystem.NewRealFileSystem()

	entries, err := fsys.ReadDir(dir)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(entries).Should(HaveLen(2))

	byName := make(map[string]os.FileInfo, len(entries))
	for _, info := range entries {
		byName[info.Name()] = info
	}

	g.Expect(byName["a.txt"].IsDir()).Should(BeFalse())
	g.Expect(byName["a.txt"].Size()).Should(Equal(int64(3)))
	g.Expect(byName["sub"].IsDir()).Should(BeTrue())
}

func TestRealFileSystemReadDirMissing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fsys := filesystem.NewRealFileSystem()

	_, err := fsys.ReadDir(filepath.Join(t.TempDir(), "missing"))
	g.Expect(err).Should(MatchError(os.ErrNotExist))
}

func TestRealFileSystemRoundTrip(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	fsys := filesystem.NewRealFileSystem()

	path := filepath.Join(dir, "nested", "file.txt")
	g.Expect(fsys.MkdirAll(filepath.Dir(path), 0o750)).Should(Succeed())

	out, err := fsys.Create(path)
	g.Expect(err).ShouldNot(HaveOccurred())

	_, err = out.Write([]byte("round trip"))
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(out.Close()).Should(Succeed())

	in, err := fsys.Open(path)
	g.Expect(err).ShouldNot(HaveOccurred())

	content, err := io.ReadAll(in)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(in.Close()).Should(Succeed())
	g.Expect(string(content)).Should(Equal("round trip"))
}

func TestRealFileSystemChtimes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "file.txt")
	g.Expect(os.WriteFile(path, []byte("x"), 0o600)).Should(Succeed())

	fsys := filesystem.NewRealFileSystem()
	modTime := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

	g.Expect(fsys.Chtimes(path, modTime, modTime)).Should(Succeed())

	info, err := fsys.Stat(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(info.ModTime()).Should(BeTemporally("==", modTime))
}

func TestRealFileSystemRemove(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	g.Expect(os.WriteFile(path, []byte("x"), 0o600)).Should(Succeed())

	fsys := filesystem.NewRealFileSystem()

	g.Expect(fsys.Remove(path)).Should(Succeed())
	g.Expect(path).ShouldNot(BeARegularFile())

	// Non-empty directories are refused, matching os.Remove.
	g.Expect(os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o600)).Should(Succeed())
	g.Expect(fsys.Remove(dir)).ShouldNot(Succeed())
}

func TestMockFileSystemRemoveSemantics(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("dir/file.txt", []byte("x"), time.Now())

	g.Expect(mockFS.Remove("dir")).Should(MatchError(filesystem.ErrDirectoryNotEmpty))
	g.Expect(mockFS.Remove("dir/file.txt")).Should(Succeed())
	g.Expect(mockFS.Remove("dir")).Should(Succeed())
	g.Expect(mockFS.Remove("dir")).Should(MatchError(os.ErrNotExist))
}
