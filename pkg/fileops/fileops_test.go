//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package fileops_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/mirror-tree/pkg/fileops"
	"github.com/joe/mirror-tree/pkg/filesystem"
)

func TestCopyFileWritesContent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("src/a.txt", []byte("hello world"), time.Now())

	ops := fileops.NewFileOps(mockFS)

	written, err := ops.CopyFile("src/a.txt", "dst/nested/a.txt", nil, nil)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(written).Should(Equal(int64(11)))

	content, _, err := mockFS.GetFile("dst/nested/a.txt")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(content)).Should(Equal("hello world"))
}

func TestCopyFilePreservesModTime(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("src/a.txt", []byte("content"), modTime)

	ops := fileops.NewFileOps(mockFS)

	_, err := ops.CopyFile("src/a.txt", "dst/a.txt", nil, nil)
	g.Expect(err).ShouldNot(HaveOccurred())

	info, err := mockFS.Stat("dst/a.txt")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(info.ModTime()).Should(BeTemporally("==", modTime))
}

func TestCopyFileReportsProgress(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	// Two full buffers plus a partial one.
	payload := make([]byte, fileops.BufferSize*2+100)
	for i := range payload {
		payload[i] = byte(i)
	}

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("src/big.bin", payload, time.Now())

	ops := fileops.NewFileOps(mockFS)

	var calls []int64

	var lastFile string

	progress := func(transferred, total int64, currentFile string) {
		calls = append(calls, transferred)
		lastFile = currentFile

		g.Expect(total).Should(Equal(int64(len(payload))))
	}

	written, err := ops.CopyFile("src/big.bin", "dst/big.bin", progress, nil)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(written).Should(Equal(int64(len(payload))))

	g.Expect(calls).ShouldNot(BeEmpty())
	g.Expect(calls[len(calls)-1]).Should(Equal(int64(len(payload))))
	g.Expect(lastFile).Should(Equal("src/big.bin"))

	// Transferred counts only ever grow.
	for i := 1; i < len(calls); i++ {
		g.Expect(calls[i]).Should(BeNumerically(">", calls[i-1]))
	}
}

func TestCopyFileCancellation(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("src/a.txt", []byte("content"), time.Now())

	ops := fileops.NewFileOps(mockFS)

	cancelChan := make(chan struct{})
	close(cancelChan)

	_, err := ops.CopyFile("src/a.txt", "dst/a.txt", nil, cancelChan)
	g.Expect(err).Should(MatchError(fileops.ErrCopyCancelled))
}

func TestCopyFileMissingSource(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	ops := fileops.NewFileOps(mockFS)

	_, err := ops.CopyFile("src/missing.txt", "dst/missing.txt", nil, nil)
	g.Expect(err).Should(HaveOccurred())
	g.Expect(mockFS.Exists("dst/missing.txt")).Should(BeFalse())
}

func TestCopyFileAcrossFilesystems(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sourceFS := filesystem.NewMockFileSystem()
	destFS := filesystem.NewMockFileSystem()
	sourceFS.AddFile("a.txt", []byte("cross"), time.Now())

	ops := fileops.NewDualFileOps(sourceFS, destFS)

	_, err := ops.CopyFile("a.txt", "a.txt", nil, nil)
	g.Expect(err).ShouldNot(HaveOccurred())

	content, _, err := destFS.GetFile("a.txt")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(content)).Should(Equal("cross"))

	// The source filesystem is untouched beyond the read.
	g.Expect(sourceFS.ListFiles()).Should(ConsistOf("a.txt"))
}

func TestEnsureDirIsIdempotent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	ops := fileops.NewFileOps(mockFS)

	g.Expect(ops.EnsureDir("a/b/c")).Should(Succeed())
	g.Expect(ops.EnsureDir("a/b/c")).Should(Succeed())

	info, err := mockFS.Stat("a/b/c")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(info.IsDir()).Should(BeTrue())
}

func TestStatModTimeTruncatesToSeconds(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 1, 2, 3, 4, 5, 678_000_000, time.UTC)
	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("a.txt", []byte("12345"), modTime)

	size, truncated, err := fileops.StatModTime(mockFS, "a.txt")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(size).Should(Equal(int64(5)))
	g.Expect(truncated).Should(BeTemporally("==", modTime.Truncate(time.Second)))
}
