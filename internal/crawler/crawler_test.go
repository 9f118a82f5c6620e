package crawler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbridgwood/RepoGPT/internal/splitter"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var c Config
	c.applyDefaults()
	assert.Equal(t, splitter.DefaultChunkSize, c.ChunkSize)
	assert.Equal(t, splitter.DefaultChunkOverlap, c.ChunkOverlap)
	assert.Equal(t, DefaultWorkers, c.Workers)

	c = Config{ChunkSize: 500, ChunkOverlap: 50, Workers: 2}
	c.applyDefaults()
	assert.Equal(t, Config{ChunkSize: 500, ChunkOverlap: 50, Workers: 2}, c)
}

func TestCrawlAndSplit_NotGitRepo(t *testing.T) {
	_, _, err := New().CrawlAndSplit(context.Background(), t.TempDir(), Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotGitRepo)
}

func TestCrawlAndSplit_AnnotatesAllFiles(t *testing.T) {
	root := gitRoot(t)
	writeFile(t, filepath.Join(root, "hello.py"),
		"def hello_world():\n    print(\"Hello, World!\")\n\nhello_world()\n")
	writeFile(t, filepath.Join(root, "lib", "mathy.go"),
		"package lib\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n")

	chunks, stats, err := New().CrawlAndSplit(context.Background(), root, Config{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesQueued)
	assert.Equal(t, 2, stats.FilesProcessed)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.Equal(t, len(chunks), stats.ChunksCreated)
	assert.Positive(t, stats.Duration)
	require.NotEmpty(t, chunks)

	byFile := map[string]int{}
	for _, chunk := range chunks {
		byFile[chunk.FileName]++
		assert.True(t, strings.HasPrefix(chunk.Text,
			"The following code snippet is from a file at location "))
		assert.Positive(t, chunk.StartLine)
		assert.GreaterOrEqual(t, chunk.EndLine, chunk.StartLine)
		require.NoError(t, chunk.Validate())
	}
	assert.Positive(t, byFile["hello.py"])
	assert.Positive(t, byFile["mathy.go"])

	var hello string
	for _, chunk := range chunks {
		if chunk.FileName == "hello.py" {
			hello = chunk.Text
			break
		}
	}
	assert.Contains(t, hello, "a method named hello_world starting on line 1")
}

func TestCrawlAndSplit_DeterministicOrder(t *testing.T) {
	root := gitRoot(t)
	writeFile(t, filepath.Join(root, "a.py"), "x = 1\n")
	writeFile(t, filepath.Join(root, "b.py"), "y = 2\n")
	writeFile(t, filepath.Join(root, "c.py"), "z = 3\n")

	first, _, err := New().CrawlAndSplit(context.Background(), root, Config{Workers: 3})
	require.NoError(t, err)
	second, _, err := New().CrawlAndSplit(context.Background(), root, Config{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCrawlAndSplit_OneBadFileDoesNotAbort(t *testing.T) {
	root := gitRoot(t)
	writeFile(t, filepath.Join(root, "good.py"), "print(1)\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.py"),
		[]byte{0xff, 0xfe, 0xfd, 0x00, 0x41}, 0o644))

	chunks, stats, err := New().CrawlAndSplit(context.Background(), root, Config{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesQueued)
	assert.Equal(t, 1, stats.FilesProcessed)
	assert.Equal(t, 1, stats.FilesFailed)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "bad.py")

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.Equal(t, "good.py", chunk.FileName)
	}
}

func TestProcessFile_UnsupportedOutlineStillChunks(t *testing.T) {
	root := gitRoot(t)
	path := filepath.Join(root, "notes.md")
	writeFile(t, path, "# Title\n\nSome prose about the project.\n")

	entry := FileEntry{DirPath: root, FileName: "notes.md", Ext: ".md"}
	chunks, err := New().ProcessFile(context.Background(), entry, splitter.New(0, 0))
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	// Markdown has no symbol outline, so no context sentence appears.
	assert.NotContains(t, chunks[0].Text, "In this file there is")
	assert.Contains(t, chunks[0].Text, "Some prose about the project.")
}
