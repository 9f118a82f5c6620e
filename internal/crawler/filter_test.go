package crawler

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gitRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIsGitRepo(t *testing.T) {
	root := gitRoot(t)
	assert.True(t, IsGitRepo(root))
	assert.False(t, IsGitRepo(t.TempDir()))

	// A .git file (worktree style) does not count as a repository root.
	plain := t.TempDir()
	writeFile(t, filepath.Join(plain, ".git"), "gitdir: elsewhere")
	assert.False(t, IsGitRepo(plain))
}

func TestContainsHiddenDir(t *testing.T) {
	assert.True(t, ContainsHiddenDir(".git/objects"))
	assert.True(t, ContainsHiddenDir("src/.cache/pkg"))
	assert.False(t, ContainsHiddenDir("src/pkg"))
	assert.False(t, ContainsHiddenDir("."))
	assert.False(t, ContainsHiddenDir("./src"))
}

func TestFilterFiles_NotGitRepo(t *testing.T) {
	_, _, err := FilterFiles(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotGitRepo)
}

func TestFilterFiles_QueuesSupportedSkipsRest(t *testing.T) {
	root := gitRoot(t)
	writeFile(t, filepath.Join(root, "main.py"), "print(1)\n")
	writeFile(t, filepath.Join(root, "pkg", "util.go"), "package pkg\n")
	writeFile(t, filepath.Join(root, "setup.cfg"), "[metadata]\n")
	writeFile(t, filepath.Join(root, ".git", "objects", "ab", "cdef"), "blob")
	writeFile(t, filepath.Join(root, ".venv", "lib", "mod.py"), "x = 1\n")

	files, skipped, err := FilterFiles(root)
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.FileName)
	}
	assert.ElementsMatch(t, []string{"main.py", "util.go"}, names)
	assert.Equal(t, 3, skipped, "setup.cfg plus both hidden-dir files count as skipped")

	for _, f := range files {
		assert.NotContains(t, f.DirPath, ".git")
		assert.NotContains(t, f.DirPath, ".venv")
	}
}

func TestFilterFiles_HiddenDirFilesLoggedAndCounted(t *testing.T) {
	root := gitRoot(t)
	writeFile(t, filepath.Join(root, "ok.py"), "x = 1\n")
	writeFile(t, filepath.Join(root, ".venv", "mod.py"), "y = 2\n")

	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	files, skipped, err := FilterFiles(root)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "ok.py", files[0].FileName)
	assert.Equal(t, 1, skipped)
	assert.Contains(t, logged.String(), "Skipping")
	assert.Contains(t, logged.String(), filepath.Join(root, ".venv", "mod.py"))
}

func TestFilterFiles_EntryFields(t *testing.T) {
	root := gitRoot(t)
	writeFile(t, filepath.Join(root, "src", "App.PY"), "x = 1\n")

	files, _, err := FilterFiles(root)
	require.NoError(t, err)
	require.Len(t, files, 1)

	entry := files[0]
	assert.Equal(t, filepath.Join(root, "src"), entry.DirPath)
	assert.Equal(t, "App.PY", entry.FileName)
	assert.Equal(t, ".py", entry.Ext, "extension is normalized to lower case")
	assert.Equal(t, filepath.Join(root, "src", "App.PY"), entry.Path())
}
