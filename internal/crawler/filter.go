package crawler

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/davidbridgwood/RepoGPT/internal/splitter"
)

// ErrNotGitRepo is returned when the crawl root is not under version
// control. It aborts the run before any file is processed.
var ErrNotGitRepo = errors.New("not a valid git root directory")

// FileEntry identifies one file queued for processing.
type FileEntry struct {
	DirPath  string
	FileName string
	Ext      string
}

// Path returns the full path of the queued file.
func (f FileEntry) Path() string {
	return filepath.Join(f.DirPath, f.FileName)
}

// IsGitRepo reports whether root contains a .git directory.
func IsGitRepo(root string) bool {
	info, err := os.Stat(filepath.Join(root, ".git"))
	return err == nil && info.IsDir()
}

// ContainsHiddenDir reports whether any component of the path is a hidden
// directory. "." and ".." are path syntax, not hidden names.
func ContainsHiddenDir(dirPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(dirPath), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// FilterFiles walks the repository root and queues every regular file whose
// extension is chunkable and whose path has no hidden directory component.
// Skipped files are logged and counted, never silently dropped. Fails fast
// with ErrNotGitRepo when root is not version controlled.
func FilterFiles(root string) ([]FileEntry, int, error) {
	if !IsGitRepo(root) {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotGitRepo, root)
	}

	var files []FileEntry
	skipped := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories are walked, not pruned, so every file
			// under them is logged and counted as skipped below.
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !splitter.SupportedExt(ext) || ContainsHiddenDir(filepath.Dir(rel)) {
			log.Printf("Skipping %s - File or directory type not supported.", path)
			skipped++
			return nil
		}

		files = append(files, FileEntry{
			DirPath:  filepath.Dir(path),
			FileName: d.Name(),
			Ext:      ext,
		})
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, skipped, nil
}
