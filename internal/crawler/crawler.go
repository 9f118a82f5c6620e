package crawler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/davidbridgwood/RepoGPT/internal/annotate"
	"github.com/davidbridgwood/RepoGPT/internal/outline"
	"github.com/davidbridgwood/RepoGPT/internal/splitter"
	"github.com/davidbridgwood/RepoGPT/pkg/types"
)

// Config controls one crawl run. Zero values take defaults.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Workers      int
}

// DefaultWorkers bounds concurrent file processing.
const DefaultWorkers = 4

func (c *Config) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = splitter.DefaultChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = splitter.DefaultChunkOverlap
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
}

// Statistics summarizes a crawl run.
type Statistics struct {
	FilesQueued    int
	FilesProcessed int
	FilesSkipped   int
	FilesFailed    int
	ChunksCreated  int
	Duration       time.Duration
	ErrorMessages  []string
}

// Crawler walks a git repository and turns its supported files into
// annotated chunks.
type Crawler struct{}

// New creates a Crawler.
func New() *Crawler {
	return &Crawler{}
}

// CrawlAndSplit discovers every supported file under root and processes
// them concurrently. A file that fails to read, decode, or parse is
// recorded and skipped; one broken file never aborts the run. The returned
// chunk order follows discovery order so output is deterministic for a
// given tree.
func (c *Crawler) CrawlAndSplit(ctx context.Context, root string, config Config) ([]types.AnnotatedChunk, *Statistics, error) {
	config.applyDefaults()
	start := time.Now()

	files, skipped, err := FilterFiles(root)
	if err != nil {
		return nil, nil, err
	}

	stats := &Statistics{FilesQueued: len(files), FilesSkipped: skipped}
	split := splitter.New(config.ChunkSize, config.ChunkOverlap)

	var (
		processed int32
		failed    int32
		created   int32
		mu        sync.Mutex
	)
	perFile := make([][]types.AnnotatedChunk, len(files))

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, config.Workers)
	for i, entry := range files {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			chunks, err := c.ProcessFile(ctx, entry, split)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				log.Printf("Failed to process %s: %v", entry.Path(), err)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages,
					fmt.Sprintf("%s: %v", entry.Path(), err))
				mu.Unlock()
				return nil
			}

			atomic.AddInt32(&processed, 1)
			atomic.AddInt32(&created, int32(len(chunks)))
			perFile[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("crawl canceled: %w", err)
	}

	var all []types.AnnotatedChunk
	for _, chunks := range perFile {
		all = append(all, chunks...)
	}

	stats.FilesProcessed = int(atomic.LoadInt32(&processed))
	stats.FilesFailed = int(atomic.LoadInt32(&failed))
	stats.ChunksCreated = int(atomic.LoadInt32(&created))
	stats.Duration = time.Since(start)
	return all, stats, nil
}

// ProcessFile reads one file, builds its symbol outline, splits it, and
// annotates every chunk. Binary or non-UTF-8 content is rejected.
func (c *Crawler) ProcessFile(ctx context.Context, entry FileEntry, split *splitter.Splitter) ([]types.AnnotatedChunk, error) {
	data, err := os.ReadFile(entry.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8 text")
	}
	source := string(data)

	fileOutline, err := outline.ForFile(entry.FileName).Outline(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to build outline: %w", err)
	}

	lang, ok := splitter.LanguageForExt(entry.Ext)
	if !ok {
		lang = splitter.LangPlainText
	}

	raw := split.Split(source, lang)
	annotated := make([]types.AnnotatedChunk, 0, len(raw))
	for _, chunk := range raw {
		resolved := annotate.ResolveLines(source, chunk)
		sentence := annotate.ClosestContext(fileOutline, resolved.StartLine)
		annotated = append(annotated, annotate.Annotate(resolved, entry.DirPath, entry.FileName, sentence))
	}
	return annotated, nil
}
