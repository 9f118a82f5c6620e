package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davidbridgwood/RepoGPT/internal/crawler"
	"github.com/davidbridgwood/RepoGPT/internal/embedder"
	"github.com/davidbridgwood/RepoGPT/internal/storage"
	"github.com/davidbridgwood/RepoGPT/pkg/types"
)

// ErrIndexInProgress is returned when a repository is already being
// indexed.
var ErrIndexInProgress = errors.New("indexing already in progress for this repository")

// DefaultBatchSize is the number of chunks committed per transaction.
const DefaultBatchSize = 100

// Indexer runs the full pipeline for a repository: crawl and annotate,
// persist chunks, embed, persist embeddings.
type Indexer struct {
	crawler  *crawler.Crawler
	storage  storage.Storage
	embedder embedder.Embedder

	mu    sync.Mutex
	locks map[string]*IndexLock
}

// Config controls one indexing run. Zero values take defaults.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Workers      int
	BatchSize    int  // Chunks per transaction
	SkipEmbed    bool // Store chunks without generating embeddings
}

// Statistics summarizes an indexing run.
type Statistics struct {
	FilesProcessed   int
	FilesSkipped     int
	FilesFailed      int
	ChunksStored     int
	EmbeddingsStored int
	Duration         time.Duration
	ErrorMessages    []string
}

// New creates an Indexer.
func New(store storage.Storage, emb embedder.Embedder) *Indexer {
	return &Indexer{
		crawler:  crawler.New(),
		storage:  store,
		embedder: emb,
		locks:    make(map[string]*IndexLock),
	}
}

// IndexRepository indexes the repository at rootPath. Re-indexing replaces
// the repo's previous chunks entirely so deleted files don't linger in
// search results. Concurrent runs against the same root are rejected with
// ErrIndexInProgress.
func (idx *Indexer) IndexRepository(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{}
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	lock := idx.lockFor(rootPath)
	if !lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer lock.Release()

	start := time.Now()

	chunks, crawlStats, err := idx.crawler.CrawlAndSplit(ctx, rootPath, crawler.Config{
		ChunkSize:    config.ChunkSize,
		ChunkOverlap: config.ChunkOverlap,
		Workers:      config.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("crawl failed: %w", err)
	}

	repo, err := idx.getOrCreateRepo(ctx, rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create repo: %w", err)
	}

	if err := idx.storage.DeleteChunksByRepo(ctx, repo.ID); err != nil {
		return nil, fmt.Errorf("failed to clear previous index: %w", err)
	}

	stored, err := idx.storeChunks(ctx, repo.ID, chunks, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	stats := &Statistics{
		FilesProcessed: crawlStats.FilesProcessed,
		FilesSkipped:   crawlStats.FilesSkipped,
		FilesFailed:    crawlStats.FilesFailed,
		ChunksStored:   len(stored),
		ErrorMessages:  crawlStats.ErrorMessages,
	}

	if !config.SkipEmbed && len(stored) > 0 {
		embedded, err := idx.embedChunks(ctx, stored)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks: %w", err)
		}
		stats.EmbeddingsStored = embedded
	}

	repo.TotalFiles = crawlStats.FilesProcessed
	repo.TotalChunks = len(stored)
	repo.IndexVersion = storage.CurrentSchemaVersion
	repo.LastIndexedAt = time.Now()
	if err := idx.storage.UpdateRepo(ctx, repo); err != nil {
		return nil, fmt.Errorf("failed to update repo stats: %w", err)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// lockFor returns the per-root lock, creating it on first use.
func (idx *Indexer) lockFor(rootPath string) *IndexLock {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	lock, ok := idx.locks[rootPath]
	if !ok {
		lock = &IndexLock{}
		idx.locks[rootPath] = lock
	}
	return lock
}

// getOrCreateRepo retrieves an existing repo row or creates a new one.
func (idx *Indexer) getOrCreateRepo(ctx context.Context, rootPath string) (*storage.Repo, error) {
	repo, err := idx.storage.GetRepo(ctx, rootPath)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	repo = &storage.Repo{
		RootPath:     rootPath,
		IndexVersion: storage.CurrentSchemaVersion,
	}
	if err := idx.storage.CreateRepo(ctx, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

// storeChunks persists chunks in transaction batches and returns the stored
// rows with their assigned IDs.
func (idx *Indexer) storeChunks(ctx context.Context, repoID int64, chunks []types.AnnotatedChunk, batchSize int) ([]*storage.Chunk, error) {
	stored := make([]*storage.Chunk, 0, len(chunks))

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		tx, err := idx.storage.BeginTx(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}

		batch := make([]*storage.Chunk, 0, end-i)
		for _, chunk := range chunks[i:end] {
			row := &storage.Chunk{
				RepoID:      repoID,
				DirPath:     chunk.DirPath,
				FileName:    chunk.FileName,
				StartLine:   chunk.StartLine,
				EndLine:     chunk.EndLine,
				ByteStart:   chunk.ByteStart,
				Content:     chunk.Text,
				ContentHash: chunk.ContentHash,
			}
			if err := tx.UpsertChunk(ctx, row); err != nil {
				_ = tx.Rollback()
				return nil, err
			}
			batch = append(batch, row)
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit batch: %w", err)
		}
		stored = append(stored, batch...)
	}

	return stored, nil
}

// embedChunks generates and persists embeddings for stored chunks in
// provider-sized batches.
func (idx *Indexer) embedChunks(ctx context.Context, chunks []*storage.Chunk) (int, error) {
	count := 0
	for i := 0; i < len(chunks); i += embedder.DefaultBatchSize {
		end := i + embedder.DefaultBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, chunk := range batch {
			texts[j] = chunk.Content
		}

		resp, err := idx.embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
		if err != nil {
			return count, err
		}
		if len(resp.Embeddings) != len(batch) {
			return count, fmt.Errorf("provider returned %d embeddings for %d texts",
				len(resp.Embeddings), len(batch))
		}

		for j, emb := range resp.Embeddings {
			row := &storage.Embedding{
				ChunkID:   batch[j].ID,
				Vector:    storage.SerializeVector(emb.Vector),
				Dimension: emb.Dimension,
				Provider:  emb.Provider,
				Model:     emb.Model,
			}
			if err := idx.storage.UpsertEmbedding(ctx, row); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
