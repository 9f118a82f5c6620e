package storage

import (
	"context"
	"time"
)

// Storage persists indexed repositories, their annotated chunks, and chunk
// embeddings.
type Storage interface {
	// Repo operations
	CreateRepo(ctx context.Context, repo *Repo) error
	GetRepo(ctx context.Context, rootPath string) (*Repo, error)
	GetRepoByID(ctx context.Context, repoID int64) (*Repo, error)
	UpdateRepo(ctx context.Context, repo *Repo) error

	// Chunk operations
	UpsertChunk(ctx context.Context, chunk *Chunk) error
	GetChunk(ctx context.Context, chunkID int64) (*Chunk, error)
	GetChunks(ctx context.Context, chunkIDs []int64) ([]*Chunk, error)
	ListChunksByRepo(ctx context.Context, repoID int64) ([]*Chunk, error)
	DeleteChunksByRepo(ctx context.Context, repoID int64) error

	// Embedding operations
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
	GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error)

	// Search operations
	SearchVector(ctx context.Context, repoID int64, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error)

	// Status operations
	GetStatus(ctx context.Context, repoID int64) (*RepoStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a transaction over the same operation set.
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}

// Repo is an indexed repository root.
type Repo struct {
	ID            int64
	RootPath      string
	TotalFiles    int
	TotalChunks   int
	IndexVersion  string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Chunk is one annotated chunk row. Content holds the full annotation text,
// not the raw source slice. The (DirPath, FileName, ByteStart) triple is
// unique within a repo.
type Chunk struct {
	ID          int64
	RepoID      int64
	DirPath     string
	FileName    string
	StartLine   int
	EndLine     int
	ByteStart   int
	Content     string
	ContentHash [32]byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Embedding is a stored chunk vector. Vector is the little-endian float32
// serialization.
type Embedding struct {
	ID        int64
	ChunkID   int64
	Vector    []byte
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// SearchFilters narrows vector search results.
type SearchFilters struct {
	FilePattern string  // Glob pattern matched against dir_path/file_name
	MinScore    float64 // Minimum similarity score
}

// VectorResult is one vector search hit.
type VectorResult struct {
	ChunkID         int64
	SimilarityScore float64
}

// RepoStatus summarizes an indexed repository.
type RepoStatus struct {
	Repo            *Repo
	ChunksCount     int
	EmbeddingsCount int
	IndexSizeMB     float64
	LastIndexedAt   time.Time
	Health          HealthStatus
}

// HealthStatus reports index health.
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
	VectorSearchNative  bool
}
