package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements Storage on SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens the database at dbPath and applies pending
// migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) querier() querier {
	return t.tx
}

func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Repo operations

func (s *SQLiteStorage) createRepoWithQuerier(ctx context.Context, q querier, repo *Repo) error {
	query := `
		INSERT INTO repos (root_path, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query, repo.RootPath, repo.IndexVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to create repo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	repo.ID = id
	repo.CreatedAt = now
	repo.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateRepo(ctx context.Context, repo *Repo) error {
	return s.createRepoWithQuerier(ctx, s.querier(), repo)
}

func scanRepo(row *sql.Row) (*Repo, error) {
	var repo Repo
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&repo.ID, &repo.RootPath, &repo.TotalFiles, &repo.TotalChunks,
		&repo.IndexVersion, &lastIndexedAt, &repo.CreatedAt, &repo.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		repo.LastIndexedAt = lastIndexedAt.Time
	}
	return &repo, nil
}

const repoColumns = `id, root_path, total_files, total_chunks, index_version, last_indexed_at, created_at, updated_at`

func (s *SQLiteStorage) getRepoWithQuerier(ctx context.Context, q querier, rootPath string) (*Repo, error) {
	query := `SELECT ` + repoColumns + ` FROM repos WHERE root_path = ?`
	return scanRepo(q.QueryRowContext(ctx, query, rootPath))
}

func (s *SQLiteStorage) GetRepo(ctx context.Context, rootPath string) (*Repo, error) {
	return s.getRepoWithQuerier(ctx, s.querier(), rootPath)
}

func (s *SQLiteStorage) getRepoByIDWithQuerier(ctx context.Context, q querier, repoID int64) (*Repo, error) {
	query := `SELECT ` + repoColumns + ` FROM repos WHERE id = ?`
	return scanRepo(q.QueryRowContext(ctx, query, repoID))
}

func (s *SQLiteStorage) GetRepoByID(ctx context.Context, repoID int64) (*Repo, error) {
	return s.getRepoByIDWithQuerier(ctx, s.querier(), repoID)
}

func (s *SQLiteStorage) updateRepoWithQuerier(ctx context.Context, q querier, repo *Repo) error {
	query := `
		UPDATE repos
		SET total_files = ?, total_chunks = ?, index_version = ?,
		    last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		repo.TotalFiles, repo.TotalChunks, repo.IndexVersion,
		repo.LastIndexedAt, now, repo.ID)
	if err != nil {
		return fmt.Errorf("failed to update repo: %w", err)
	}
	repo.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateRepo(ctx context.Context, repo *Repo) error {
	return s.updateRepoWithQuerier(ctx, s.querier(), repo)
}

// Chunk operations

func (s *SQLiteStorage) upsertChunkWithQuerier(ctx context.Context, q querier, chunk *Chunk) error {
	// Atomic INSERT ... ON CONFLICT avoids a read-modify-write race.
	query := `
		INSERT INTO chunks (
			repo_id, dir_path, file_name, start_line, end_line, byte_start,
			content, content_hash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_id, dir_path, file_name, byte_start)
		DO UPDATE SET
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			content = excluded.content,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		chunk.RepoID, chunk.DirPath, chunk.FileName,
		chunk.StartLine, chunk.EndLine, chunk.ByteStart,
		chunk.Content, chunk.ContentHash[:], now, now,
	).Scan(&chunk.ID, &chunk.CreatedAt, &chunk.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	return s.upsertChunkWithQuerier(ctx, s.querier(), chunk)
}

const chunkColumns = `id, repo_id, dir_path, file_name, start_line, end_line, byte_start, content, content_hash, created_at, updated_at`

func scanChunkRow(scan func(dest ...interface{}) error) (*Chunk, error) {
	var chunk Chunk
	var hash []byte
	err := scan(
		&chunk.ID, &chunk.RepoID, &chunk.DirPath, &chunk.FileName,
		&chunk.StartLine, &chunk.EndLine, &chunk.ByteStart,
		&chunk.Content, &hash, &chunk.CreatedAt, &chunk.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	copy(chunk.ContentHash[:], hash)
	return &chunk, nil
}

func (s *SQLiteStorage) getChunkWithQuerier(ctx context.Context, q querier, chunkID int64) (*Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE id = ?`
	chunk, err := scanChunkRow(q.QueryRowContext(ctx, query, chunkID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return chunk, err
}

func (s *SQLiteStorage) GetChunk(ctx context.Context, chunkID int64) (*Chunk, error) {
	return s.getChunkWithQuerier(ctx, s.querier(), chunkID)
}

func (s *SQLiteStorage) getChunksWithQuerier(ctx context.Context, q querier, chunkIDs []int64) ([]*Chunk, error) {
	if len(chunkIDs) == 0 {
		return []*Chunk{}, nil
	}

	placeholders := make([]string, len(chunkIDs))
	args := make([]interface{}, len(chunkIDs))
	for i, id := range chunkIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE id IN (` +
		strings.Join(placeholders, ",") + `)`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[int64]*Chunk, len(chunkIDs))
	for rows.Next() {
		chunk, err := scanChunkRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[chunk.ID] = chunk
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve the requested order; missing IDs are dropped.
	chunks := make([]*Chunk, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if chunk, ok := byID[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (s *SQLiteStorage) GetChunks(ctx context.Context, chunkIDs []int64) ([]*Chunk, error) {
	return s.getChunksWithQuerier(ctx, s.querier(), chunkIDs)
}

func (s *SQLiteStorage) listChunksByRepoWithQuerier(ctx context.Context, q querier, repoID int64) ([]*Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks
		WHERE repo_id = ?
		ORDER BY dir_path, file_name, byte_start`
	rows, err := q.QueryContext(ctx, query, repoID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]*Chunk, 0)
	for rows.Next() {
		chunk, err := scanChunkRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStorage) ListChunksByRepo(ctx context.Context, repoID int64) ([]*Chunk, error) {
	return s.listChunksByRepoWithQuerier(ctx, s.querier(), repoID)
}

func (s *SQLiteStorage) deleteChunksByRepoWithQuerier(ctx context.Context, q querier, repoID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM chunks WHERE repo_id = ?`, repoID)
	return err
}

func (s *SQLiteStorage) DeleteChunksByRepo(ctx context.Context, repoID int64) error {
	return s.deleteChunksByRepoWithQuerier(ctx, s.querier(), repoID)
}

// Embedding operations

func (s *SQLiteStorage) upsertEmbeddingWithQuerier(ctx context.Context, q querier, embedding *Embedding) error {
	query := `
		INSERT INTO embeddings (chunk_id, vector, dimension, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		embedding.ChunkID, embedding.Vector, embedding.Dimension,
		embedding.Provider, embedding.Model, now)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	if embedding.ID == 0 {
		if id, err := result.LastInsertId(); err == nil {
			embedding.ID = id
		}
	}
	embedding.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return s.upsertEmbeddingWithQuerier(ctx, s.querier(), embedding)
}

func (s *SQLiteStorage) getEmbeddingWithQuerier(ctx context.Context, q querier, chunkID int64) (*Embedding, error) {
	query := `
		SELECT id, chunk_id, vector, dimension, provider, model, created_at
		FROM embeddings
		WHERE chunk_id = ?
	`
	var embedding Embedding
	err := q.QueryRowContext(ctx, query, chunkID).Scan(
		&embedding.ID, &embedding.ChunkID, &embedding.Vector,
		&embedding.Dimension, &embedding.Provider, &embedding.Model,
		&embedding.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}

func (s *SQLiteStorage) GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error) {
	return s.getEmbeddingWithQuerier(ctx, s.querier(), chunkID)
}

// Search operations

func (s *SQLiteStorage) SearchVector(ctx context.Context, repoID int64, queryVector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	return searchVector(ctx, s.db, repoID, queryVector, limit, filters)
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context, repoID int64) (*RepoStatus, error) {
	repo, err := s.GetRepoByID(ctx, repoID)
	if err != nil {
		return nil, err
	}

	status := &RepoStatus{
		Repo:          repo,
		LastIndexedAt: repo.LastIndexedAt,
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE repo_id = ?", repoID).Scan(&status.ChunksCount)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM embeddings e
		JOIN chunks c ON e.chunk_id = c.id
		WHERE c.repo_id = ?
	`, repoID).Scan(&status.EmbeddingsCount)
	if err != nil {
		return nil, err
	}

	var pageCount, pageSize int
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible:  true,
		EmbeddingsAvailable: status.EmbeddingsCount > 0,
		VectorSearchNative:  VectorExtensionAvailable,
	}
	return status, nil
}

// Transaction implementations delegate to the storage internals with the
// transaction querier.

func (t *sqliteTx) CreateRepo(ctx context.Context, repo *Repo) error {
	return t.storage.createRepoWithQuerier(ctx, t.querier(), repo)
}

func (t *sqliteTx) GetRepo(ctx context.Context, rootPath string) (*Repo, error) {
	return t.storage.getRepoWithQuerier(ctx, t.querier(), rootPath)
}

func (t *sqliteTx) GetRepoByID(ctx context.Context, repoID int64) (*Repo, error) {
	return t.storage.getRepoByIDWithQuerier(ctx, t.querier(), repoID)
}

func (t *sqliteTx) UpdateRepo(ctx context.Context, repo *Repo) error {
	return t.storage.updateRepoWithQuerier(ctx, t.querier(), repo)
}

func (t *sqliteTx) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	return t.storage.upsertChunkWithQuerier(ctx, t.querier(), chunk)
}

func (t *sqliteTx) GetChunk(ctx context.Context, chunkID int64) (*Chunk, error) {
	return t.storage.getChunkWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) GetChunks(ctx context.Context, chunkIDs []int64) ([]*Chunk, error) {
	return t.storage.getChunksWithQuerier(ctx, t.querier(), chunkIDs)
}

func (t *sqliteTx) ListChunksByRepo(ctx context.Context, repoID int64) ([]*Chunk, error) {
	return t.storage.listChunksByRepoWithQuerier(ctx, t.querier(), repoID)
}

func (t *sqliteTx) DeleteChunksByRepo(ctx context.Context, repoID int64) error {
	return t.storage.deleteChunksByRepoWithQuerier(ctx, t.querier(), repoID)
}

func (t *sqliteTx) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return t.storage.upsertEmbeddingWithQuerier(ctx, t.querier(), embedding)
}

func (t *sqliteTx) GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error) {
	return t.storage.getEmbeddingWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) SearchVector(ctx context.Context, repoID int64, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	return t.storage.SearchVector(ctx, repoID, vector, limit, filters)
}

func (t *sqliteTx) GetStatus(ctx context.Context, repoID int64) (*RepoStatus, error) {
	return t.storage.GetStatus(ctx, repoID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite has no true nested transactions
	return nil, errors.New("nested transactions not supported")
}
