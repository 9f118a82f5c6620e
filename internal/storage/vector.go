package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// searchVector ranks a repo's chunks by cosine similarity to the query
// vector. The sqlite-vec build computes distance in SQL; the purego build
// pulls candidate vectors and scores them in Go.
func searchVector(ctx context.Context, db *sql.DB, repoID int64, queryVector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	if VectorExtensionAvailable {
		return searchVectorNative(ctx, db, repoID, queryVector, limit, filters)
	}
	return searchVectorFallback(ctx, db, repoID, queryVector, limit, filters)
}

// searchVectorNative computes distances with the sqlite-vec extension.
func searchVectorNative(ctx context.Context, db *sql.DB, repoID int64, queryVector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	if limit <= 0 {
		return []VectorResult{}, nil
	}

	queryBlob := serializeVector(queryVector)

	// vec_distance_cosine returns distance; 1 - distance keeps the API
	// reporting similarity in both builds.
	query := `
		SELECT
			c.id AS chunk_id,
			1.0 - vec_distance_cosine(e.vector, ?) AS similarity
		FROM chunks c
		INNER JOIN embeddings e ON c.id = e.chunk_id
		WHERE c.repo_id = ?
	`
	args := []interface{}{queryBlob, repoID}
	query, args = applySearchFilters(query, args, filters)

	if filters != nil && filters.MinScore > 0 {
		query += " AND (1.0 - vec_distance_cosine(e.vector, ?)) >= ?"
		args = append(args, queryBlob, filters.MinScore)
	}

	query += " ORDER BY similarity DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]VectorResult, 0, limit)
	for rows.Next() {
		var result VectorResult
		if err := rows.Scan(&result.ChunkID, &result.SimilarityScore); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// searchVectorFallback scores candidates in Go for builds without
// sqlite-vec.
func searchVectorFallback(ctx context.Context, db *sql.DB, repoID int64, queryVector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	query := `
		SELECT c.id AS chunk_id, e.vector
		FROM chunks c
		INNER JOIN embeddings e ON c.id = e.chunk_id
		WHERE c.repo_id = ?
	`
	args := []interface{}{repoID}
	query, args = applySearchFilters(query, args, filters)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates, err := scoreCandidates(rows, queryVector, filters)
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	results := make([]VectorResult, limit)
	for i := 0; i < limit; i++ {
		results[i] = VectorResult{
			ChunkID:         candidates[i].chunkID,
			SimilarityScore: candidates[i].score,
		}
	}
	return results, nil
}

// applySearchFilters appends SQL conditions shared by both search paths.
func applySearchFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}
	if filters.FilePattern != "" {
		query += " AND (c.dir_path || '/' || c.file_name) GLOB ?"
		args = append(args, filters.FilePattern)
	}
	return query, args
}

// candidate pairs a chunk with its similarity score.
type candidate struct {
	chunkID int64
	score   float64
}

func scoreCandidates(rows *sql.Rows, queryVector []float32, filters *SearchFilters) ([]candidate, error) {
	candidates := make([]candidate, 0, 256)
	for rows.Next() {
		var chunkID int64
		var blob []byte
		if err := rows.Scan(&chunkID, &blob); err != nil {
			return nil, err
		}

		vector := deserializeVector(blob)
		if len(vector) != len(queryVector) {
			continue // Dimension mismatch, skip
		}

		similarity := cosineSimilarity(queryVector, vector)
		if filters != nil && filters.MinScore > 0 && similarity < filters.MinScore {
			continue
		}
		candidates = append(candidates, candidate{chunkID: chunkID, score: similarity})
	}
	return candidates, rows.Err()
}

// serializeVector converts a float32 slice to a little-endian byte blob.
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice.
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SerializeVector is an exported helper for callers that store vectors.
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is the inverse of SerializeVector.
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for testing.
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}
