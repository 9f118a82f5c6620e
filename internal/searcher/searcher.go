package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/davidbridgwood/RepoGPT/internal/embedder"
	"github.com/davidbridgwood/RepoGPT/internal/storage"
)

const (
	// DefaultLimit caps results when the request doesn't specify one.
	DefaultLimit = 10

	// MaxLimit is the hard ceiling on requested results.
	MaxLimit = 100

	// DefaultCacheTTL is how long a cached query result stays valid.
	DefaultCacheTTL = time.Hour

	queryCacheSize = 1000
)

// SearchRequest describes one semantic search.
type SearchRequest struct {
	Query    string
	RepoID   int64
	Limit    int
	Filters  *storage.SearchFilters
	UseCache bool
	CacheTTL time.Duration
}

// SearchResult is one ranked hit with its chunk hydrated.
type SearchResult struct {
	ChunkID   int64
	Rank      int
	Score     float64
	DirPath   string
	FileName  string
	StartLine int
	EndLine   int
	Content   string
}

// SearchResponse carries ranked results and query metadata.
type SearchResponse struct {
	Results      []SearchResult
	TotalResults int
	Duration     time.Duration
	CacheHit     bool
}

// cacheEntry pairs a cached response with its expiry.
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher answers semantic queries: embed the query, rank stored chunk
// vectors by cosine similarity, hydrate the winning chunks.
type Searcher struct {
	storage  storage.Storage
	embedder embedder.Embedder
	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
}

// New creates a Searcher.
func New(store storage.Storage, emb embedder.Embedder) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](queryCacheSize)
	if err != nil {
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &Searcher{
		storage:  store,
		embedder: emb,
		cache:    cache,
	}
}

// Search runs one query. Results come back ranked by similarity,
// best first.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	start := time.Now()

	if s.embedder == nil {
		return nil, fmt.Errorf("embedder not initialized")
	}
	if err := s.validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	if req.UseCache {
		if cached := s.checkCache(req); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(start)
			return cached, nil
		}
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	hits, err := s.storage.SearchVector(ctx, req.RepoID, embedding.Vector, req.Limit, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results, err := s.hydrate(ctx, hits)
	if err != nil {
		return nil, err
	}

	response := &SearchResponse{
		Results:      results,
		TotalResults: len(results),
		Duration:     time.Since(start),
	}

	if req.UseCache && len(results) > 0 {
		s.storeInCache(req, response)
	}
	return response, nil
}

// hydrate loads chunk rows for the ranked hits. A hit whose chunk vanished
// between ranking and hydration is dropped, not an error.
func (s *Searcher) hydrate(ctx context.Context, hits []storage.VectorResult) ([]SearchResult, error) {
	ids := make([]int64, len(hits))
	scoreByID := make(map[int64]float64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ChunkID
		scoreByID[hit.ChunkID] = hit.SimilarityScore
	}

	chunks, err := s.storage.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load result chunks: %w", err)
	}

	results := make([]SearchResult, len(chunks))
	for i, chunk := range chunks {
		results[i] = SearchResult{
			ChunkID:   chunk.ID,
			Rank:      i + 1,
			Score:     scoreByID[chunk.ID],
			DirPath:   chunk.DirPath,
			FileName:  chunk.FileName,
			StartLine: chunk.StartLine,
			EndLine:   chunk.EndLine,
			Content:   chunk.Content,
		}
	}
	return results, nil
}

// validateRequest normalizes the request in place.
func (s *Searcher) validateRequest(req *SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	if req.CacheTTL == 0 {
		req.CacheTTL = DefaultCacheTTL
	}
	return nil
}

func (s *Searcher) checkCache(req SearchRequest) *SearchResponse {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil
	}
	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil
	}
	response := copyResponse(entry.response)
	s.cacheMu.RUnlock()
	return response
}

func (s *Searcher) storeInCache(req SearchRequest, response *SearchResponse) {
	entry := &cacheEntry{
		response:  copyResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
	}
	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(req), entry)
	s.cacheMu.Unlock()
}

// InvalidateCache drops all cached queries. Called after re-indexing so
// stale chunk IDs never surface.
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// copyResponse deep-copies a response so cached values never alias caller
// data.
func copyResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}
	dst := &SearchResponse{
		TotalResults: src.TotalResults,
		Duration:     src.Duration,
		CacheHit:     src.CacheHit,
		Results:      make([]SearchResult, len(src.Results)),
	}
	copy(dst.Results, src.Results)
	return dst
}

// computeQueryHash builds a deterministic key from every request field
// that affects results.
func computeQueryHash(req SearchRequest) [32]byte {
	var data strings.Builder
	data.WriteString(req.Query)
	data.WriteString("|")
	fmt.Fprintf(&data, "%d|%d", req.RepoID, req.Limit)
	if req.Filters != nil {
		fmt.Fprintf(&data, "|filters:%s|%.4f", req.Filters.FilePattern, req.Filters.MinScore)
	}
	return sha256.Sum256([]byte(data.String()))
}
