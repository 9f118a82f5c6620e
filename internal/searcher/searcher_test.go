package searcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbridgwood/RepoGPT/internal/embedder"
	"github.com/davidbridgwood/RepoGPT/internal/indexer"
	"github.com/davidbridgwood/RepoGPT/internal/storage"
)

// indexedFixture indexes a tiny repository and returns a Searcher over it
// plus the repo ID. The local embedding provider keeps everything offline.
func indexedFixture(t *testing.T) (*Searcher, int64) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	emb, err := embedder.NewLocalProvider(embedder.NewCache(100))
	require.NoError(t, err)

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "greet.py"),
		[]byte("def greet(name):\n    return \"Hello \" + name\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "math.py"),
		[]byte("def square(n):\n    return n * n\n"), 0o644))

	_, err = indexer.New(store, emb).IndexRepository(context.Background(), root, nil)
	require.NoError(t, err)

	repo, err := store.GetRepo(context.Background(), root)
	require.NoError(t, err)
	return New(store, emb), repo.ID
}

func TestSearch_ReturnsRankedHydratedResults(t *testing.T) {
	s, repoID := indexedFixture(t)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:  "greeting function",
		RepoID: repoID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, len(resp.Results), resp.TotalResults)
	assert.False(t, resp.CacheHit)

	for i, result := range resp.Results {
		assert.Equal(t, i+1, result.Rank)
		assert.NotEmpty(t, result.FileName)
		assert.Positive(t, result.StartLine)
		assert.Contains(t, result.Content, "The following code snippet is from a file at location")
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Results[i-1].Score, result.Score)
		}
	}
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	s, repoID := indexedFixture(t)

	_, err := s.Search(context.Background(), SearchRequest{Query: "   ", RepoID: repoID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query cannot be empty")
}

func TestSearch_LimitNormalized(t *testing.T) {
	s, repoID := indexedFixture(t)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:  "anything",
		RepoID: repoID,
		Limit:  1,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(resp.Results), 1)

	req := SearchRequest{Query: "q", Limit: 5000}
	require.NoError(t, s.validateRequest(&req))
	assert.Equal(t, MaxLimit, req.Limit)

	req = SearchRequest{Query: "q"}
	require.NoError(t, s.validateRequest(&req))
	assert.Equal(t, DefaultLimit, req.Limit)
	assert.Equal(t, DefaultCacheTTL, req.CacheTTL)
}

func TestSearch_CacheHitAndInvalidation(t *testing.T) {
	s, repoID := indexedFixture(t)
	ctx := context.Background()

	req := SearchRequest{Query: "square of a number", RepoID: repoID, UseCache: true}

	first, err := s.Search(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, first.Results)
	assert.False(t, first.CacheHit)

	second, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)

	s.InvalidateCache()
	third, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
}

func TestSearch_CacheExpiry(t *testing.T) {
	s, repoID := indexedFixture(t)
	ctx := context.Background()

	req := SearchRequest{
		Query:    "square of a number",
		RepoID:   repoID,
		UseCache: true,
		CacheTTL: time.Millisecond,
	}
	_, err := s.Search(ctx, req)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	resp, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit, "expired entry must not be served")
}

func TestSearch_CachedResponseIsACopy(t *testing.T) {
	s, repoID := indexedFixture(t)
	ctx := context.Background()

	req := SearchRequest{Query: "greeting function", RepoID: repoID, UseCache: true}
	first, err := s.Search(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, first.Results)

	first.Results[0].Content = "mutated"

	second, err := s.Search(ctx, req)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	assert.NotEqual(t, "mutated", second.Results[0].Content)
}

func TestComputeQueryHash_Distinguishes(t *testing.T) {
	base := SearchRequest{Query: "q", RepoID: 1, Limit: 10}

	other := base
	other.Query = "different"
	assert.NotEqual(t, computeQueryHash(base), computeQueryHash(other))

	other = base
	other.RepoID = 2
	assert.NotEqual(t, computeQueryHash(base), computeQueryHash(other))

	other = base
	other.Filters = &storage.SearchFilters{FilePattern: "*.go"}
	assert.NotEqual(t, computeQueryHash(base), computeQueryHash(other))

	assert.Equal(t, computeQueryHash(base), computeQueryHash(base))
}
