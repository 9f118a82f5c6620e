package embedder

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHash(t *testing.T) {
	a := ComputeHash("hello")
	b := ComputeHash("hello")
	c := ComputeHash("world")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64, "hex-encoded SHA-256")
}

func TestValidateRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateRequest(EmbeddingRequest{}), ErrEmptyText)
	assert.NoError(t, ValidateRequest(EmbeddingRequest{Text: "x"}))
}

func TestValidateBatchRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{}), ErrInvalidInput)
	assert.ErrorIs(t,
		ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", "", "c"}}),
		ErrInvalidInput)
	assert.NoError(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", "b"}}))

	big := make([]string, MaxBatchSize+1)
	for i := range big {
		big[i] = fmt.Sprintf("text %d", i)
	}
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: big}), ErrBatchTooLarge)
}

func TestCache_GetReturnsDeepCopy(t *testing.T) {
	cache := NewCache(10)
	cache.Set("h", &Embedding{Vector: []float32{1, 2, 3}, Dimension: 3, Hash: "h"})

	got, ok := cache.Get("h")
	require.True(t, ok)
	got.Vector[0] = 99

	again, ok := cache.Get("h")
	require.True(t, ok)
	assert.Equal(t, float32(1), again.Vector[0], "caller mutation must not reach the cache")
}

func TestCache_Eviction(t *testing.T) {
	cache := NewCache(2)
	cache.Set("a", &Embedding{Hash: "a"})
	cache.Set("b", &Embedding{Hash: "b"})
	cache.Set("c", &Embedding{Hash: "c"})

	assert.Equal(t, 2, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok, "oldest entry evicted")

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestCache_DefaultSize(t *testing.T) {
	assert.NotNil(t, NewCache(0))
	assert.NotNil(t, NewCache(-5))
}

func TestLocalProvider_Deterministic(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	ctx := context.Background()
	a, err := emb.GenerateEmbedding(ctx, EmbeddingRequest{Text: "some chunk"})
	require.NoError(t, err)
	b, err := emb.GenerateEmbedding(ctx, EmbeddingRequest{Text: "some chunk"})
	require.NoError(t, err)
	c, err := emb.GenerateEmbedding(ctx, EmbeddingRequest{Text: "another chunk"})
	require.NoError(t, err)

	assert.Equal(t, a.Vector, b.Vector)
	assert.NotEqual(t, a.Vector, c.Vector)
	assert.Len(t, a.Vector, LocalDimension)
	assert.Equal(t, ProviderLocal, a.Provider)
}

func TestLocalProvider_UnitVectors(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)

	result, err := emb.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "x"})
	require.NoError(t, err)

	var sum float64
	for _, v := range result.Vector {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestLocalProvider_Batch(t *testing.T) {
	emb, err := NewLocalProvider(NewCache(10))
	require.NoError(t, err)

	resp, err := emb.GenerateBatch(context.Background(), BatchEmbeddingRequest{
		Texts: []string{"one", "two", "three"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 3)
	assert.Equal(t, ProviderLocal, resp.Provider)

	for i, e := range resp.Embeddings {
		assert.Len(t, e.Vector, LocalDimension, "embedding %d", i)
		assert.NotEmpty(t, e.Hash)
	}
}

func TestNormalizeVector_Zero(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, NormalizeVector(zero))
}
