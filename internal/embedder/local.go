package embedder

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
)

const (
	ProviderLocal     = "local"
	DefaultLocalModel = "local-embeddings"
	LocalDimension    = 384
)

// LocalProvider produces deterministic hash-derived vectors with no network
// dependency. The vectors carry no semantic signal; they exist so indexing
// and search work offline and in tests.
type LocalProvider struct {
	model string
	cache *Cache
}

// NewLocalProvider creates the offline embedder.
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		model: DefaultLocalModel,
		cache: cache,
	}, nil
}

func (l *LocalProvider) GenerateEmbedding(_ context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	hash := ComputeHash(req.Text)
	if l.cache != nil {
		if emb, ok := l.cache.Get(hash); ok {
			return emb, nil
		}
	}

	// The digest seeds the vector; re-hashing extends it across the full
	// dimension so distinct texts diverge everywhere, not just in the
	// first 32 components.
	vector := make([]float32, LocalDimension)
	digest := sha256.Sum256([]byte(req.Text))
	for i := 0; i < LocalDimension; i++ {
		if i > 0 && i%len(digest) == 0 {
			digest = sha256.Sum256(digest[:])
		}
		vector[i] = float32(digest[i%len(digest)])/127.5 - 1.0
	}

	emb := &Embedding{
		Vector:    NormalizeVector(vector),
		Dimension: LocalDimension,
		Provider:  ProviderLocal,
		Model:     l.model,
		Hash:      hash,
	}
	if l.cache != nil {
		l.cache.Set(hash, emb)
	}
	return emb, nil
}

func (l *LocalProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	embeddings := make([]*Embedding, len(req.Texts))
	for i, text := range req.Texts {
		emb, err := l.GenerateEmbedding(ctx, EmbeddingRequest{Text: text, Model: req.Model})
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		embeddings[i] = emb
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderLocal,
		Model:      l.model,
	}, nil
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}

// NormalizeVector scales a vector to unit length. Zero vectors pass through
// unchanged.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}
	return result
}
