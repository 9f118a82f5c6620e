package embedder

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the in-memory embedding cache.
const DefaultCacheSize = 10000

// Cache is an LRU cache of embeddings keyed by content hash. Annotated
// chunks repeat across re-indexing runs, so cache hits skip provider calls
// entirely.
type Cache struct {
	cache *lru.Cache[string, *Embedding]
}

// NewCache creates a cache holding up to maxLen embeddings.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, *Embedding](maxLen)
	if err != nil {
		cache, _ = lru.New[string, *Embedding](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get retrieves an embedding by hash. The vector is deep-copied so caller
// mutations never reach the cached value.
func (c *Cache) Get(hash string) (*Embedding, bool) {
	emb, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}

	vector := make([]float32, len(emb.Vector))
	copy(vector, emb.Vector)
	return &Embedding{
		Vector:    vector,
		Dimension: emb.Dimension,
		Provider:  emb.Provider,
		Model:     emb.Model,
		Hash:      emb.Hash,
	}, true
}

// Set stores an embedding, evicting the least recently used entry at
// capacity.
func (c *Cache) Set(hash string, emb *Embedding) {
	c.cache.Add(hash, emb)
}

// Size returns the current number of cached embeddings.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.cache.Purge()
}
