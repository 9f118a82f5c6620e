package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds explicit embedder configuration.
type Config struct {
	Provider  string
	APIKey    string // OpenAI key or Ollama host, per provider
	CacheSize int
}

// NewFromEnv creates an embedder from the environment.
// Priority:
//  1. REPOGPT_EMBEDDING_PROVIDER (openai, ollama, local)
//  2. OPENAI_API_KEY set: use OpenAI
//  3. OLLAMA_HOST set: use Ollama
//  4. Default to the local provider
func NewFromEnv() (Embedder, error) {
	cache := NewCache(DefaultCacheSize)

	if provider := os.Getenv(EnvProvider); provider != "" {
		return build(strings.ToLower(provider), "", cache)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return NewOpenAIProvider("", cache)
	}
	if os.Getenv(EnvOllamaHost) != "" {
		return NewOllamaProvider("", cache)
	}
	return NewLocalProvider(cache)
}

// New creates an embedder from explicit configuration.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}
	return build(strings.ToLower(cfg.Provider), cfg.APIKey, cache)
}

func build(provider, credential string, cache *Cache) (Embedder, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(credential, cache)
	case ProviderOllama:
		return NewOllamaProvider(credential, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// DetectProvider reports which provider NewFromEnv would pick.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvOllamaHost) != "" {
		return ProviderOllama
	}
	return ProviderLocal
}
