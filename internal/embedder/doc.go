// Package embedder generates vector embeddings for annotated code chunks.
//
// Three providers are available: OpenAI (text-embedding-3-small, 1536
// dimensions), Ollama (nomic-embed-text against a local server, 768
// dimensions), and a deterministic offline provider used when no API is
// configured. Selection happens through NewFromEnv:
//
//  1. REPOGPT_EMBEDDING_PROVIDER forces a provider (openai, ollama, local)
//  2. OPENAI_API_KEY set: OpenAI
//  3. OLLAMA_HOST set: Ollama
//  4. otherwise the local provider
//
// All providers share an LRU cache keyed by the SHA-256 of the chunk text,
// and the HTTP providers retry transient failures with exponential backoff.
//
// Typical usage:
//
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	resp, err := emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
//	    Texts: texts,
//	})
package embedder
