package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/davidbridgwood/RepoGPT/internal/embedder"
	"github.com/davidbridgwood/RepoGPT/internal/indexer"
	"github.com/davidbridgwood/RepoGPT/internal/searcher"
	"github.com/davidbridgwood/RepoGPT/internal/storage"
)

// Smoke test for the indexing and embedding pipeline. Builds a throwaway
// repository, indexes it with the offline local provider, and runs one
// query against the result. Exits non-zero on any failure.
func main() {
	fmt.Println("Testing embedding integration...")

	tmpDir, err := os.MkdirTemp("", "repogpt-test-*")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		log.Fatalf("Failed to create .git dir: %v", err)
	}

	testCode := `def add(a, b):
    """Add two numbers."""
    return a + b


if __name__ == "__main__":
    print(add(1, 2))
`
	if err := os.WriteFile(filepath.Join(tmpDir, "calc.py"), []byte(testCode), 0644); err != nil {
		log.Fatalf("Failed to write test file: %v", err)
	}

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	emb, err := embedder.NewLocalProvider(embedder.NewCache(embedder.DefaultCacheSize))
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	idx := indexer.New(store, emb)

	config := &indexer.Config{
		Workers:   2,
		BatchSize: 10,
	}

	ctx := context.Background()
	stats, err := idx.IndexRepository(ctx, tmpDir, config)
	if err != nil {
		log.Fatalf("Failed to index repository: %v", err)
	}

	fmt.Printf("\nIndexing Statistics:\n")
	fmt.Printf("  Files Processed: %d\n", stats.FilesProcessed)
	fmt.Printf("  Files Skipped: %d\n", stats.FilesSkipped)
	fmt.Printf("  Files Failed: %d\n", stats.FilesFailed)
	fmt.Printf("  Chunks Stored: %d\n", stats.ChunksStored)
	fmt.Printf("  Embeddings Stored: %d\n", stats.EmbeddingsStored)
	fmt.Printf("  Duration: %v\n", stats.Duration)

	if len(stats.ErrorMessages) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, msg := range stats.ErrorMessages {
			fmt.Printf("  - %s\n", msg)
		}
	}

	repo, err := store.GetRepo(ctx, tmpDir)
	if err != nil {
		log.Fatalf("Failed to get repo: %v", err)
	}

	chunks, err := store.ListChunksByRepo(ctx, repo.ID)
	if err != nil {
		log.Fatalf("Failed to list chunks: %v", err)
	}

	embeddingCount := 0
	for _, chunk := range chunks {
		if _, err := store.GetEmbedding(ctx, chunk.ID); err == nil {
			embeddingCount++
		}
	}

	fmt.Printf("\nVerification:\n")
	fmt.Printf("  Chunks in DB: %d\n", len(chunks))
	fmt.Printf("  Embeddings in DB: %d\n", embeddingCount)

	if embeddingCount == 0 {
		fmt.Println("\n✗ FAILURE: No embeddings were stored!")
		os.Exit(1)
	}

	resp, err := searcher.New(store, emb).Search(ctx, searcher.SearchRequest{
		Query:  "function that adds two numbers",
		RepoID: repo.ID,
	})
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	fmt.Printf("\nSearch Results: %d\n", resp.TotalResults)
	for _, r := range resp.Results {
		fmt.Printf("  #%d %s/%s:%d-%d (score %.4f)\n",
			r.Rank, r.DirPath, r.FileName, r.StartLine, r.EndLine, r.Score)
	}

	if resp.TotalResults == 0 {
		fmt.Println("\n✗ FAILURE: Search returned no results!")
		os.Exit(1)
	}

	fmt.Println("\n✓ SUCCESS: Chunks indexed, embedded, and searchable!")
}
