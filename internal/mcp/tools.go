package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/davidbridgwood/RepoGPT/internal/crawler"
	"github.com/davidbridgwood/RepoGPT/internal/indexer"
	"github.com/davidbridgwood/RepoGPT/internal/searcher"
	"github.com/davidbridgwood/RepoGPT/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeRepoNotFound       = -32001 // Specified path is not a git repository
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Repository not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// handleIndexRepository handles the index_repository tool invocation
func (s *Server) handleIndexRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrNotGitRepository) {
			code = ErrorCodeRepoNotFound
		}
		return nil, newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	chunkSize := getIntDefault(args, "chunk_size", 0)
	chunkOverlap := getIntDefault(args, "chunk_overlap", 0)
	if chunkSize < 0 || chunkOverlap < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "chunk_size and chunk_overlap must be non-negative", nil)
	}
	if chunkSize > 0 && chunkOverlap >= chunkSize {
		return nil, newMCPError(ErrorCodeInvalidParams, "chunk_overlap must be smaller than chunk_size", map[string]interface{}{
			"chunk_size":    chunkSize,
			"chunk_overlap": chunkOverlap,
		})
	}

	config := &indexer.Config{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Workers:      getIntDefault(args, "workers", 0),
		SkipEmbed:    getBoolDefault(args, "skip_embeddings", false),
	}

	stats, err := s.indexer.IndexRepository(ctx, path, config)
	if err != nil {
		if errors.Is(err, indexer.ErrIndexInProgress) {
			return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress for this repository", nil)
		}
		if errors.Is(err, crawler.ErrNotGitRepo) {
			return nil, newMCPError(ErrorCodeRepoNotFound, "path is not a git repository", map[string]interface{}{
				"path": path,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Stored chunk IDs changed; cached query responses are stale.
	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"indexed":           true,
		"files_processed":   stats.FilesProcessed,
		"files_skipped":     stats.FilesSkipped,
		"files_failed":      stats.FilesFailed,
		"chunks_stored":     stats.ChunksStored,
		"embeddings_stored": stats.EmbeddingsStored,
		"duration_ms":       stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchCode handles the search_code tool invocation
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	repo, err := s.storage.GetRepo(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotIndexed, "repository not indexed", map[string]interface{}{
			"path":   path,
			"reason": "use the index_repository tool first",
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to look up repository", map[string]interface{}{
			"error": err.Error(),
		})
	}

	searchReq := searcher.SearchRequest{
		Query:    query,
		RepoID:   repo.ID,
		Limit:    limit,
		UseCache: getBoolDefault(args, "use_cache", true),
	}

	filePattern := getStringDefault(args, "file_pattern", "")
	minScore := getFloatDefault(args, "min_score", 0)
	if filePattern != "" || minScore > 0 {
		searchReq.Filters = &storage.SearchFilters{
			FilePattern: filePattern,
			MinScore:    minScore,
		}
	}

	resp, err := s.searcher.Search(ctx, searchReq)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = map[string]interface{}{
			"rank":       r.Rank,
			"score":      r.Score,
			"dir_path":   r.DirPath,
			"file_name":  r.FileName,
			"start_line": r.StartLine,
			"end_line":   r.EndLine,
			"content":    r.Content,
		}
	}

	response := map[string]interface{}{
		"query":         query,
		"total_results": resp.TotalResults,
		"duration_ms":   resp.Duration.Milliseconds(),
		"cache_hit":     resp.CacheHit,
		"results":       results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	repo, err := s.storage.GetRepo(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"indexed": false,
			"path":    path,
			"message": "Repository not indexed. Use index_repository tool to index it.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get repository status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	status, err := s.storage.GetStatus(ctx, repo.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": true,
		"repository": map[string]interface{}{
			"path":            repo.RootPath,
			"index_version":   repo.IndexVersion,
			"total_files":     repo.TotalFiles,
			"last_indexed_at": repo.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"statistics": map[string]interface{}{
			"chunks_count":     status.ChunksCount,
			"embeddings_count": status.EmbeddingsCount,
			"index_size_mb":    fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible":  status.Health.DatabaseAccessible,
			"embeddings_available": status.Health.EmbeddingsAvailable,
			"vector_search_native": status.Health.VectorSearchNative,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path is an accessible git repository root
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	if !crawler.IsGitRepo(path) {
		return ErrNotGitRepository
	}

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a float parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired     = errors.New("path is required")
	ErrPathNotAbsolute  = errors.New("path must be absolute")
	ErrPathNotFound     = errors.New("path does not exist")
	ErrPathNotReadable  = errors.New("path is not readable")
	ErrNotDirectory     = errors.New("path is not a directory")
	ErrNotGitRepository = errors.New("path is not a git repository root")
)
