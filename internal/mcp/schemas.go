package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexRepositoryTool returns the tool definition for index_repository
func indexRepositoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_repository",
		Description: "Crawl a git repository, annotate its source chunks, and index them for semantic search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root (must contain a .git directory)",
				},
				"chunk_size": map[string]interface{}{
					"type":        "integer",
					"description": "Target chunk size in bytes",
					"default":     3000,
					"minimum":     1,
				},
				"chunk_overlap": map[string]interface{}{
					"type":        "integer",
					"description": "Byte overlap between adjacent chunks (must be smaller than chunk_size)",
					"default":     0,
					"minimum":     0,
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Number of concurrent file workers",
					"default":     4,
					"minimum":     1,
				},
				"skip_embeddings": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, store annotated chunks without generating embeddings",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Search an indexed repository with a natural language query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to an indexed repository",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"file_pattern": map[string]interface{}{
					"type":        "string",
					"description": "Glob pattern matched against dir_path/file_name (e.g. '*.go', 'internal/*')",
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity threshold (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"use_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, serve repeated queries from the response cache",
					"default":     true,
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a repository",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository",
				},
			},
			Required: []string{"path"},
		},
	}
}
