// Package mcp implements the Model Context Protocol (MCP) server for RepoGPT.
//
// The server speaks JSON-RPC 2.0 over stdio and exposes three tools to MCP
// clients:
//   - index_repository: crawl a git repository, annotate its source chunks,
//     and index them for semantic search
//   - search_code: answer natural language queries against an indexed
//     repository
//   - get_status: report indexing statistics and health for a repository
//
// # Tool: index_repository
//
//	Request:
//	{
//	  "name": "index_repository",
//	  "arguments": {
//	    "path": "/path/to/repo",
//	    "chunk_size": 3000,
//	    "chunk_overlap": 0,
//	    "workers": 4
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "files_processed": 120,
//	  "files_skipped": 14,
//	  "chunks_stored": 843,
//	  "embeddings_stored": 843,
//	  "duration_ms": 5210
//	}
//
// # Tool: search_code
//
//	Request:
//	{
//	  "name": "search_code",
//	  "arguments": {
//	    "path": "/path/to/repo",
//	    "query": "where is user authentication handled",
//	    "limit": 10,
//	    "file_pattern": "*.go"
//	  }
//	}
//
//	Response:
//	{
//	  "total_results": 10,
//	  "results": [
//	    {
//	      "rank": 1,
//	      "score": 0.91,
//	      "dir_path": "internal/auth",
//	      "file_name": "service.go",
//	      "start_line": 45,
//	      "end_line": 72,
//	      "content": "The following code snippet is from a file at location ..."
//	    }
//	  ]
//	}
//
// # Error codes
//
//   - -32602: invalid params (missing or malformed arguments)
//   - -32603: internal error (database, filesystem, embedding provider)
//   - -32001: path is not a git repository
//   - -32002: indexing already in progress for the repository
//   - -32003: repository not indexed
//   - -32004: empty query
//
// Stdout carries protocol messages only; all logging goes to stderr.
package mcp
