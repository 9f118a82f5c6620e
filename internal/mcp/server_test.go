package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbridgwood/RepoGPT/internal/embedder"
)

// newTestServer builds a server backed by a temp database and the local
// embedding provider so tests never touch the network.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv(embedder.EnvProvider, embedder.ProviderLocal)

	s, err := NewServer(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.storage.Close() })
	return s
}

func gitFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "greet.py"),
		[]byte("def greet(name):\n    return \"Hello \" + name\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "math.go"),
		[]byte("package math\n\nfunc Square(n int) int {\n\treturn n * n\n}\n"), 0o644))
	return root
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// decodeResult unpacks the JSON payload from a text tool result.
func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool result should be text content")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestNewServer_Components(t *testing.T) {
	s := newTestServer(t)

	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.storage)
	assert.NotNil(t, s.indexer)
	assert.NotNil(t, s.searcher)
}

func TestIndexRepositoryTool(t *testing.T) {
	s := newTestServer(t)
	root := gitFixture(t)

	result, err := s.handleIndexRepository(context.Background(),
		callRequest("index_repository", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	assert.Equal(t, true, payload["indexed"])
	assert.Equal(t, float64(2), payload["files_processed"])
	assert.Zero(t, payload["files_failed"])
	assert.Positive(t, payload["chunks_stored"])
	assert.Equal(t, payload["chunks_stored"], payload["embeddings_stored"])
}

func TestIndexRepositoryTool_PathValidation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIndexRepository(ctx,
		callRequest("index_repository", map[string]interface{}{}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)

	_, err = s.handleIndexRepository(ctx,
		callRequest("index_repository", map[string]interface{}{"path": "relative/path"}))
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)

	// Directory without .git
	_, err = s.handleIndexRepository(ctx,
		callRequest("index_repository", map[string]interface{}{"path": t.TempDir()}))
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeRepoNotFound, mcpErr.Code)
}

func TestIndexRepositoryTool_OverlapRejected(t *testing.T) {
	s := newTestServer(t)
	root := gitFixture(t)

	_, err := s.handleIndexRepository(context.Background(),
		callRequest("index_repository", map[string]interface{}{
			"path":          root,
			"chunk_size":    float64(100),
			"chunk_overlap": float64(100),
		}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestSearchCodeTool(t *testing.T) {
	s := newTestServer(t)
	root := gitFixture(t)
	ctx := context.Background()

	_, err := s.handleIndexRepository(ctx,
		callRequest("index_repository", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	result, err := s.handleSearchCode(ctx,
		callRequest("search_code", map[string]interface{}{
			"path":  root,
			"query": "greeting function",
		}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	assert.Positive(t, payload["total_results"])

	results, ok := payload["results"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, results)

	first, ok := results[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), first["rank"])
	assert.NotEmpty(t, first["file_name"])
	assert.Contains(t, first["content"], "The following code snippet is from a file at location")
}

func TestSearchCodeTool_FilePattern(t *testing.T) {
	s := newTestServer(t)
	root := gitFixture(t)
	ctx := context.Background()

	_, err := s.handleIndexRepository(ctx,
		callRequest("index_repository", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	result, err := s.handleSearchCode(ctx,
		callRequest("search_code", map[string]interface{}{
			"path":         root,
			"query":        "square a number",
			"file_pattern": "*.go",
		}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	results, ok := payload["results"].([]interface{})
	require.True(t, ok)
	for _, raw := range results {
		entry, ok := raw.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "math.go", entry["file_name"])
	}
}

func TestSearchCodeTool_NotIndexed(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchCode(context.Background(),
		callRequest("search_code", map[string]interface{}{
			"path":  t.TempDir(),
			"query": "anything",
		}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeNotIndexed, mcpErr.Code)
}

func TestSearchCodeTool_EmptyQuery(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchCode(context.Background(),
		callRequest("search_code", map[string]interface{}{
			"path":  t.TempDir(),
			"query": "",
		}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestGetStatusTool(t *testing.T) {
	s := newTestServer(t)
	root := gitFixture(t)
	ctx := context.Background()

	// Before indexing the tool reports not indexed, not an error.
	result, err := s.handleGetStatus(ctx,
		callRequest("get_status", map[string]interface{}{"path": root}))
	require.NoError(t, err)
	payload := decodeResult(t, result)
	assert.Equal(t, false, payload["indexed"])

	_, err = s.handleIndexRepository(ctx,
		callRequest("index_repository", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	result, err = s.handleGetStatus(ctx,
		callRequest("get_status", map[string]interface{}{"path": root}))
	require.NoError(t, err)
	payload = decodeResult(t, result)
	assert.Equal(t, true, payload["indexed"])

	repository, ok := payload["repository"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, root, repository["path"])
	assert.Equal(t, float64(2), repository["total_files"])

	statistics, ok := payload["statistics"].(map[string]interface{})
	require.True(t, ok)
	assert.Positive(t, statistics["chunks_count"])
	assert.Equal(t, statistics["chunks_count"], statistics["embeddings_count"])

	health, ok := payload["health"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, health["database_accessible"])
	assert.Equal(t, true, health["embeddings_available"])
}

func TestToolDefinitions(t *testing.T) {
	index := indexRepositoryTool()
	assert.Equal(t, "index_repository", index.Name)
	assert.Contains(t, index.InputSchema.Required, "path")

	search := searchCodeTool()
	assert.Equal(t, "search_code", search.Name)
	assert.ElementsMatch(t, []string{"path", "query"}, search.InputSchema.Required)

	status := getStatusTool()
	assert.Equal(t, "get_status", status.Name)
	assert.Contains(t, status.InputSchema.Required, "path")
}
