package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragworks/docrag/internal/config"
	"github.com/ragworks/docrag/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	t.Setenv("DOCRAG_EMBEDDING_PROVIDER", "local")

	cfg := &config.Config{
		TopK:         10,
		FusionMethod: types.FusionRRF,
		CacheSize:    100,
		LogLevel:     "info",
	}

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.store.Close() })
	return s
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func decodeResponse(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &response))
	return response
}

func TestNewServerComponents(t *testing.T) {
	s := newTestServer(t)

	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.store)
	assert.NotNil(t, s.embedder)
	assert.NotNil(t, s.chunks)
	assert.NotNil(t, s.pipeline)
	assert.NotNil(t, s.retriever)
}

func TestIngestDocumentTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleIngestDocument(ctx, callRequest("ingest_document", map[string]interface{}{
		"collection": "docs",
		"text":       strings.Repeat("Hybrid retrieval combines vector and keyword search. ", 40),
	}))
	require.NoError(t, err)

	response := decodeResponse(t, result)
	assert.Equal(t, true, response["ingested"])
	assert.NotEmpty(t, response["document_id"])
	assert.Equal(t, true, response["document_id_generated"])
	assert.Greater(t, response["chunks_stored"], float64(1))
}

func TestIngestDocumentMissingParams(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIngestDocument(ctx, callRequest("ingest_document", map[string]interface{}{
		"text": "missing collection",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleIngestDocument(ctx, callRequest("ingest_document", map[string]interface{}{
		"collection": "docs",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestIngestDocumentRejectsUnknownType(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleIngestDocument(context.Background(), callRequest("ingest_document", map[string]interface{}{
		"collection":    "docs",
		"text":          "some text",
		"document_type": "screenplay",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestRetrieveTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIngestDocument(ctx, callRequest("ingest_document", map[string]interface{}{
		"collection":  "docs",
		"document_id": "d1",
		"text":        "Python is a popular language for machine learning.",
		"metadata":    map[string]interface{}{"kind": "article"},
	}))
	require.NoError(t, err)

	result, err := s.handleRetrieve(ctx, callRequest("retrieve", map[string]interface{}{
		"collection": "docs",
		"query":      "python machine learning",
	}))
	require.NoError(t, err)

	response := decodeResponse(t, result)
	assert.Equal(t, "hybrid", response["search_mode"])
	assert.Greater(t, response["count"], float64(0))

	results, ok := response["results"].([]interface{})
	require.True(t, ok)
	first, ok := results[0].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, first["id"], "d1_")
	assert.NotEmpty(t, first["document"])
}

func TestRetrieveUnknownCollection(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleRetrieve(context.Background(), callRequest("retrieve", map[string]interface{}{
		"collection": "missing",
		"query":      "anything",
	}))
	requireMCPCode(t, err, ErrorCodeCollectionNotFound)
}

func TestRetrieveParamValidation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIngestDocument(ctx, callRequest("ingest_document", map[string]interface{}{
		"collection": "docs",
		"text":       "content",
	}))
	require.NoError(t, err)

	_, err = s.handleRetrieve(ctx, callRequest("retrieve", map[string]interface{}{
		"collection": "docs",
	}))
	requireMCPCode(t, err, ErrorCodeEmptyQuery)

	_, err = s.handleRetrieve(ctx, callRequest("retrieve", map[string]interface{}{
		"collection": "docs",
		"query":      "q",
		"top_k":      float64(500),
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleRetrieve(ctx, callRequest("retrieve", map[string]interface{}{
		"collection":  "docs",
		"query":       "q",
		"search_mode": "telepathic",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleRetrieve(ctx, callRequest("retrieve", map[string]interface{}{
		"collection": "docs",
		"query":      "q",
		"rerank":     true,
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestChunkDocumentTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleChunkDocument(context.Background(), callRequest("chunk_document", map[string]interface{}{
		"text":       strings.Repeat("One sentence of filler text for splitting. ", 30),
		"chunk_size": float64(200),
	}))
	require.NoError(t, err)

	response := decodeResponse(t, result)
	assert.Greater(t, response["chunk_count"], float64(1))

	chunks, ok := response["chunks"].([]interface{})
	require.True(t, ok)
	first, ok := chunks[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(0), first["chunk_index"])
	assert.NotEmpty(t, first["text"])
}

func TestChunkDocumentInvalidOverlap(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleChunkDocument(context.Background(), callRequest("chunk_document", map[string]interface{}{
		"text":          "some text",
		"chunk_size":    float64(100),
		"chunk_overlap": float64(200),
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestGetStatusTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleGetStatus(ctx, callRequest("get_status", map[string]interface{}{
		"collection": "docs",
	}))
	require.NoError(t, err)
	response := decodeResponse(t, result)
	assert.Equal(t, false, response["exists"])

	_, err = s.handleIngestDocument(ctx, callRequest("ingest_document", map[string]interface{}{
		"collection": "docs",
		"text":       "A short document.",
	}))
	require.NoError(t, err)

	result, err = s.handleGetStatus(ctx, callRequest("get_status", map[string]interface{}{
		"collection": "docs",
	}))
	require.NoError(t, err)

	response = decodeResponse(t, result)
	assert.Equal(t, true, response["exists"])

	stats, ok := response["statistics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), stats["documents_count"])
	assert.GreaterOrEqual(t, stats["chunks_count"], float64(1))

	emb, ok := response["embedder"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "local", emb["provider"])
}

func requireMCPCode(t *testing.T, err error, code int) {
	t.Helper()

	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
}
