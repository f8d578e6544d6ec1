package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ragworks/docrag/internal/chunker"
	"github.com/ragworks/docrag/internal/ingest"
	"github.com/ragworks/docrag/internal/vectorstore"
	"github.com/ragworks/docrag/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeCollectionNotFound = -32001 // Collection has not been created
	ErrorCodeIngestInProgress   = -32002 // Another ingest run holds the collection lock
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// handleIngestDocument handles the ingest_document tool invocation
func (s *Server) handleIngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	collection, ok := args["collection"].(string)
	if !ok || collection == "" {
		return nil, missingParam("collection")
	}

	text, ok := args["text"].(string)
	if !ok || text == "" {
		return nil, missingParam("text")
	}

	docType, err := parseDocumentType(getStringDefault(args, "document_type", ""))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid document_type", map[string]interface{}{
			"param":  "document_type",
			"reason": err.Error(),
		})
	}

	metadata, _ := args["metadata"].(map[string]interface{})

	doc := chunker.Document{
		ID:           getStringDefault(args, "document_id", ""),
		Content:      text,
		DocumentType: docType,
		Metadata:     metadata,
	}
	generated := false
	if doc.ID == "" {
		doc.ID = uuid.NewString()
		generated = true
	}

	stats, err := s.pipeline.IngestDocument(ctx, collection, doc)
	if err != nil {
		if errors.Is(err, ingest.ErrIngestInProgress) {
			return nil, newMCPError(ErrorCodeIngestInProgress, "ingest already in progress", map[string]interface{}{
				"collection": collection,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "ingest failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"ingested":      stats.DocumentsFailed == 0,
		"document_id":   doc.ID,
		"collection":    collection,
		"chunks_stored": stats.ChunksCreated,
		"duration_ms":   stats.Duration.Milliseconds(),
	}
	if generated {
		response["document_id_generated"] = true
	}
	if len(stats.ErrorMessages) > 0 {
		response["errors"] = stats.ErrorMessages
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRetrieve handles the retrieve tool invocation
func (s *Server) handleRetrieve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	collection, ok := args["collection"].(string)
	if !ok || collection == "" {
		return nil, missingParam("collection")
	}

	queryText, ok := args["query"].(string)
	if !ok || queryText == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	name := vectorstore.CollectionName(collection, s.cfg.Tenant)
	exists, err := s.store.CollectionExists(ctx, collection, s.cfg.Tenant)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to check collection", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if !exists {
		return nil, newMCPError(ErrorCodeCollectionNotFound, "collection not found", map[string]interface{}{
			"collection": collection,
		})
	}

	cfg := types.DefaultRetrievalConfig()
	if s.cfg.TopK > 0 {
		cfg.TopK = s.cfg.TopK
	}
	if s.cfg.FusionMethod != "" {
		cfg.FusionMethod = s.cfg.FusionMethod
	}

	topK := getIntDefault(args, "top_k", cfg.TopK)
	if topK < 1 || topK > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 100", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}
	cfg.TopK = topK

	searchMode := getStringDefault(args, "search_mode", string(cfg.SearchType))
	switch searchMode {
	case "hybrid", "vector", "keyword":
		cfg.SearchType = types.SearchType(searchMode)
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search_mode", map[string]interface{}{
			"param":   "search_mode",
			"value":   searchMode,
			"allowed": []string{"hybrid", "vector", "keyword"},
		})
	}

	if fusion := getStringDefault(args, "fusion_method", ""); fusion != "" {
		cfg.FusionMethod = types.FusionMethod(fusion)
	}

	if filters, ok := args["filters"].(map[string]interface{}); ok && len(filters) > 0 {
		cfg.MetadataFilter = filters
	}

	cfg.DeduplicationEnabled = getBoolDefault(args, "deduplicate", true)

	if getBoolDefault(args, "rerank", false) {
		if s.cfg.JinaAPIKey == "" {
			return nil, newMCPError(ErrorCodeInvalidParams, "rerank requested but no rerank provider configured", map[string]interface{}{
				"param": "rerank",
			})
		}
		cfg.RerankEnabled = true
		cfg.RerankProvider = types.RerankProviderJina
		cfg.RerankTopN = cfg.TopK
	}

	result, err := s.retriever.Retrieve(ctx, queryText, name, cfg)
	if err != nil {
		var cfgErr *types.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid retrieval parameters", map[string]interface{}{
				"param":  cfgErr.Field,
				"reason": cfgErr.Reason,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, result.Len())
	for i := range result.IDs {
		id := result.IDs[i]
		entry := map[string]interface{}{
			"id":       id,
			"document": result.Documents[i],
			"metadata": result.Metadata[i],
			"score":    result.Scores[i],
		}
		if v, ok := result.VectorScores[id]; ok {
			entry["vector_score"] = v
		}
		if v, ok := result.KeywordScores[id]; ok {
			entry["keyword_score"] = v
		}
		if v, ok := result.RerankScores[id]; ok {
			entry["rerank_score"] = v
		}
		results[i] = entry
	}

	response := map[string]interface{}{
		"query":       queryText,
		"collection":  collection,
		"search_mode": string(cfg.SearchType),
		"count":       result.Len(),
		"results":     results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleChunkDocument handles the chunk_document tool invocation
func (s *Server) handleChunkDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	text, ok := args["text"].(string)
	if !ok || text == "" {
		return nil, missingParam("text")
	}

	docType, err := parseDocumentType(getStringDefault(args, "document_type", ""))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid document_type", map[string]interface{}{
			"param":  "document_type",
			"reason": err.Error(),
		})
	}

	engine := s.chunks
	chunkSize := getIntDefault(args, "chunk_size", 0)
	chunkOverlap := getIntDefault(args, "chunk_overlap", -1)
	if chunkSize > 0 || chunkOverlap >= 0 {
		override := types.DefaultChunkingConfig(docType)
		if chunkSize > 0 {
			override.ChunkSize = chunkSize
		}
		if chunkOverlap >= 0 {
			override.ChunkOverlap = chunkOverlap
		}
		engine, err = chunker.NewEngine(chunker.Options{Config: &override, Logger: s.logger})
		if err != nil {
			var cfgErr *types.ConfigError
			if errors.As(err, &cfgErr) {
				return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking parameters", map[string]interface{}{
					"param":  cfgErr.Field,
					"reason": cfgErr.Reason,
				})
			}
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking parameters", map[string]interface{}{
				"reason": err.Error(),
			})
		}
	}

	doc := chunker.Document{
		ID:           uuid.NewString(),
		Content:      text,
		DocumentType: docType,
	}

	chunks, err := engine.Chunk(ctx, doc)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "chunking failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries := make([]map[string]interface{}, len(chunks))
	for i, c := range chunks {
		entry := map[string]interface{}{
			"chunk_index":      c.ChunkIndex,
			"text":             c.Text,
			"char_count":       c.CharCount,
			"word_count":       c.WordCount,
			"start_char_index": c.StartCharIndex,
			"end_char_index":   c.EndCharIndex,
		}
		if c.PageNumber != nil {
			entry["page_number"] = *c.PageNumber
		}
		if c.Section != "" {
			entry["section"] = c.Section
		}
		if c.Heading != "" {
			entry["heading"] = c.Heading
		}
		entries[i] = entry
	}

	resolvedType := docType
	if len(chunks) > 0 {
		resolvedType = chunks[0].DocumentType
	}

	response := map[string]interface{}{
		"document_type": string(resolvedType),
		"chunk_count":   len(chunks),
		"chunks":        entries,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	collection, ok := args["collection"].(string)
	if !ok || collection == "" {
		return nil, missingParam("collection")
	}

	exists, err := s.store.CollectionExists(ctx, collection, s.cfg.Tenant)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to check collection", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if !exists {
		response := map[string]interface{}{
			"exists":     false,
			"collection": collection,
			"message":    "Collection not found. Use ingest_document tool to create it.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	name := vectorstore.CollectionName(collection, s.cfg.Tenant)
	docs, err := s.store.ListDocuments(ctx, name)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read collection", map[string]interface{}{
			"error": err.Error(),
		})
	}

	documentIDs := make(map[string]struct{})
	for _, d := range docs {
		if id, ok := d.Metadata["document_id"].(string); ok {
			documentIDs[id] = struct{}{}
		}
	}

	response := map[string]interface{}{
		"exists":     true,
		"collection": collection,
		"statistics": map[string]interface{}{
			"documents_count": len(documentIDs),
			"chunks_count":    len(docs),
		},
		"embedder": map[string]interface{}{
			"provider":  s.embedder.Provider(),
			"model":     s.embedder.Model(),
			"dimension": s.embedder.Dimension(),
		},
		"storage": map[string]interface{}{
			"build_mode":       vectorstore.BuildMode,
			"vector_extension": vectorstore.VectorExtensionAvailable,
		},
	}
	if s.cfg.Tenant != "" {
		response["tenant"] = s.cfg.Tenant
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
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

func missingParam(name string) error {
	return newMCPError(ErrorCodeInvalidParams, name+" parameter is required", map[string]interface{}{
		"param":  name,
		"reason": "missing or empty",
	})
}

// parseDocumentType validates an optional document_type argument
func parseDocumentType(value string) (types.DocumentType, error) {
	switch types.DocumentType(value) {
	case types.DocTypeContract, types.DocTypeReport, types.DocTypeArticle, types.DocTypeGeneral, "":
		return types.DocumentType(value), nil
	default:
		return "", fmt.Errorf("unknown document type %q", value)
	}
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

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
