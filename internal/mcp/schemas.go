package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ingestDocumentTool returns the tool definition for ingest_document
func ingestDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_document",
		Description: "Chunk, embed, and store a document in a collection to make it retrievable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Collection to store the document in (created if missing)",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Full document text",
				},
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Stable document identifier; a UUID is generated when omitted",
				},
				"document_type": map[string]interface{}{
					"type":        "string",
					"description": "Document type driving chunking defaults; auto-detected when omitted",
					"enum":        []string{"contract", "report", "article", "general"},
				},
				"metadata": map[string]interface{}{
					"type":        "object",
					"description": "Document-level metadata attached to every chunk",
				},
			},
			Required: []string{"collection", "text"},
		},
	}
}

// retrieveTool returns the tool definition for retrieve
func retrieveTool() mcp.Tool {
	return mcp.Tool{
		Name:        "retrieve",
		Description: "Search a collection with semantic, keyword, or hybrid retrieval",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Collection to search",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"search_mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: hybrid (vector + keyword), vector (semantic only), or keyword (BM25 only)",
					"enum":        []string{"hybrid", "vector", "keyword"},
					"default":     "hybrid",
				},
				"fusion_method": map[string]interface{}{
					"type":        "string",
					"description": "How hybrid scores are combined",
					"enum":        []string{"reciprocal_rank_fusion", "weighted", "mean"},
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Exact-match metadata filters applied to results",
				},
				"rerank": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, rerank results with the configured rerank provider",
					"default":     false,
				},
				"deduplicate": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, drop near-duplicate results",
					"default":     true,
				},
			},
			Required: []string{"collection", "query"},
		},
	}
}

// chunkDocumentTool returns the tool definition for chunk_document
func chunkDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "chunk_document",
		Description: "Split a document into annotated chunks without storing anything",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Document text to split",
				},
				"document_type": map[string]interface{}{
					"type":        "string",
					"description": "Document type driving chunking defaults; auto-detected when omitted",
					"enum":        []string{"contract", "report", "article", "general"},
				},
				"chunk_size": map[string]interface{}{
					"type":        "integer",
					"description": "Target chunk size in characters; overrides the type default",
				},
				"chunk_overlap": map[string]interface{}{
					"type":        "integer",
					"description": "Characters of overlap between consecutive chunks",
				},
			},
			Required: []string{"text"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query collection statistics and server configuration",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Collection to inspect",
				},
			},
			Required: []string{"collection"},
		},
	}
}
