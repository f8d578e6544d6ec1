// Package mcp implements the Model Context Protocol server exposing
// document ingestion and retrieval as MCP tools over stdio.
//
// # Tools
//
// ingest_document stores a document in a collection:
//
//	{
//	  "collection": "contracts",
//	  "text": "This agreement sets out...",
//	  "document_id": "contract-2024-001",
//	  "document_type": "contract",
//	  "metadata": {"department": "legal"}
//	}
//
// retrieve searches a collection:
//
//	{
//	  "collection": "contracts",
//	  "query": "late payment penalties",
//	  "top_k": 5,
//	  "search_mode": "hybrid",
//	  "filters": {"department": "legal"}
//	}
//
// chunk_document previews chunking without storing anything, and
// get_status reports collection statistics and server configuration.
//
// # Errors
//
// Handlers return MCPError values with JSON-RPC style codes:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  collection not found
//	-32002  ingest already in progress
//	-32004  empty query
//
// # Wiring
//
// NewServer builds the full dependency graph from a config.Config: the
// storage backend (SQLite when DOCRAG_DB_PATH is set, in-memory
// otherwise), the embedding provider from the environment, the chunking
// engine, the ingest pipeline, and the retrieval engine with its keyword
// index manager. Stdout is reserved for the MCP protocol; all logging
// goes to stderr.
package mcp
