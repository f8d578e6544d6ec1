package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ragworks/docrag/internal/bm25"
	"github.com/ragworks/docrag/internal/chunker"
	"github.com/ragworks/docrag/internal/config"
	"github.com/ragworks/docrag/internal/embedder"
	"github.com/ragworks/docrag/internal/ingest"
	"github.com/ragworks/docrag/internal/query"
	"github.com/ragworks/docrag/internal/reranker"
	"github.com/ragworks/docrag/internal/retriever"
	"github.com/ragworks/docrag/internal/vectorstore"
)

const (
	// ServerName is the MCP server name
	ServerName = "docrag-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	store     vectorstore.Store
	embedder  embedder.Embedder
	chunks    *chunker.Engine
	pipeline  *ingest.Pipeline
	retriever *retriever.Engine
	cfg       *config.Config
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance wired from the given
// configuration. A config with an empty DBPath gets an in-memory store.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := newStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	tables, err := config.LoadQueryTables(cfg.QueryTablesPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load query tables: %w", err)
	}
	optimizer := query.NewWithTables(tables.Stopwords, tables.Synonyms)

	var rr reranker.Reranker
	if cfg.JinaAPIKey != "" {
		rr, err = reranker.NewJinaReranker(cfg.JinaAPIKey)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize reranker: %w", err)
		}
	}

	retr := retriever.NewEngine(store, emb, bm25.NewManager(), retriever.Options{
		Optimizer: optimizer,
		Reranker:  rr,
		Logger:    logger,
		CacheSize: cfg.CacheSize,
	})

	chunks, err := chunker.NewEngine(chunker.Options{
		Config:      cfg.ChunkingConfig(),
		DefaultType: cfg.DefaultDocType,
		Logger:      logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize chunker: %w", err)
	}

	pipeline := ingest.NewPipeline(chunks, emb, store, ingest.Options{
		Tenant:      cfg.Tenant,
		Invalidator: retr,
		Logger:      logger,
	})

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		store:     store,
		embedder:  emb,
		chunks:    chunks,
		pipeline:  pipeline,
		retriever: retr,
		cfg:       cfg,
		logger:    logger,
	}
	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(ingestDocumentTool(), s.handleIngestDocument)
	s.mcp.AddTool(retrieveTool(), s.handleRetrieve)
	s.mcp.AddTool(chunkDocumentTool(), s.handleChunkDocument)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// newStore selects the storage backend: a SQLite database when a path is
// configured, an in-memory store otherwise
func newStore(dbPath string) (vectorstore.Store, error) {
	if dbPath == "" {
		return vectorstore.NewMemoryStore(), nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return vectorstore.NewSQLiteStore(dbPath)
}
