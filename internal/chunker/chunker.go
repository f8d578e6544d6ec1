package chunker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ragworks/docrag/internal/splitter"
	"github.com/ragworks/docrag/internal/structure"
	"github.com/ragworks/docrag/pkg/types"
)

// Document is the chunking engine's input: raw content plus whatever
// metadata the caller has about it
type Document struct {
	ID           string
	Content      string
	FileName     string
	DocumentType types.DocumentType
	Pages        []structure.PageText
	Metadata     map[string]any
}

// Options configures an Engine
type Options struct {
	// Config overrides the per-type chunking defaults when set
	Config *types.ChunkingConfig

	// DefaultType is used when a document carries no explicit type and
	// heuristic detection is not wanted as the first choice
	DefaultType types.DocumentType

	Logger *slog.Logger
}

// Engine turns raw document text into an ordered chunk sequence. An Engine
// holds no mutable state; the splitter and structure maps are built fresh
// for every Chunk call, so concurrent runs share nothing.
type Engine struct {
	config      *types.ChunkingConfig
	defaultType types.DocumentType
	logger      *slog.Logger
}

// NewEngine creates a chunking engine. An explicit Config is validated up
// front so misconfiguration surfaces before any document is processed.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Config != nil {
		if err := opts.Config.Validate(); err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		config:      opts.Config,
		defaultType: opts.DefaultType,
		logger:      logger,
	}, nil
}

// Chunk splits the document into annotated chunks. Output is all-or-nothing:
// any failure mid-run discards partial chunks and returns a ChunkingError
// carrying the document id.
func (e *Engine) Chunk(ctx context.Context, doc Document) (chunks []types.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			chunks = nil
			err = &types.ChunkingError{
				DocumentID: doc.ID,
				Err:        fmt.Errorf("panic during chunking: %v", r),
			}
		}
	}()

	if doc.ID == "" {
		return nil, &types.ChunkingError{DocumentID: doc.ID, Err: fmt.Errorf("document id is required")}
	}

	if err := ctx.Err(); err != nil {
		return nil, &types.ChunkingError{DocumentID: doc.ID, Err: err}
	}

	if doc.Content == "" {
		return []types.Chunk{}, nil
	}

	docType := e.resolveType(doc)
	cfg := e.resolveConfig(docType)

	split := splitter.New(cfg)
	pieces := split.Split(doc.Content)

	pageMap := structure.ExtractPageMap(doc.Content, doc.Pages)
	sectionMap := structure.ExtractSectionMap(doc.Content)

	baseMeta := types.FlattenMetadata(doc.Metadata)

	chunks = make([]types.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunk := types.NewChunk(doc.ID, i, piece.Text, piece.Start, piece.End)
		chunk.DocumentType = docType

		if page, ok := pageMap.PageAt(piece.Start); ok {
			p := page
			chunk.PageNumber = &p
		}

		if sec, ok := sectionMap.SectionAt(piece.Start); ok {
			chunk.Section = fmt.Sprintf("section_%d", sec.ID)
			chunk.Heading = sec.Heading
		}

		chunk.Metadata = e.chunkMetadata(baseMeta, &chunk)
		chunks = append(chunks, chunk)
	}

	e.logger.Debug("chunked document",
		"document_id", doc.ID,
		"document_type", string(docType),
		"chunks", len(chunks),
		"chunk_size", cfg.ChunkSize,
		"chunk_overlap", cfg.ChunkOverlap)

	return chunks, nil
}

// resolveType picks the effective document type: explicit value on the
// document, then the engine default, then heuristic detection.
func (e *Engine) resolveType(doc Document) types.DocumentType {
	if doc.DocumentType != "" {
		return doc.DocumentType
	}
	if e.defaultType != "" {
		return e.defaultType
	}
	return DetectType(doc.FileName, doc.Content)
}

// resolveConfig applies type defaults unless the engine carries an explicit
// size override
func (e *Engine) resolveConfig(docType types.DocumentType) types.ChunkingConfig {
	if e.config != nil {
		cfg := *e.config
		cfg.DocumentType = docType
		return cfg
	}
	return types.DefaultChunkingConfig(docType)
}

func (e *Engine) chunkMetadata(base map[string]any, chunk *types.Chunk) map[string]any {
	md := make(map[string]any, len(base)+6)
	for k, v := range base {
		md[k] = v
	}

	md["document_id"] = chunk.DocumentID
	md["chunk_index"] = chunk.ChunkIndex
	md["document_type"] = string(chunk.DocumentType)
	md["char_count"] = chunk.CharCount
	md["word_count"] = chunk.WordCount

	if chunk.PageNumber != nil {
		md["page_number"] = *chunk.PageNumber
	}
	if chunk.Section != "" {
		md["section"] = chunk.Section
		md["heading"] = chunk.Heading
	}

	return md
}
