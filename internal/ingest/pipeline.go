package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ragworks/docrag/internal/chunker"
	"github.com/ragworks/docrag/internal/embedder"
	"github.com/ragworks/docrag/internal/vectorstore"
)

// ErrIngestInProgress is returned when another ingest run already holds the
// collection's lock.
var ErrIngestInProgress = errors.New("ingest already in progress for collection")

// Invalidator is notified after a collection's contents change so derived
// state (keyword indexes, query caches) can be rebuilt lazily.
type Invalidator interface {
	Invalidate(collectionID string)
}

// Options configures a Pipeline
type Options struct {
	Tenant      string
	Workers     int          // concurrent documents in IngestAll (default: runtime.NumCPU())
	BatchSize   int          // texts per embedding call (default: embedder.MaxBatchSize)
	Invalidator Invalidator  // optional, notified after each successful run
	Logger      *slog.Logger // optional, defaults to a discarding logger
}

// Statistics summarizes one ingest run
type Statistics struct {
	DocumentsIngested int
	DocumentsFailed   int
	ChunksCreated     int
	VectorsStored     int
	Duration          time.Duration
	ErrorMessages     []string
}

// Pipeline coordinates the ingestion flow: chunk -> embed -> store. It is
// safe for concurrent use; runs against the same collection are serialized
// by a per-collection lock.
type Pipeline struct {
	chunks      *chunker.Engine
	embedder    embedder.Embedder
	store       vectorstore.Store
	invalidator Invalidator

	tenant    string
	workers   int
	batchSize int
	logger    *slog.Logger
	locks     *lockTable
}

// NewPipeline creates a Pipeline over the given chunking engine, embedder,
// and vector store
func NewPipeline(chunks *chunker.Engine, emb embedder.Embedder, store vectorstore.Store, opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 || batchSize > embedder.MaxBatchSize {
		batchSize = embedder.MaxBatchSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Pipeline{
		chunks:      chunks,
		embedder:    emb,
		store:       store,
		invalidator: opts.Invalidator,
		tenant:      opts.Tenant,
		workers:     workers,
		batchSize:   batchSize,
		logger:      logger,
		locks:       newLockTable(),
	}
}

// IngestDocument chunks, embeds, and stores a single document. A missing
// document id is replaced with a generated UUID. Returns
// ErrIngestInProgress when another run holds the collection's lock.
func (p *Pipeline) IngestDocument(ctx context.Context, collection string, doc chunker.Document) (*Statistics, error) {
	return p.IngestAll(ctx, collection, []chunker.Document{doc})
}

// IngestAll ingests multiple documents concurrently. Documents that fail to
// chunk or embed are skipped and recorded in Statistics.ErrorMessages; the
// run only fails outright on store or context errors.
func (p *Pipeline) IngestAll(ctx context.Context, collection string, docs []chunker.Document) (*Statistics, error) {
	name := vectorstore.CollectionName(collection, p.tenant)

	lock := p.locks.get(name)
	if !lock.TryAcquire() {
		return nil, fmt.Errorf("%s: %w", collection, ErrIngestInProgress)
	}
	defer lock.Release()

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	if err := p.ensureCollection(ctx, collection); err != nil {
		return nil, err
	}

	var (
		ingested int32
		failed   int32
		chunks   int32
		vectors  int32
		mu       sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, doc := range docs {
		g.Go(func() error {
			n, err := p.ingestOne(gctx, name, doc)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", doc.ID, err))
				mu.Unlock()
				return nil
			}
			atomic.AddInt32(&ingested, 1)
			atomic.AddInt32(&chunks, int32(n))
			atomic.AddInt32(&vectors, int32(n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.DocumentsIngested = int(ingested)
	stats.DocumentsFailed = int(failed)
	stats.ChunksCreated = int(chunks)
	stats.VectorsStored = int(vectors)
	stats.Duration = time.Since(startTime)

	if p.invalidator != nil && stats.DocumentsIngested > 0 {
		p.invalidator.Invalidate(name)
	}

	p.logger.Info("ingest complete",
		"collection", collection,
		"documents", stats.DocumentsIngested,
		"failed", stats.DocumentsFailed,
		"chunks", stats.ChunksCreated,
		"duration", stats.Duration)

	return stats, nil
}

// ingestOne processes a single document and returns the number of chunks
// stored
func (p *Pipeline) ingestOne(ctx context.Context, name string, doc chunker.Document) (int, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	chunks, err := p.chunks.Chunk(ctx, doc)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := p.embedBatches(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}

	stored := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		stored[i] = vectorstore.Document{
			ID:        fmt.Sprintf("%s_%d", c.DocumentID, c.ChunkIndex),
			Embedding: embeddings[i],
			Text:      c.Text,
			Metadata:  c.Metadata,
		}
	}

	// A re-ingest may produce fewer chunks than the stored revision; drop
	// the old chunk set first so no stale tail survives.
	if err := p.deleteExistingChunks(ctx, name, doc.ID); err != nil {
		return 0, err
	}

	if err := p.store.AddDocuments(ctx, name, stored); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	return len(chunks), nil
}

// deleteExistingChunks removes every stored chunk belonging to the document
func (p *Pipeline) deleteExistingChunks(ctx context.Context, name, documentID string) error {
	existing, err := p.store.ListDocuments(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to list existing chunks: %w", err)
	}

	var stale []string
	for _, d := range existing {
		if id, ok := d.Metadata["document_id"].(string); ok && id == documentID {
			stale = append(stale, d.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	if err := p.store.DeleteDocuments(ctx, name, stale); err != nil {
		return fmt.Errorf("failed to delete stale chunks: %w", err)
	}
	return nil
}

// embedBatches splits texts into provider-sized batches and concatenates
// the resulting vectors in input order
func (p *Pipeline) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += p.batchSize {
		end := i + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := p.embedder.EmbedTexts(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (p *Pipeline) ensureCollection(ctx context.Context, collection string) error {
	err := p.store.CreateCollection(ctx, collection, p.tenant)
	if err != nil && !errors.Is(err, vectorstore.ErrAlreadyExists) {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}
