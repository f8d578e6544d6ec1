package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ragworks/docrag/internal/bm25"
	"github.com/ragworks/docrag/internal/chunker"
	"github.com/ragworks/docrag/internal/embedder"
	"github.com/ragworks/docrag/internal/ingest"
	"github.com/ragworks/docrag/internal/query"
	"github.com/ragworks/docrag/internal/retriever"
	"github.com/ragworks/docrag/internal/vectorstore"
	"github.com/ragworks/docrag/pkg/types"
)

// Standalone smoke check for the embedding pipeline: chunks and embeds a
// sample document, stores it, and runs a retrieval against it. Uses the
// configured provider from the environment, falling back to the local one.
func main() {
	fmt.Println("Testing embedding integration...")

	ctx := context.Background()

	emb, err := embedder.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	defer emb.Close()

	fmt.Printf("Provider: %s, Model: %s, Dimension: %d\n",
		emb.Provider(), emb.Model(), emb.Dimension())

	store := vectorstore.NewMemoryStore()
	defer store.Close()

	engine, err := chunker.NewEngine(chunker.Options{})
	if err != nil {
		log.Fatalf("Failed to create chunker: %v", err)
	}

	pipeline := ingest.NewPipeline(engine, emb, store, ingest.Options{})

	sample := chunker.Document{
		ID: "sample",
		Content: "Hybrid retrieval combines semantic vector search with keyword " +
			"matching. Vector search captures meaning while BM25 rewards exact " +
			"term overlap, and rank fusion merges both orderings into one list.",
		Metadata: map[string]any{"source": "smoke-test"},
	}

	stats, err := pipeline.IngestDocument(ctx, "smoke", sample)
	if err != nil {
		log.Fatalf("Failed to ingest document: %v", err)
	}

	fmt.Printf("\nIngest Statistics:\n")
	fmt.Printf("  Documents Ingested: %d\n", stats.DocumentsIngested)
	fmt.Printf("  Chunks Created: %d\n", stats.ChunksCreated)
	fmt.Printf("  Vectors Stored: %d\n", stats.VectorsStored)
	fmt.Printf("  Duration: %v\n", stats.Duration)

	retr := retriever.NewEngine(store, emb, bm25.NewManager(), retriever.Options{
		Optimizer: query.New(),
	})

	result, err := retr.Retrieve(ctx, "rank fusion keyword search", "smoke", types.DefaultRetrievalConfig())
	if err != nil {
		log.Fatalf("Failed to retrieve: %v", err)
	}

	fmt.Printf("\nRetrieval:\n")
	for i, id := range result.IDs {
		fmt.Printf("  %d. %s (score %.4f)\n", i+1, id, result.Scores[i])
	}

	if result.Len() > 0 {
		fmt.Println("\n✓ SUCCESS: Embeddings were generated and retrieved!")
	} else {
		fmt.Println("\n✗ FAILURE: No results returned!")
		os.Exit(1)
	}
}
