// Package vectorstore provides embedding storage and similarity search over
// named collections.
//
// Two implementations back the Store interface:
//   - MemoryStore: ephemeral, for tests and single-run tooling
//   - SQLiteStore: persistent, embeddings serialized as little-endian
//     float32 blobs
//
// # Basic Usage
//
//	store, err := vectorstore.NewSQLiteStore("/var/lib/docrag/docrag.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.CreateCollection(ctx, "contracts", "acme")
//	err = store.AddDocuments(ctx, "acme:contracts", docs)
//	hits, err := store.Search(ctx, "acme:contracts", queryVec, 10, nil)
//
// Collections are namespaced per tenant with CollectionName: an empty
// tenant leaves the name unchanged, otherwise "tenant:name".
//
// # Build Modes
//
// The SQLite driver is selected at build time:
//
//   - default / purego tag: modernc.org/sqlite, no cgo required
//   - sqlite_vec tag: mattn/go-sqlite3, enables loading the vector
//     extension where available
//
// Similarity is cosine, computed in Go over deserialized vectors, so both
// build modes rank identically.
//
// # Schema
//
// SQLiteStore applies integer-versioned migrations on open. Documents are
// upserted by id; re-adding an id replaces its embedding, text, and
// metadata while keeping its original insertion position.
package vectorstore
