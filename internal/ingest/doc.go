// Package ingest coordinates the document ingestion pipeline:
// chunk -> embed -> store.
//
//	pipeline := ingest.NewPipeline(engine, emb, store, ingest.Options{
//	    Invalidator: retrieverEngine,
//	})
//
//	stats, err := pipeline.IngestAll(ctx, "contracts", docs)
//
// Documents are processed concurrently up to Options.Workers. Individual
// document failures are recorded in Statistics.ErrorMessages without
// aborting the run. Runs against the same collection are serialized by a
// per-collection try-lock; a second concurrent run fails fast with
// ErrIngestInProgress rather than queueing.
//
// After a successful run the Invalidator is notified so keyword indexes
// and query caches are rebuilt on next use.
package ingest
