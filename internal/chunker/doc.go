// Package chunker splits documents into retrieval-sized chunks annotated
// with structural context.
//
// # Basic Usage
//
//	engine, err := chunker.NewEngine(chunker.Options{})
//	if err != nil {
//	    return err
//	}
//
//	chunks, err := engine.Chunk(ctx, chunker.Document{
//	    ID:      "contract-2024-001",
//	    Content: text,
//	})
//
// # Chunking Strategy
//
// Text is split recursively along a separator hierarchy (paragraphs, then
// lines, then sentence boundaries, then words), so chunks end at natural
// boundaries whenever one fits the size limit. Undersized pieces are merged
// with their successors, and consecutive chunks share a configurable
// character overlap.
//
// Chunk sizes default per document type:
//
//	contract: 400 chars, 50 overlap
//	report:   650 chars, 100 overlap
//	article:  1000 chars, 200 overlap
//	general:  1000 chars, 200 overlap
//
// The type is taken from the document, then the engine default, then
// keyword-based detection over the document's opening text.
//
// # Annotations
//
// Each chunk records its exact character span in the source plus, when
// derivable, the page number (from supplied page texts) and the enclosing
// section heading (from markdown headings, numbered outlines, or ALL-CAPS
// title lines). Document metadata is flattened onto every chunk.
package chunker
