package types

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// DocumentType classifies a document for chunking-parameter selection
type DocumentType string

const (
	DocTypeContract DocumentType = "contract"
	DocTypeReport   DocumentType = "report"
	DocTypeArticle  DocumentType = "article"
	DocTypeGeneral  DocumentType = "general"
)

// Chunk represents a bounded text segment produced from a document,
// annotated with position and structure metadata for embedding and search
type Chunk struct {
	// Identification
	DocumentID string
	ChunkIndex int // Zero-based, contiguous within a document

	// Content
	Text      string
	CharCount int
	WordCount int

	// Location in the source text (pre-overlap offsets)
	StartCharIndex int
	EndCharIndex   int

	// Structure annotations
	PageNumber *int // Nullable - set when page boundary metadata is available
	Section    string
	Heading    string

	// Metadata
	DocumentType DocumentType
	Metadata     map[string]any
}

// NewChunk constructs a chunk with derived counts computed from the text
func NewChunk(documentID string, index int, text string, start, end int) Chunk {
	return Chunk{
		DocumentID:     documentID,
		ChunkIndex:     index,
		Text:           text,
		CharCount:      utf8.RuneCountInString(text),
		WordCount:      len(strings.Fields(text)),
		StartCharIndex: start,
		EndCharIndex:   end,
	}
}

// Validate checks the chunk's internal consistency
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}

	if c.DocumentID == "" {
		return errors.New("document ID is required")
	}

	if c.ChunkIndex < 0 {
		return errors.New("chunk index must be non-negative")
	}

	if c.EndCharIndex < c.StartCharIndex {
		return errors.New("end char index must not precede start char index")
	}

	return nil
}

// ValidateDocumentType checks if the document type is a known classification
func (c *Chunk) ValidateDocumentType() error {
	switch c.DocumentType {
	case DocTypeContract, DocTypeReport, DocTypeArticle, DocTypeGeneral, "":
		return nil
	default:
		return errors.New("invalid document type")
	}
}

// FlattenMetadata returns a copy of the metadata with non-primitive values
// reduced to storable forms. String slices become comma-joined strings so
// downstream vector stores can persist them.
func FlattenMetadata(md map[string]any) map[string]any {
	if md == nil {
		return nil
	}

	out := make(map[string]any, len(md))
	for k, v := range md {
		switch val := v.(type) {
		case string, bool, int, int32, int64, float32, float64:
			out[k] = val
		case []string:
			out[k] = strings.Join(val, ",")
		default:
			// Unrepresentable values are dropped
		}
	}
	return out
}
