package types

import "fmt"

// SearchType selects which retrieval paths run for a request
type SearchType string

const (
	SearchVector  SearchType = "vector"
	SearchKeyword SearchType = "keyword"
	SearchHybrid  SearchType = "hybrid"
)

// FusionMethod selects how hybrid ranked lists are combined
type FusionMethod string

const (
	FusionRRF      FusionMethod = "reciprocal_rank_fusion"
	FusionWeighted FusionMethod = "weighted"
	FusionMean     FusionMethod = "mean"
)

// Rerank providers accepted by RetrievalConfig.Validate
const (
	RerankProviderNone = "none"
	RerankProviderJina = "jina"
)

// ChunkingConfig controls the text splitter and chunking engine
type ChunkingConfig struct {
	ChunkSize          int
	ChunkOverlap       int
	DocumentType       DocumentType
	PreserveSentences  bool
	PreserveParagraphs bool
}

// Defaults per document type. Applied only when the caller has not set an
// explicit chunk size.
var typeDefaults = map[DocumentType]struct{ size, overlap int }{
	DocTypeContract: {400, 50},
	DocTypeReport:   {650, 100},
	DocTypeArticle:  {1000, 200},
	DocTypeGeneral:  {1000, 200},
}

// DefaultChunkingConfig returns the chunking parameters for a document type
func DefaultChunkingConfig(docType DocumentType) ChunkingConfig {
	d, ok := typeDefaults[docType]
	if !ok {
		docType = DocTypeGeneral
		d = typeDefaults[DocTypeGeneral]
	}
	return ChunkingConfig{
		ChunkSize:          d.size,
		ChunkOverlap:       d.overlap,
		DocumentType:       docType,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// Validate rejects parameter combinations the splitter cannot make progress
// with. Overlap must stay strictly below size or hard splits would not
// advance.
func (c *ChunkingConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return &ConfigError{Field: "chunk_size", Reason: "must be positive"}
	}

	if c.ChunkOverlap < 0 {
		return &ConfigError{Field: "chunk_overlap", Reason: "must be non-negative"}
	}

	if c.ChunkOverlap >= c.ChunkSize {
		return &ConfigError{
			Field:  "chunk_overlap",
			Reason: fmt.Sprintf("overlap %d must be less than chunk size %d", c.ChunkOverlap, c.ChunkSize),
		}
	}

	switch c.DocumentType {
	case DocTypeContract, DocTypeReport, DocTypeArticle, DocTypeGeneral, "":
	default:
		return &ConfigError{Field: "document_type", Reason: fmt.Sprintf("unknown type %q", c.DocumentType)}
	}

	return nil
}

// RetrievalConfig controls a single retrieve request
type RetrievalConfig struct {
	SearchType SearchType
	TopK       int

	// Hybrid fusion. Weights need not sum to 1.
	VectorWeight  float64
	KeywordWeight float64
	FusionMethod  FusionMethod

	// Exact-match constraints applied to result metadata
	MetadataFilter map[string]any

	DeduplicationEnabled   bool
	DeduplicationThreshold float64

	RerankEnabled  bool
	RerankProvider string
	RerankTopN     int
}

// DefaultRetrievalConfig returns hybrid retrieval with RRF fusion and
// deduplication enabled
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		SearchType:             SearchHybrid,
		TopK:                   10,
		VectorWeight:           0.7,
		KeywordWeight:          0.3,
		FusionMethod:           FusionRRF,
		DeduplicationEnabled:   true,
		DeduplicationThreshold: 0.95,
		RerankProvider:         RerankProviderNone,
		RerankTopN:             10,
	}
}

// Validate rejects unknown enumeration values at construction time so call
// sites never see them
func (c *RetrievalConfig) Validate() error {
	switch c.SearchType {
	case SearchVector, SearchKeyword, SearchHybrid:
	default:
		return &ConfigError{Field: "search_type", Reason: fmt.Sprintf("unknown type %q", c.SearchType)}
	}

	if c.TopK <= 0 {
		return &ConfigError{Field: "top_k", Reason: "must be positive"}
	}

	if c.SearchType == SearchHybrid {
		switch c.FusionMethod {
		case FusionRRF, FusionWeighted, FusionMean:
		default:
			return &ConfigError{Field: "fusion_method", Reason: fmt.Sprintf("unknown method %q", c.FusionMethod)}
		}
	}

	if c.DeduplicationEnabled {
		if c.DeduplicationThreshold < 0 || c.DeduplicationThreshold > 1 {
			return &ConfigError{Field: "deduplication_threshold", Reason: "must be between 0 and 1"}
		}
	}

	if c.RerankEnabled {
		switch c.RerankProvider {
		case RerankProviderNone, RerankProviderJina:
		default:
			return &ConfigError{Field: "rerank_provider", Reason: fmt.Sprintf("unknown provider %q", c.RerankProvider)}
		}
		if c.RerankTopN <= 0 {
			return &ConfigError{Field: "rerank_top_n", Reason: "must be positive"}
		}
	}

	return nil
}
