package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ragworks/docrag/pkg/types"
)

// Environment variables
const (
	EnvDBPath          = "DOCRAG_DB_PATH"
	EnvTenant          = "DOCRAG_TENANT"
	EnvDefaultDocType  = "DOCRAG_DEFAULT_DOC_TYPE"
	EnvChunkSize       = "DOCRAG_CHUNK_SIZE"
	EnvChunkOverlap    = "DOCRAG_CHUNK_OVERLAP"
	EnvTopK            = "DOCRAG_TOP_K"
	EnvFusionMethod    = "DOCRAG_FUSION_METHOD"
	EnvCacheSize       = "DOCRAG_CACHE_SIZE"
	EnvQueryTablesPath = "DOCRAG_QUERY_TABLES"
	EnvLogLevel        = "DOCRAG_LOG_LEVEL"
	EnvJinaAPIKey      = "JINA_API_KEY"
)

// Config carries process-level settings resolved from the environment
type Config struct {
	// DBPath selects the SQLite database file. Empty means the in-memory
	// store is used instead.
	DBPath string

	// Tenant namespaces every collection this process touches
	Tenant string

	// DefaultDocType applies when documents carry no explicit type
	DefaultDocType types.DocumentType

	// ChunkSize/ChunkOverlap override the per-type chunking defaults when
	// ChunkSize is positive
	ChunkSize    int
	ChunkOverlap int

	TopK         int
	FusionMethod types.FusionMethod

	// CacheSize bounds the retrieval result cache; 0 disables it
	CacheSize int

	// QueryTablesPath points at an optional YAML file with custom
	// stop-word and synonym tables
	QueryTablesPath string

	LogLevel   string
	JinaAPIKey string
}

// NewFromEnv reads configuration from the environment, applying defaults
// for anything unset, and validates the result
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:          os.Getenv(EnvDBPath),
		Tenant:          os.Getenv(EnvTenant),
		DefaultDocType:  types.DocumentType(os.Getenv(EnvDefaultDocType)),
		ChunkSize:       envInt(EnvChunkSize, 0),
		ChunkOverlap:    envInt(EnvChunkOverlap, 0),
		TopK:            envInt(EnvTopK, 10),
		FusionMethod:    types.FusionMethod(envOr(EnvFusionMethod, string(types.FusionRRF))),
		CacheSize:       envInt(EnvCacheSize, 1000),
		QueryTablesPath: os.Getenv(EnvQueryTablesPath),
		LogLevel:        envOr(EnvLogLevel, "info"),
		JinaAPIKey:      os.Getenv(EnvJinaAPIKey),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown enumeration values and inconsistent chunking
// parameters before anything uses them
func (c *Config) Validate() error {
	switch c.DefaultDocType {
	case "", types.DocTypeContract, types.DocTypeReport, types.DocTypeArticle, types.DocTypeGeneral:
	default:
		return &types.ConfigError{Field: EnvDefaultDocType, Reason: fmt.Sprintf("unknown type %q", c.DefaultDocType)}
	}

	switch c.FusionMethod {
	case types.FusionRRF, types.FusionWeighted, types.FusionMean:
	default:
		return &types.ConfigError{Field: EnvFusionMethod, Reason: fmt.Sprintf("unknown method %q", c.FusionMethod)}
	}

	if c.ChunkSize > 0 {
		chunking := types.ChunkingConfig{ChunkSize: c.ChunkSize, ChunkOverlap: c.ChunkOverlap}
		if err := chunking.Validate(); err != nil {
			return err
		}
	}

	if c.TopK <= 0 {
		return &types.ConfigError{Field: EnvTopK, Reason: "must be positive"}
	}

	return nil
}

// ChunkingConfig returns the explicit chunking override, or nil when
// per-type defaults should apply
func (c *Config) ChunkingConfig() *types.ChunkingConfig {
	if c.ChunkSize <= 0 {
		return nil
	}
	return &types.ChunkingConfig{
		ChunkSize:          c.ChunkSize,
		ChunkOverlap:       c.ChunkOverlap,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
