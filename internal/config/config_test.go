package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragworks/docrag/pkg/types"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvDBPath, EnvTenant, EnvDefaultDocType, EnvChunkSize, EnvChunkOverlap,
		EnvTopK, EnvFusionMethod, EnvCacheSize, EnvQueryTablesPath, EnvLogLevel,
		EnvJinaAPIKey,
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DBPath)
	assert.Equal(t, 10, cfg.TopK)
	assert.Equal(t, types.FusionRRF, cfg.FusionMethod)
	assert.Equal(t, 1000, cfg.CacheSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Nil(t, cfg.ChunkingConfig())
}

func TestNewFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDBPath, "/tmp/docrag.db")
	t.Setenv(EnvTenant, "org-9")
	t.Setenv(EnvDefaultDocType, "contract")
	t.Setenv(EnvChunkSize, "300")
	t.Setenv(EnvChunkOverlap, "30")
	t.Setenv(EnvTopK, "25")
	t.Setenv(EnvFusionMethod, "weighted")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/docrag.db", cfg.DBPath)
	assert.Equal(t, "org-9", cfg.Tenant)
	assert.Equal(t, types.DocTypeContract, cfg.DefaultDocType)
	assert.Equal(t, 25, cfg.TopK)
	assert.Equal(t, types.FusionWeighted, cfg.FusionMethod)

	chunking := cfg.ChunkingConfig()
	require.NotNil(t, chunking)
	assert.Equal(t, 300, chunking.ChunkSize)
	assert.Equal(t, 30, chunking.ChunkOverlap)
}

func TestNewFromEnvRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvFusionMethod, "borda")
	_, err := NewFromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv(EnvDefaultDocType, "invoice")
	_, err = NewFromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv(EnvChunkSize, "100")
	t.Setenv(EnvChunkOverlap, "100")
	_, err = NewFromEnv()
	assert.Error(t, err)
}

func TestLoadQueryTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	content := `
stopwords:
  - foo
  - bar
synonyms:
  ship:
    - vessel
    - boat
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tables, err := LoadQueryTables(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo", "bar"}, tables.Stopwords)
	assert.Equal(t, []string{"vessel", "boat"}, tables.Synonyms["ship"])
}

func TestLoadQueryTablesEmptyPath(t *testing.T) {
	tables, err := LoadQueryTables("")
	require.NoError(t, err)
	assert.Nil(t, tables.Stopwords)
	assert.Nil(t, tables.Synonyms)
}

func TestLoadQueryTablesMissingFile(t *testing.T) {
	_, err := LoadQueryTables("/nonexistent/tables.yaml")
	assert.Error(t, err)
}
