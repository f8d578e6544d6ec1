package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QueryTables holds custom stop-word and synonym tables for the query
// optimizer. A nil table keeps the built-in default.
type QueryTables struct {
	Stopwords []string            `yaml:"stopwords"`
	Synonyms  map[string][]string `yaml:"synonyms"`
}

// LoadQueryTables reads a YAML tables file. An empty path returns empty
// tables, not an error, so the built-ins apply.
func LoadQueryTables(path string) (*QueryTables, error) {
	if path == "" {
		return &QueryTables{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query tables: %w", err)
	}

	var tables QueryTables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("parse query tables: %w", err)
	}

	return &tables, nil
}
