package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SQLiteStore is a persistent Store backed by SQLite. Embeddings are stored
// as little-endian float32 blobs; similarity is computed in Go unless the
// vector extension is compiled in.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies any
// pending schema migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, err
	}

	// WAL mode for concurrent readers alongside the single writer
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// SQLite benefits from a single writer connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateCollection(ctx context.Context, name, tenant string) error {
	key := CollectionName(name, tenant)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO collections (name, tenant) VALUES (?, ?)", key, tenant)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, key)
		}
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CollectionExists(ctx context.Context, name, tenant string) (bool, error) {
	key := CollectionName(name, tenant)

	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM collections WHERE name = ?", key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check collection: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) AddDocuments(ctx context.Context, collection string, docs []Document) error {
	if err := s.requireCollection(ctx, collection); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var maxPos sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		"SELECT MAX(position) FROM documents WHERE collection = ?",
		collection).Scan(&maxPos); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("read max position: %w", err)
	}
	next := maxPos.Int64 + 1

	for _, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (id, collection, position, embedding, content, metadata)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, collection) DO UPDATE SET
				embedding = excluded.embedding,
				content = excluded.content,
				metadata = excluded.metadata
		`, doc.ID, collection, next, serializeVector(doc.Embedding), doc.Text, string(meta))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert document %s: %w", doc.ID, err)
		}
		next++
	}

	return tx.Commit()
}

func (s *SQLiteStore) Search(ctx context.Context, collection string, queryEmbedding []float32, topK int, filter map[string]any) ([]SearchHit, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return nil, err
	}

	if topK <= 0 {
		return []SearchHit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, embedding, content, metadata
		FROM documents
		WHERE collection = ?
		ORDER BY position
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hits []SearchHit
	for rows.Next() {
		var (
			id       string
			blob     []byte
			content  string
			metaJSON string
		)
		if err := rows.Scan(&id, &blob, &content, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		metadata, err := unmarshalMetadata(metaJSON)
		if err != nil {
			return nil, fmt.Errorf("metadata for %s: %w", id, err)
		}

		if !MatchesFilter(metadata, filter) {
			continue
		}

		hits = append(hits, SearchHit{
			ID:       id,
			Text:     content,
			Metadata: metadata,
			Score:    cosineSimilarity(queryEmbedding, deserializeVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	if hits == nil {
		hits = []SearchHit{}
	}
	return hits, nil
}

func (s *SQLiteStore) DeleteDocuments(ctx context.Context, collection string, ids []string) error {
	if err := s.requireCollection(ctx, collection); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE id = ? AND collection = ?",
			id, collection); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete document %s: %w", id, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, embedding, content, metadata
		FROM documents
		WHERE collection = ?
		ORDER BY position
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []Document
	for rows.Next() {
		var (
			id       string
			blob     []byte
			content  string
			metaJSON string
		)
		if err := rows.Scan(&id, &blob, &content, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		metadata, err := unmarshalMetadata(metaJSON)
		if err != nil {
			return nil, fmt.Errorf("metadata for %s: %w", id, err)
		}

		docs = append(docs, Document{
			ID:        id,
			Embedding: deserializeVector(blob),
			Text:      content,
			Metadata:  metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

func (s *SQLiteStore) requireCollection(ctx context.Context, collection string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM collections WHERE name = ?", collection).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrNotFound, collection)
	}
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE")
}

func unmarshalMetadata(metaJSON string) (map[string]any, error) {
	if metaJSON == "" || metaJSON == "{}" {
		return nil, nil
	}

	var metadata map[string]any
	if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}
