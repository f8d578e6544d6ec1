package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one schema change with a monotonically increasing version
type Migration struct {
	Version int
	Name    string
	Up      string
}

// AllMigrations lists every schema migration in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_collections",
		Up: `
			CREATE TABLE IF NOT EXISTS collections (
				name        TEXT PRIMARY KEY,
				tenant      TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_documents",
		Up: `
			CREATE TABLE IF NOT EXISTS documents (
				id          TEXT NOT NULL,
				collection  TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
				position    INTEGER NOT NULL,
				embedding   BLOB NOT NULL,
				content     TEXT NOT NULL,
				metadata    TEXT NOT NULL DEFAULT '{}',
				PRIMARY KEY (id, collection)
			)
		`,
	},
	{
		Version: 3,
		Name:    "index_documents_collection",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_documents_collection
			ON documents(collection, position)
		`,
	},
}

// ApplyMigrations brings the schema up to the latest version. Each pending
// migration runs in its own transaction.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			name        TEXT NOT NULL,
			applied_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range AllMigrations {
		if m.Version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_versions (version, name) VALUES (?, ?)",
			m.Version, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

func currentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRowContext(ctx,
		"SELECT MAX(version) FROM schema_versions").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
