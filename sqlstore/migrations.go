package sqlstore

import (
	"context"
	"database/sql"
)

// runMigrations creates the database schema. Every statement is idempotent
// so reopening an existing database is safe.
func runMigrations(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name ON categories(name);

	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		category_id TEXT REFERENCES categories(id),
		title TEXT NOT NULL,
		done BOOLEAN NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id);
	CREATE INDEX IF NOT EXISTS idx_items_created ON items(created_at);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}
