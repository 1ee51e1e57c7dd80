package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// escapeLike escapes the LIKE metacharacters %, _ and \ so a filter string
// always matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Timestamps are stored as INTEGER Unix milliseconds. Text datetime columns
// with varying fractional digits do not order bytewise, and milliseconds are
// the precision record constructors guarantee.

func timeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func timeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// nullableID converts an ID string for a nullable column: orphaned items
// store NULL, never the empty string.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

// nullStringToID converts a scanned nullable column back to an ID string.
func nullStringToID(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
