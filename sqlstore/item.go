package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lista-app/lista"
)

// InsertItem persists a new item. The parent category must exist; otherwise
// the insert fails with lista.ErrCategoryNotFound and nothing is written.
func (s *Store) InsertItem(ctx context.Context, it *lista.Item) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`,
			string(it.CategoryID),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}
		if !exists {
			return lista.ErrCategoryNotFound
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (id, category_id, title, done, created_at) VALUES (?, ?, ?, ?, ?)`,
			string(it.ID), nullableID(string(it.CategoryID)), it.Title, it.Done, timeToMillis(it.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		return nil
	})
}

// Items retrieves items matching the query. The result is ordered
// deterministically: equal sort keys fall back to ID order.
func (s *Store) Items(ctx context.Context, q lista.ItemQuery) ([]*lista.Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := `SELECT id, category_id, title, done, created_at FROM items WHERE 1=1`
	args := []any{}

	if q.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, string(q.CategoryID))
	}
	if q.TitleContains != "" {
		// LIKE is case-insensitive for ASCII by default, matching the
		// in-memory evaluation in the root package.
		query += ` AND title LIKE '%' || ? || '%' ESCAPE '\'`
		args = append(args, escapeLike(q.TitleContains))
	}

	if q.SortBy == lista.SortByTitle {
		query += ` ORDER BY LOWER(title)`
	} else {
		query += ` ORDER BY created_at`
	}
	if q.Descending {
		query += ` DESC`
	}
	query += `, id`

	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]*lista.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	return items, nil
}

// SetItemDone sets the done flag and returns the updated item, atomically.
func (s *Store) SetItemDone(ctx context.Context, id lista.ItemID, done bool) (*lista.Item, error) {
	var updated *lista.Item
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		it, err := getItemTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE items SET done = ? WHERE id = ?`, done, string(id)); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}

		it.Done = done
		updated = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleItemDone flips the done flag and returns the updated item. The read
// and write share one transaction so concurrent toggles cannot lose updates.
func (s *Store) ToggleItemDone(ctx context.Context, id lista.ItemID) (*lista.Item, error) {
	var updated *lista.Item
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		it, err := getItemTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE items SET done = ? WHERE id = ?`, !it.Done, string(id)); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}

		it.Done = !it.Done
		updated = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id lista.ItemID) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, string(id))
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return lista.ErrItemNotFound
		}
		return nil
	})
}

// getItemTx loads one item inside a transaction.
func getItemTx(ctx context.Context, tx *sql.Tx, id lista.ItemID) (*lista.Item, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, category_id, title, done, created_at FROM items WHERE id = ?`,
		string(id),
	)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lista.ErrItemNotFound
	}
	return it, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*lista.Item, error) {
	var (
		id         string
		categoryID sql.NullString
		ms         int64
	)
	it := &lista.Item{}
	if err := row.Scan(&id, &categoryID, &it.Title, &it.Done, &ms); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	it.ID = lista.ItemID(id)
	it.CategoryID = lista.CategoryID(nullStringToID(categoryID))
	it.CreatedAt = timeFromMillis(ms)
	return it, nil
}
