package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lista-app/lista"
)

// InsertCategory persists a new category. The name must be unused; inserting
// a taken name fails with lista.ErrCategoryExists and nothing is written.
func (s *Store) InsertCategory(ctx context.Context, c *lista.Category) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE name = ?)`,
			c.Name,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check category name: %w", err)
		}
		if exists {
			return lista.ErrCategoryExists
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`,
			string(c.ID), c.Name, timeToMillis(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}
		return nil
	})
}

// Categories retrieves categories matching the query. The result is ordered
// deterministically: equal sort keys fall back to ID order.
func (s *Store) Categories(ctx context.Context, q lista.CategoryQuery) ([]*lista.Category, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := `SELECT id, name, created_at FROM categories WHERE 1=1`
	args := []any{}

	if q.NameContains != "" {
		// LIKE is case-insensitive for ASCII by default, matching the
		// in-memory evaluation in the root package.
		query += ` AND name LIKE '%' || ? || '%' ESCAPE '\'`
		args = append(args, escapeLike(q.NameContains))
	}

	if q.SortBy == lista.SortByName {
		query += ` ORDER BY LOWER(name)`
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
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	cats := make([]*lista.Category, 0)
	for rows.Next() {
		var (
			id string
			ms int64
		)
		c := &lista.Category{}
		if err := rows.Scan(&id, &c.Name, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ID = lista.CategoryID(id)
		c.CreatedAt = timeFromMillis(ms)
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	return cats, nil
}

// DeleteCategory removes a category. Its items are deleted or orphaned
// according to the policy, in the same transaction as the category row.
func (s *Store) DeleteCategory(ctx context.Context, id lista.CategoryID, policy lista.DeletePolicy) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if policy == lista.OrphanItems {
			_, err = tx.ExecContext(ctx,
				`UPDATE items SET category_id = NULL WHERE category_id = ?`,
				string(id),
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM items WHERE category_id = ?`,
				string(id),
			)
		}
		if err != nil {
			return fmt.Errorf("failed to apply delete policy: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, string(id))
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			// Rolls back the policy statement too.
			return lista.ErrCategoryNotFound
		}
		return nil
	})
}
