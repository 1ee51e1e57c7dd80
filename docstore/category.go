package docstore

import (
	"context"
	"fmt"

	"github.com/automerge/automerge-go"

	"github.com/lista-app/lista"
)

// InsertCategory persists a new category. The name must be unused; inserting
// a taken name fails with lista.ErrCategoryExists and nothing is written.
func (s *Store) InsertCategory(ctx context.Context, c *lista.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(ctx); err != nil {
		return err
	}

	existing, err := s.categoriesLocked()
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.Name == c.Name {
			return lista.ErrCategoryExists
		}
		if e.ID == c.ID {
			return fmt.Errorf("category %s already exists", c.ID)
		}
	}

	err = s.doc.Path(categoriesKey, string(c.ID)).Set(map[string]any{
		fieldName:      c.Name,
		fieldCreatedAt: c.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return s.commitLocked("insert category " + string(c.ID))
}

// Categories retrieves categories matching the query, evaluated in memory
// over the document.
func (s *Store) Categories(ctx context.Context, q lista.CategoryQuery) ([]*lista.Category, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	cats, err := s.categoriesLocked()
	if err != nil {
		return nil, err
	}
	return q.Apply(cats), nil
}

// DeleteCategory removes a category. Its items are deleted or orphaned
// according to the policy, all within the same unit of work.
func (s *Store) DeleteCategory(ctx context.Context, id lista.CategoryID, policy lista.DeletePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(ctx); err != nil {
		return err
	}

	cats, err := s.rootMapLocked(categoriesKey)
	if err != nil {
		return err
	}
	if cats == nil {
		return lista.ErrCategoryNotFound
	}
	v, err := cats.Get(string(id))
	if err != nil {
		return fmt.Errorf("failed to read category %s: %w", id, err)
	}
	if v.Kind() != automerge.KindMap {
		return lista.ErrCategoryNotFound
	}

	items, err := s.itemsLocked()
	if err != nil {
		return err
	}
	itemsMap, err := s.rootMapLocked(itemsKey)
	if err != nil {
		return err
	}

	// Every lookup precedes the first write, so a failure here leaves the
	// document untouched.
	for _, it := range items {
		if it.CategoryID != id {
			continue
		}
		if policy == lista.OrphanItems {
			err = s.doc.Path(itemsKey, string(it.ID), fieldCategory).Set("")
		} else {
			err = itemsMap.Delete(string(it.ID))
		}
		if err != nil {
			return fmt.Errorf("failed to apply delete policy: %w", err)
		}
	}

	if err := cats.Delete(string(id)); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return s.commitLocked("delete category " + string(id))
}

// categoriesLocked decodes every category in the document. Callers hold mu.
func (s *Store) categoriesLocked() ([]*lista.Category, error) {
	m, err := s.rootMapLocked(categoriesKey)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return []*lista.Category{}, nil
	}

	keys, err := m.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	cats := make([]*lista.Category, 0, len(keys))
	for _, id := range keys {
		v, err := m.Get(id)
		if err != nil {
			return nil, fmt.Errorf("failed to read category %s: %w", id, err)
		}
		c, err := decodeCategory(id, v)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}

func decodeCategory(id string, v *automerge.Value) (*lista.Category, error) {
	if v.Kind() != automerge.KindMap {
		return nil, fmt.Errorf("category %s is not a map", id)
	}
	m := v.Map()

	name, err := stringField(m, fieldName)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", id, err)
	}
	created, err := timeField(m, fieldCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", id, err)
	}

	return &lista.Category{
		ID:        lista.CategoryID(id),
		Name:      name,
		CreatedAt: created,
	}, nil
}
