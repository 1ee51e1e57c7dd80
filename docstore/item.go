package docstore

import (
	"context"
	"fmt"

	"github.com/automerge/automerge-go"

	"github.com/lista-app/lista"
)

// InsertItem persists a new item. The parent category must exist; otherwise
// the insert fails with lista.ErrCategoryNotFound and nothing is written.
func (s *Store) InsertItem(ctx context.Context, it *lista.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(ctx); err != nil {
		return err
	}

	cats, err := s.rootMapLocked(categoriesKey)
	if err != nil {
		return err
	}
	parent := false
	if cats != nil {
		v, err := cats.Get(string(it.CategoryID))
		if err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}
		parent = v.Kind() == automerge.KindMap
	}
	if !parent {
		return lista.ErrCategoryNotFound
	}

	items, err := s.rootMapLocked(itemsKey)
	if err != nil {
		return err
	}
	if items != nil {
		v, err := items.Get(string(it.ID))
		if err != nil {
			return fmt.Errorf("failed to check item: %w", err)
		}
		if v.Kind() != automerge.KindVoid {
			return fmt.Errorf("item %s already exists", it.ID)
		}
	}

	err = s.doc.Path(itemsKey, string(it.ID)).Set(map[string]any{
		fieldCategory:  string(it.CategoryID),
		fieldTitle:     it.Title,
		fieldDone:      it.Done,
		fieldCreatedAt: it.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return s.commitLocked("insert item " + string(it.ID))
}

// Items retrieves items matching the query, evaluated in memory over the
// document.
func (s *Store) Items(ctx context.Context, q lista.ItemQuery) ([]*lista.Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	items, err := s.itemsLocked()
	if err != nil {
		return nil, err
	}
	return q.Apply(items), nil
}

// SetItemDone sets the item's done flag and returns the updated item.
func (s *Store) SetItemDone(ctx context.Context, id lista.ItemID, done bool) (*lista.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	it, err := s.getItemLocked(id)
	if err != nil {
		return nil, err
	}
	return s.writeDoneLocked(it, done)
}

// ToggleItemDone flips the item's done flag and returns the updated item.
func (s *Store) ToggleItemDone(ctx context.Context, id lista.ItemID) (*lista.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	it, err := s.getItemLocked(id)
	if err != nil {
		return nil, err
	}
	return s.writeDoneLocked(it, !it.Done)
}

// DeleteItem removes the item, or fails with lista.ErrItemNotFound.
func (s *Store) DeleteItem(ctx context.Context, id lista.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(ctx); err != nil {
		return err
	}

	m, err := s.rootMapLocked(itemsKey)
	if err != nil {
		return err
	}
	if m == nil {
		return lista.ErrItemNotFound
	}
	v, err := m.Get(string(id))
	if err != nil {
		return fmt.Errorf("failed to read item %s: %w", id, err)
	}
	if v.Kind() != automerge.KindMap {
		return lista.ErrItemNotFound
	}

	if err := m.Delete(string(id)); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return s.commitLocked("delete item " + string(id))
}

// writeDoneLocked stores the done flag as one unit of work and returns the
// updated item. Callers hold mu.
func (s *Store) writeDoneLocked(it *lista.Item, done bool) (*lista.Item, error) {
	if err := s.doc.Path(itemsKey, string(it.ID), fieldDone).Set(done); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	it.Done = done
	if err := s.commitLocked("update item " + string(it.ID)); err != nil {
		return nil, err
	}
	return it, nil
}

// getItemLocked decodes one item, or fails with lista.ErrItemNotFound.
// Callers hold mu.
func (s *Store) getItemLocked(id lista.ItemID) (*lista.Item, error) {
	m, err := s.rootMapLocked(itemsKey)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, lista.ErrItemNotFound
	}
	v, err := m.Get(string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read item %s: %w", id, err)
	}
	if v.Kind() != automerge.KindMap {
		return nil, lista.ErrItemNotFound
	}
	return decodeItem(string(id), v)
}

// itemsLocked decodes every item in the document. Callers hold mu.
func (s *Store) itemsLocked() ([]*lista.Item, error) {
	m, err := s.rootMapLocked(itemsKey)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return []*lista.Item{}, nil
	}

	keys, err := m.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	items := make([]*lista.Item, 0, len(keys))
	for _, id := range keys {
		v, err := m.Get(id)
		if err != nil {
			return nil, fmt.Errorf("failed to read item %s: %w", id, err)
		}
		it, err := decodeItem(id, v)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func decodeItem(id string, v *automerge.Value) (*lista.Item, error) {
	if v.Kind() != automerge.KindMap {
		return nil, fmt.Errorf("item %s is not a map", id)
	}
	m := v.Map()

	category, err := stringField(m, fieldCategory)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}
	title, err := stringField(m, fieldTitle)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}
	done, err := boolField(m, fieldDone)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}
	created, err := timeField(m, fieldCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}

	return &lista.Item{
		ID:         lista.ItemID(id),
		CategoryID: lista.CategoryID(category),
		Title:      title,
		Done:       done,
		CreatedAt:  created,
	}, nil
}
