package lista

import (
	"context"
	"fmt"
)

// CategoryReader defines read operations for categories.
type CategoryReader interface {
	Categories(ctx context.Context, q CategoryQuery) ([]*Category, error)
}

// CategoryWriter defines write operations for categories.
type CategoryWriter interface {
	InsertCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id CategoryID, policy DeletePolicy) error
}

// ItemReader defines read operations for items.
type ItemReader interface {
	Items(ctx context.Context, q ItemQuery) ([]*Item, error)
}

// ItemWriter defines write operations for items.
type ItemWriter interface {
	InsertItem(ctx context.Context, it *Item) error
	SetItemDone(ctx context.Context, id ItemID, done bool) (*Item, error)
	ToggleItemDone(ctx context.Context, id ItemID) (*Item, error)
	DeleteItem(ctx context.Context, id ItemID) error
}

// Backend is the persistence boundary: every operation runs as one atomic
// unit of work, and a failed write leaves the backend usable. Implemented by
// sqlstore and docstore.
type Backend interface {
	CategoryReader
	CategoryWriter
	ItemReader
	ItemWriter
	Close() error
}

// Store is the service layer in front of a Backend. It validates input
// before delegating, and publishes a change notification after every
// committed write. Construct one with NewStore and pass it explicitly;
// there is no package-level instance.
type Store struct {
	backend Backend
	events  Publisher

	// OnCategoryDelete selects what happens to a deleted category's items.
	// The zero value cascades the delete to the items.
	OnCategoryDelete DeletePolicy
}

// NewStore creates a store backed by backend. A nil publisher disables
// change notifications.
func NewStore(backend Backend, events Publisher) *Store {
	return &Store{
		backend: backend,
		events:  events,
	}
}

// CreateCategory validates the name, persists a new category, and returns it.
// A name already in use fails with ErrCategoryExists.
func (s *Store) CreateCategory(ctx context.Context, name string) (*Category, error) {
	c, err := NewCategory(name)
	if err != nil {
		return nil, err
	}

	if err := s.backend.InsertCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.publish(Event{Type: EventCategoryChanged, CategoryID: c.ID})
	return c, nil
}

// Categories fetches categories matching the query. An empty result is a
// valid, non-nil slice.
func (s *Store) Categories(ctx context.Context, q CategoryQuery) ([]*Category, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return s.backend.Categories(ctx, q)
}

// CreateItem validates the title, persists a new item under the given
// category, and returns it. A missing parent fails with ErrCategoryNotFound.
func (s *Store) CreateItem(ctx context.Context, categoryID CategoryID, title string) (*Item, error) {
	it, err := NewItem(categoryID, title)
	if err != nil {
		return nil, err
	}

	if err := s.backend.InsertItem(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.publish(Event{Type: EventItemChanged, CategoryID: it.CategoryID, ItemID: it.ID})
	return it, nil
}

// Items fetches items matching the query. An empty result is a valid,
// non-nil slice.
func (s *Store) Items(ctx context.Context, q ItemQuery) ([]*Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return s.backend.Items(ctx, q)
}

// SetItemDone sets the item's done flag and returns the updated item.
func (s *Store) SetItemDone(ctx context.Context, id ItemID, done bool) (*Item, error) {
	if id == "" {
		return nil, ErrInvalidItemID
	}

	it, err := s.backend.SetItemDone(ctx, id, done)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.publish(Event{Type: EventItemChanged, CategoryID: it.CategoryID, ItemID: it.ID})
	return it, nil
}

// ToggleItemDone flips the item's done flag and returns the updated item.
// Toggling twice restores the original value.
func (s *Store) ToggleItemDone(ctx context.Context, id ItemID) (*Item, error) {
	if id == "" {
		return nil, ErrInvalidItemID
	}

	it, err := s.backend.ToggleItemDone(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle item: %w", err)
	}

	s.publish(Event{Type: EventItemChanged, CategoryID: it.CategoryID, ItemID: it.ID})
	return it, nil
}

// DeleteItem removes the item.
func (s *Store) DeleteItem(ctx context.Context, id ItemID) error {
	if id == "" {
		return ErrInvalidItemID
	}

	if err := s.backend.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.publish(Event{Type: EventItemChanged, ItemID: id})
	return nil
}

// DeleteCategory removes the category, applying the store's delete policy to
// its items.
func (s *Store) DeleteCategory(ctx context.Context, id CategoryID) error {
	if id == "" {
		return ErrInvalidCategoryID
	}

	if err := s.backend.DeleteCategory(ctx, id, s.OnCategoryDelete); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.publish(Event{Type: EventCategoryChanged, CategoryID: id})
	return nil
}

// Apply validates and executes a command. Commands that produce a record
// return it: *Category for CreateCategory, *Item for CreateItem, SetItemDone
// and ToggleItemDone. Deletes return nil.
func (s *Store) Apply(ctx context.Context, cmd Command) (any, error) {
	if cmd == nil {
		return nil, ErrUnknownCommand
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	switch c := cmd.(type) {
	case CreateCategory:
		return s.CreateCategory(ctx, c.Name)
	case CreateItem:
		return s.CreateItem(ctx, c.CategoryID, c.Title)
	case SetItemDone:
		return s.SetItemDone(ctx, c.ItemID, c.Done)
	case ToggleItemDone:
		return s.ToggleItemDone(ctx, c.ItemID)
	case DeleteItem:
		return nil, s.DeleteItem(ctx, c.ItemID)
	case DeleteCategory:
		return nil, s.DeleteCategory(ctx, c.CategoryID)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) publish(ev Event) {
	if s.events == nil {
		return
	}
	s.events.Publish(ev)
}
