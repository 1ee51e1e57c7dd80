// Package lista implements a local list store: named categories, each owning
// to-do items, with create, filtered/sorted fetch, done-flag updates, and
// deletes, every write wrapped in an atomic unit of work. Two interchangeable
// persistence backends implement the Backend interface: sqlstore (relational,
// SQLite) and docstore (document, automerge).
package lista

import (
	"fmt"
	"time"
)

// maxTextLen caps category names and item titles.
const maxTextLen = 255

// Category represents a named grouping of items
// Categories are the top-level organizational unit in lista
type Category struct {
	ID        CategoryID
	Name      string
	CreatedAt time.Time
}

// Item represents a single to-do entry belonging to at most one category
type Item struct {
	ID         ItemID
	CategoryID CategoryID // empty once orphaned by a category delete
	Title      string
	Done       bool
	CreatedAt  time.Time
}

// NewCategory constructs a category with a generated ID and creation time.
// The name is validated here so invalid input never reaches a backend.
func NewCategory(name string) (*Category, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Category{
		ID:        NewCategoryID(),
		Name:      name,
		CreatedAt: now(),
	}, nil
}

// NewItem constructs an item under the given category with a generated ID,
// done unset, and the current creation time.
func NewItem(categoryID CategoryID, title string) (*Item, error) {
	if categoryID == "" {
		return nil, ErrInvalidCategoryID
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	return &Item{
		ID:         NewItemID(),
		CategoryID: categoryID,
		Title:      title,
		CreatedAt:  now(),
	}, nil
}

// now returns creation timestamps in UTC truncated to milliseconds, the
// finest precision both backends store, so records round-trip unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxTextLen {
		return ErrNameTooLong
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > maxTextLen {
		return ErrTitleTooLong
	}
	return nil
}

// DeletePolicy selects what happens to a category's items when the category
// itself is deleted.
type DeletePolicy int

const (
	// CascadeItems deletes the category's items together with it.
	CascadeItems DeletePolicy = iota
	// OrphanItems keeps the items but clears their category reference.
	OrphanItems
)

func (p DeletePolicy) String() string {
	switch p {
	case CascadeItems:
		return "cascade"
	case OrphanItems:
		return "orphan"
	default:
		return fmt.Sprintf("DeletePolicy(%d)", int(p))
	}
}

// ParseDeletePolicy converts a configuration string into a DeletePolicy.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch s {
	case "cascade":
		return CascadeItems, nil
	case "orphan":
		return OrphanItems, nil
	default:
		return CascadeItems, fmt.Errorf("unknown delete policy %q", s)
	}
}
