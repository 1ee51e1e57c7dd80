package lista

import "github.com/google/uuid"

// ID types give category and item identifiers distinct static types so a
// CategoryID can never be passed where an ItemID is expected. Values are
// random UUIDs generated at construction, which keeps both backends free of
// any ID-allocation state.

// CategoryID identifies a unique category in the store
type CategoryID string

// ItemID identifies a unique item in the store
type ItemID string

// NewCategoryID generates a random category identifier
func NewCategoryID() CategoryID {
	return CategoryID(uuid.NewString())
}

// NewItemID generates a random item identifier
func NewItemID() ItemID {
	return ItemID(uuid.NewString())
}

func (id CategoryID) String() string {
	return string(id)
}

func (id ItemID) String() string {
	return string(id)
}
