package lista

import "errors"

// Store-related errors
var (
	// Validation errors
	ErrEmptyName         = errors.New("category name cannot be empty")
	ErrNameTooLong       = errors.New("category name cannot exceed 255 characters")
	ErrEmptyTitle        = errors.New("item title cannot be empty")
	ErrTitleTooLong      = errors.New("item title cannot exceed 255 characters")
	ErrInvalidCategoryID = errors.New("invalid category ID")
	ErrInvalidItemID     = errors.New("invalid item ID")
	ErrInvalidSortKey    = errors.New("invalid sort key")
	ErrInvalidLimit      = errors.New("invalid limit: must be >= 0")
	ErrUnknownCommand    = errors.New("unknown command")

	// Business logic errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrCategoryExists   = errors.New("category name already exists")
)
