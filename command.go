package lista

// Command is an explicit, self-describing write request handled by
// Store.Apply. Each command validates its own fields so bad input is
// rejected before it reaches a backend.
type Command interface {
	Validate() error
}

// CreateCategory adds a new named category.
type CreateCategory struct {
	Name string
}

func (c CreateCategory) Validate() error {
	return validateName(c.Name)
}

// CreateItem adds a new item under an existing category.
type CreateItem struct {
	CategoryID CategoryID
	Title      string
}

func (c CreateItem) Validate() error {
	if c.CategoryID == "" {
		return ErrInvalidCategoryID
	}
	return validateTitle(c.Title)
}

// SetItemDone sets an item's done flag to an explicit value.
type SetItemDone struct {
	ItemID ItemID
	Done   bool
}

func (c SetItemDone) Validate() error {
	if c.ItemID == "" {
		return ErrInvalidItemID
	}
	return nil
}

// ToggleItemDone flips an item's done flag.
type ToggleItemDone struct {
	ItemID ItemID
}

func (c ToggleItemDone) Validate() error {
	if c.ItemID == "" {
		return ErrInvalidItemID
	}
	return nil
}

// DeleteItem removes a single item.
type DeleteItem struct {
	ItemID ItemID
}

func (c DeleteItem) Validate() error {
	if c.ItemID == "" {
		return ErrInvalidItemID
	}
	return nil
}

// DeleteCategory removes a category. Its items are deleted or orphaned
// according to the store's delete policy.
type DeleteCategory struct {
	CategoryID CategoryID
}

func (c DeleteCategory) Validate() error {
	if c.CategoryID == "" {
		return ErrInvalidCategoryID
	}
	return nil
}

// Compile-time verification that every command implements Command
var (
	_ Command = CreateCategory{}
	_ Command = CreateItem{}
	_ Command = SetItemDone{}
	_ Command = ToggleItemDone{}
	_ Command = DeleteItem{}
	_ Command = DeleteCategory{}
)
