package lista

import (
	"sort"
	"strings"
)

// SortKey names the record field fetch results are ordered by.
type SortKey string

const (
	// SortByCreated orders records by creation time. This is the default.
	SortByCreated SortKey = "created"
	// SortByName orders categories by name, ignoring ASCII case.
	SortByName SortKey = "name"
	// SortByTitle orders items by title, ignoring ASCII case.
	SortByTitle SortKey = "title"
)

// CategoryQuery selects and orders categories. The zero value fetches every
// category ordered by creation time, oldest first.
type CategoryQuery struct {
	NameContains string  // case-insensitive substring filter, empty matches all
	SortBy       SortKey // SortByName or SortByCreated, empty means SortByCreated
	Descending   bool
	Limit        int // 0 means no limit
}

// Validate checks the query before a backend evaluates it.
func (q CategoryQuery) Validate() error {
	switch q.SortBy {
	case "", SortByCreated, SortByName:
	default:
		return ErrInvalidSortKey
	}
	if q.Limit < 0 {
		return ErrInvalidLimit
	}
	return nil
}

// Match reports whether the category satisfies the query's filter.
func (q CategoryQuery) Match(c *Category) bool {
	return containsFold(c.Name, q.NameContains)
}

// Apply evaluates the query against an in-memory snapshot: filter, sort,
// limit. The input slice is not modified. The result is never nil.
func (q CategoryQuery) Apply(cats []*Category) []*Category {
	out := make([]*Category, 0, len(cats))
	for _, c := range cats {
		if q.Match(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var cmp int
		if q.SortBy == SortByName {
			cmp = strings.Compare(foldASCII(a.Name), foldASCII(b.Name))
		} else {
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if q.Descending {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// ItemQuery selects and orders items. The zero value fetches every item in
// every category ordered by creation time, oldest first.
type ItemQuery struct {
	CategoryID    CategoryID // restrict to one category, empty matches all
	TitleContains string     // case-insensitive substring filter, empty matches all
	SortBy        SortKey    // SortByTitle or SortByCreated, empty means SortByCreated
	Descending    bool
	Limit         int // 0 means no limit
}

// Validate checks the query before a backend evaluates it.
func (q ItemQuery) Validate() error {
	switch q.SortBy {
	case "", SortByCreated, SortByTitle:
	default:
		return ErrInvalidSortKey
	}
	if q.Limit < 0 {
		return ErrInvalidLimit
	}
	return nil
}

// Match reports whether the item satisfies the query's filters.
func (q ItemQuery) Match(it *Item) bool {
	if q.CategoryID != "" && it.CategoryID != q.CategoryID {
		return false
	}
	return containsFold(it.Title, q.TitleContains)
}

// Apply evaluates the query against an in-memory snapshot: filter, sort,
// limit. The input slice is not modified. The result is never nil.
func (q ItemQuery) Apply(items []*Item) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if q.Match(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var cmp int
		if q.SortBy == SortByTitle {
			cmp = strings.Compare(foldASCII(a.Title), foldASCII(b.Title))
		} else {
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if q.Descending {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// containsFold reports whether s contains substr ignoring ASCII case.
func containsFold(s, substr string) bool {
	return strings.Contains(foldASCII(s), foldASCII(substr))
}

// foldASCII lowercases ASCII letters only. SQLite's LOWER() folds the same
// range, so in-memory filtering and sorting agree with the relational
// backend for every input.
func foldASCII(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
