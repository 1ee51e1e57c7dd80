// Package storetest is a conformance suite for lista.Backend
// implementations. Both backends run it from their own tests, so behavior
// that must not diverge between them lives here: creation visibility,
// parent scoping, filter and sort semantics, delete policies, and failure
// handling.
package storetest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lista-app/lista"
)

// Factory returns a fresh, empty backend for one subtest. The suite closes
// the backend when the subtest finishes.
type Factory func(t *testing.T) lista.Backend

// Run exercises every behavior a lista.Backend must share.
func Run(t *testing.T, newBackend Factory) {
	tests := []struct {
		name string
		fn   func(*testing.T, lista.Backend)
	}{
		{"CategoryCreateFetchExactlyOnce", testCategoryCreateFetchExactlyOnce},
		{"CategoryDuplicateName", testCategoryDuplicateName},
		{"CategoryDuplicateID", testCategoryDuplicateID},
		{"CategoryRoundTrip", testCategoryRoundTrip},
		{"ItemRoundTrip", testItemRoundTrip},
		{"ItemsScopedToParent", testItemsScopedToParent},
		{"ItemMissingParent", testItemMissingParent},
		{"ToggleIdempotence", testToggleIdempotence},
		{"SetItemDone", testSetItemDone},
		{"MissingItemErrors", testMissingItemErrors},
		{"FilterSubsetProperty", testFilterSubsetProperty},
		{"FilterLiteralMetacharacters", testFilterLiteralMetacharacters},
		{"SortByTitle", testSortByTitle},
		{"SortByCreated", testSortByCreated},
		{"CategorySortAndFilter", testCategorySortAndFilter},
		{"Limit", testLimit},
		{"EmptyFetchIsNotNil", testEmptyFetchIsNotNil},
		{"DeleteItem", testDeleteItem},
		{"DeleteCategoryCascade", testDeleteCategoryCascade},
		{"DeleteCategoryOrphan", testDeleteCategoryOrphan},
		{"DeleteCategoryMissing", testDeleteCategoryMissing},
		{"QueryValidation", testQueryValidation},
		{"UsableAfterFailedWrite", testUsableAfterFailedWrite},
		{"SchoolScenario", testSchoolScenario},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newBackend(t)
			defer backend.Close()
			tt.fn(t, backend)
		})
	}
}

// ============================================================================
// Fixtures
// ============================================================================

func createCategory(t *testing.T, b lista.Backend, name string) *lista.Category {
	t.Helper()
	c, err := lista.NewCategory(name)
	if err != nil {
		t.Fatalf("Failed to construct category %q: %v", name, err)
	}
	if err := b.InsertCategory(context.Background(), c); err != nil {
		t.Fatalf("Failed to insert category %q: %v", name, err)
	}
	return c
}

func createItem(t *testing.T, b lista.Backend, categoryID lista.CategoryID, title string) *lista.Item {
	t.Helper()
	it, err := lista.NewItem(categoryID, title)
	if err != nil {
		t.Fatalf("Failed to construct item %q: %v", title, err)
	}
	if err := b.InsertItem(context.Background(), it); err != nil {
		t.Fatalf("Failed to insert item %q: %v", title, err)
	}
	return it
}

func fetchItems(t *testing.T, b lista.Backend, q lista.ItemQuery) []*lista.Item {
	t.Helper()
	items, err := b.Items(context.Background(), q)
	if err != nil {
		t.Fatalf("Failed to fetch items: %v", err)
	}
	return items
}

func fetchCategories(t *testing.T, b lista.Backend, q lista.CategoryQuery) []*lista.Category {
	t.Helper()
	cats, err := b.Categories(context.Background(), q)
	if err != nil {
		t.Fatalf("Failed to fetch categories: %v", err)
	}
	return cats
}

// asciiLower mirrors the store's collation: ASCII letters fold, everything
// else compares bytewise. Kept local so the suite stays an independent
// oracle for filter and sort checks.
func asciiLower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func itemTitles(items []*lista.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

// ============================================================================
// Categories
// ============================================================================

func testCategoryCreateFetchExactlyOnce(t *testing.T, b lista.Backend) {
	names := []string{
		"School",
		"two words here",
		"épicerie",
		strings.Repeat("x", 255),
	}
	for _, name := range names {
		createCategory(t, b, name)
	}

	cats := fetchCategories(t, b, lista.CategoryQuery{})
	for _, name := range names {
		count := 0
		for _, c := range cats {
			if c.Name == name {
				count++
			}
		}
		if count != 1 {
			t.Errorf("category %q appears %d times, want exactly once", name, count)
		}
	}
}

func testCategoryDuplicateName(t *testing.T, b lista.Backend) {
	createCategory(t, b, "School")

	dup, err := lista.NewCategory("School")
	if err != nil {
		t.Fatalf("Failed to construct category: %v", err)
	}
	err = b.InsertCategory(context.Background(), dup)
	if !errors.Is(err, lista.ErrCategoryExists) {
		t.Fatalf("inserting a duplicate name: error = %v, want ErrCategoryExists", err)
	}

	if cats := fetchCategories(t, b, lista.CategoryQuery{}); len(cats) != 1 {
		t.Errorf("got %d categories after rejected insert, want 1", len(cats))
	}
}

func testCategoryDuplicateID(t *testing.T, b lista.Backend) {
	c := createCategory(t, b, "School")

	dup := *c
	dup.Name = "Chores"
	if err := b.InsertCategory(context.Background(), &dup); err == nil {
		t.Fatal("inserting a duplicate ID should fail")
	}

	if cats := fetchCategories(t, b, lista.CategoryQuery{}); len(cats) != 1 {
		t.Errorf("got %d categories after rejected insert, want 1", len(cats))
	}
}

func testCategoryRoundTrip(t *testing.T, b lista.Backend) {
	c := createCategory(t, b, "School")

	cats := fetchCategories(t, b, lista.CategoryQuery{})
	if len(cats) != 1 {
		t.Fatalf("got %d categories, want 1", len(cats))
	}
	got := cats[0]
	if got.ID != c.ID {
		t.Errorf("ID = %q, want %q", got.ID, c.ID)
	}
	if got.Name != c.Name {
		t.Errorf("Name = %q, want %q", got.Name, c.Name)
	}
	if !got.CreatedAt.Equal(c.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, c.CreatedAt)
	}
}

func testCategorySortAndFilter(t *testing.T, b lista.Backend) {
	createCategory(t, b, "school")
	createCategory(t, b, "Chores")
	createCategory(t, b, "Shopping")

	cats := fetchCategories(t, b, lista.CategoryQuery{SortBy: lista.SortByName})
	want := []string{"Chores", "school", "Shopping"}
	for i, name := range want {
		if cats[i].Name != name {
			t.Fatalf("position %d: name = %q, want %q", i, cats[i].Name, name)
		}
	}

	cats = fetchCategories(t, b, lista.CategoryQuery{NameContains: "HO"})
	if len(cats) != 2 {
		t.Errorf("filter %q matched %d categories, want 2", "HO", len(cats))
	}
}

// ============================================================================
// Items
// ============================================================================

func testItemRoundTrip(t *testing.T, b lista.Backend) {
	c := createCategory(t, b, "School")
	it := createItem(t, b, c.ID, "Math HW")

	items := fetchItems(t, b, lista.ItemQuery{})
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	got := items[0]
	if got.ID != it.ID {
		t.Errorf("ID = %q, want %q", got.ID, it.ID)
	}
	if got.CategoryID != c.ID {
		t.Errorf("CategoryID = %q, want %q", got.CategoryID, c.ID)
	}
	if got.Title != "Math HW" {
		t.Errorf("Title = %q, want %q", got.Title, "Math HW")
	}
	if got.Done {
		t.Error("new item should not be done")
	}
	if !got.CreatedAt.Equal(it.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, it.CreatedAt)
	}
}

func testItemsScopedToParent(t *testing.T, b lista.Backend) {
	school := createCategory(t, b, "School")
	chores := createCategory(t, b, "Chores")
	empty := createCategory(t, b, "Empty")

	createItem(t, b, school.ID, "Math HW")
	createItem(t, b, school.ID, "History essay")
	createItem(t, b, chores.ID, "Dishes")

	items := fetchItems(t, b, lista.ItemQuery{CategoryID: school.ID})
	if len(items) != 2 {
		t.Fatalf("got %d items for School, want 2", len(items))
	}
	for _, it := range items {
		if it.CategoryID != school.ID {
			t.Errorf("item %q belongs to %q, want %q", it.Title, it.CategoryID, school.ID)
		}
	}

	if items := fetchItems(t, b, lista.ItemQuery{CategoryID: empty.ID}); len(items) != 0 {
		t.Errorf("got %d items for an empty category, want 0", len(items))
	}

	if items := fetchItems(t, b, lista.ItemQuery{}); len(items) != 3 {
		t.Errorf("got %d items without a parent filter, want 3", len(items))
	}
}

func testItemMissingParent(t *testing.T, b lista.Backend) {
	it, err := lista.NewItem(lista.NewCategoryID(), "Math HW")
	if err != nil {
		t.Fatalf("Failed to construct item: %v", err)
	}

	err = b.InsertItem(context.Background(), it)
	if !errors.Is(err, lista.ErrCategoryNotFound) {
		t.Fatalf("error = %v, want ErrCategoryNotFound", err)
	}

	if items := fetchItems(t, b, lista.ItemQuery{}); len(items) != 0 {
		t.Errorf("got %d items after rejected insert, want 0", len(items))
	}
}

func testToggleIdempotence(t *testing.T, b lista.Backend) {
	ctx := context.Background()
	c := createCategory(t, b, "School")
	it := createItem(t, b, c.ID, "Math HW")

	first, err := b.ToggleItemDone(ctx, it.ID)
	if err != nil {
		t.Fatalf("Failed to toggle item: %v", err)
	}
	if !first.Done {
		t.Error("first toggle should mark the item done")
	}

	second, err := b.ToggleItemDone(ctx, it.ID)
	if err != nil {
		t.Fatalf("Failed to toggle item: %v", err)
	}
	if second.Done {
		t.Error("second toggle should restore the original value")
	}

	items := fetchItems(t, b, lista.ItemQuery{})
	if len(items) != 1 || items[0].Done {
		t.Error("toggling twice should leave the stored item not done")
	}
}

func testSetItemDone(t *testing.T, b lista.Backend) {
	ctx := context.Background()
	c := createCategory(t, b, "School")
	it := createItem(t, b, c.ID, "Math HW")

	updated, err := b.SetItemDone(ctx, it.ID, true)
	if err != nil {
		t.Fatalf("Failed to set done: %v", err)
	}
	if !updated.Done {
		t.Error("item should be done")
	}

	// Setting the current value again is a no-op, not an error.
	updated, err = b.SetItemDone(ctx, it.ID, true)
	if err != nil {
		t.Fatalf("Failed to set done twice: %v", err)
	}
	if !updated.Done {
		t.Error("item should stay done")
	}

	items := fetchItems(t, b, lista.ItemQuery{})
	if len(items) != 1 || !items[0].Done {
		t.Error("stored item should be done")
	}
}

func testMissingItemErrors(t *testing.T, b lista.Backend) {
	ctx := context.Background()
	missing := lista.NewItemID()

	if _, err := b.SetItemDone(ctx, missing, true); !errors.Is(err, lista.ErrItemNotFound) {
		t.Errorf("SetItemDone error = %v, want ErrItemNotFound", err)
	}
	if _, err := b.ToggleItemDone(ctx, missing); !errors.Is(err, lista.ErrItemNotFound) {
		t.Errorf("ToggleItemDone error = %v, want ErrItemNotFound", err)
	}
	if err := b.DeleteItem(ctx, missing); !errors.Is(err, lista.ErrItemNotFound) {
		t.Errorf("DeleteItem error = %v, want ErrItemNotFound", err)
	}
}

// ============================================================================
// Filtering and sorting
// ============================================================================

func testFilterSubsetProperty(t *testing.T, b lista.Backend) {
	c := createCategory(t, b, "Groceries")
	titles := []string{
		"Buy ham",
		"buy HAM sandwich",
		"Chamomile tea",
		"Milk",
		"HAMMER",
		"épicerie run",
	}
	for _, title := range titles {
		createItem(t, b, c.ID, title)
	}

	for _, filter := range []string{"ham", "HAM", "Ham", "buy", "", "milk", "zzz", "épicerie"} {
		got := fetchItems(t, b, lista.ItemQuery{TitleContains: filter})

		want := 0
		for _, title := range titles {
			if strings.Contains(asciiLower(title), asciiLower(filter)) {
				want++
			}
		}
		if len(got) != want {
			t.Errorf("filter %q matched %d items, want %d (%v)", filter, len(got), want, itemTitles(got))
			continue
		}
		for _, it := range got {
			if !strings.Contains(asciiLower(it.Title), asciiLower(filter)) {
				t.Errorf("filter %q returned non-matching title %q", filter, it.Title)
			}
		}
	}
}

func testFilterLiteralMetacharacters(t *testing.T, b lista.Backend) {
	c := createCategory(t, b, "Misc")
	createItem(t, b, c.ID, "100% done")
	createItem(t, b, c.ID, "100 percent done")
	createItem(t, b, c.ID, "under_score")
	createItem(t, b, c.ID, "underscore")
	createItem(t, b, c.ID, `back\slash`)

	tests := []struct {
		filter string
		want   string
	}{
		{"100%", "100% done"},
		{"under_s", "under_score"},
		{`back\`, `back\slash`},
	}
	for _, tt := range tests {
		got := fetchItems(t, b, lista.ItemQuery{TitleContains: tt.filter})
		if len(got) != 1 || got[0].Title != tt.want {
			t.Errorf("filter %q matched %v, want only %q", tt.filter, itemTitles(got), tt.want)
		}
	}
}

func testSortByTitle(t *testing.T, b lista.Backend) {
	c := createCategory(t, b, "Reading")
	for _, title := range []string{"banana", "Apple", "cherry", "apricot"} {
		createItem(t, b, c.ID, title)
	}

	got := fetchItems(t, b, lista.ItemQuery{SortBy: lista.SortByTitle})
	want := []string{"Apple", "apricot", "banana", "cherry"}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("ascending position %d: title = %q, want %q (%v)", i, got[i].Title, title, itemTitles(got))
		}
	}

	got = fetchItems(t, b, lista.ItemQuery{SortBy: lista.SortByTitle, Descending: true})
	for i, title := range want {
		if got[len(got)-1-i].Title != title {
			t.Fatalf("descending order wrong: %v", itemTitles(got))
		}
	}
}

func testSortByCreated(t *testing.T, b lista.Backend) {
	c := createCategory(t, b, "Ordered")
	createItem(t, b, c.ID, "first")
	createItem(t, b, c.ID, "second")
	createItem(t, b, c.ID, "third")

	got := fetchItems(t, b, lista.ItemQuery{SortBy: lista.SortByCreated})
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.Before(got[i-1].CreatedAt) {
			t.Fatalf("creation times out of order: %v before %v", got[i].CreatedAt, got[i-1].CreatedAt)
		}
	}

	// The default sort is the same as asking for creation order.
	byDefault := fetchItems(t, b, lista.ItemQuery{})
	for i, it := range got {
		if byDefault[i].ID != it.ID {
			t.Errorf("default sort diverges from created sort at position %d", i)
		}
	}
}

func testLimit(t *testing.T, b lista.Backend) {
	c := createCategory(t, b, "Long")
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		createItem(t, b, c.ID, title)
	}

	got := fetchItems(t, b, lista.ItemQuery{SortBy: lista.SortByTitle, Limit: 2})
	if len(got) != 2 {
		t.Fatalf("got %d items with limit 2, want 2", len(got))
	}
	if got[0].Title != "a" || got[1].Title != "b" {
		t.Errorf("limit should keep the first sorted items, got %v", itemTitles(got))
	}

	if got := fetchItems(t, b, lista.ItemQuery{Limit: 100}); len(got) != 5 {
		t.Errorf("limit above the result size returned %d items, want 5", len(got))
	}
}

func testEmptyFetchIsNotNil(t *testing.T, b lista.Backend) {
	cats, err := b.Categories(context.Background(), lista.CategoryQuery{})
	if err != nil {
		t.Fatalf("Failed to fetch categories: %v", err)
	}
	if cats == nil {
		t.Error("empty category fetch should return a non-nil slice")
	}

	items, err := b.Items(context.Background(), lista.ItemQuery{})
	if err != nil {
		t.Fatalf("Failed to fetch items: %v", err)
	}
	if items == nil {
		t.Error("empty item fetch should return a non-nil slice")
	}
}

// ============================================================================
// Deletes
// ============================================================================

func testDeleteItem(t *testing.T, b lista.Backend) {
	c := createCategory(t, b, "School")
	it := createItem(t, b, c.ID, "Math HW")

	if err := b.DeleteItem(context.Background(), it.ID); err != nil {
		t.Fatalf("Failed to delete item: %v", err)
	}
	if items := fetchItems(t, b, lista.ItemQuery{}); len(items) != 0 {
		t.Errorf("got %d items after delete, want 0", len(items))
	}
}

func testDeleteCategoryCascade(t *testing.T, b lista.Backend) {
	school := createCategory(t, b, "School")
	chores := createCategory(t, b, "Chores")
	createItem(t, b, school.ID, "Math HW")
	createItem(t, b, school.ID, "History essay")
	kept := createItem(t, b, chores.ID, "Dishes")

	if err := b.DeleteCategory(context.Background(), school.ID, lista.CascadeItems); err != nil {
		t.Fatalf("Failed to delete category: %v", err)
	}

	if cats := fetchCategories(t, b, lista.CategoryQuery{}); len(cats) != 1 {
		t.Errorf("got %d categories, want 1", len(cats))
	}
	items := fetchItems(t, b, lista.ItemQuery{})
	if len(items) != 1 || items[0].ID != kept.ID {
		t.Errorf("cascade delete should only remove the category's own items, got %v", itemTitles(items))
	}
}

func testDeleteCategoryOrphan(t *testing.T, b lista.Backend) {
	school := createCategory(t, b, "School")
	it := createItem(t, b, school.ID, "Math HW")

	if err := b.DeleteCategory(context.Background(), school.ID, lista.OrphanItems); err != nil {
		t.Fatalf("Failed to delete category: %v", err)
	}

	items := fetchItems(t, b, lista.ItemQuery{})
	if len(items) != 1 {
		t.Fatalf("got %d items after orphaning, want 1", len(items))
	}
	if items[0].ID != it.ID || items[0].CategoryID != "" {
		t.Errorf("orphaned item = %+v, want empty CategoryID", items[0])
	}

	// Orphaned items still update.
	updated, err := b.ToggleItemDone(context.Background(), it.ID)
	if err != nil {
		t.Fatalf("Failed to toggle orphaned item: %v", err)
	}
	if !updated.Done {
		t.Error("orphaned item should toggle")
	}
}

func testDeleteCategoryMissing(t *testing.T, b lista.Backend) {
	err := b.DeleteCategory(context.Background(), lista.NewCategoryID(), lista.CascadeItems)
	if !errors.Is(err, lista.ErrCategoryNotFound) {
		t.Errorf("error = %v, want ErrCategoryNotFound", err)
	}
}

// ============================================================================
// Failure handling
// ============================================================================

func testQueryValidation(t *testing.T, b lista.Backend) {
	ctx := context.Background()

	if _, err := b.Items(ctx, lista.ItemQuery{SortBy: "priority"}); !errors.Is(err, lista.ErrInvalidSortKey) {
		t.Errorf("item query error = %v, want ErrInvalidSortKey", err)
	}
	if _, err := b.Categories(ctx, lista.CategoryQuery{SortBy: lista.SortByTitle}); !errors.Is(err, lista.ErrInvalidSortKey) {
		t.Errorf("category query error = %v, want ErrInvalidSortKey", err)
	}
	if _, err := b.Items(ctx, lista.ItemQuery{Limit: -1}); !errors.Is(err, lista.ErrInvalidLimit) {
		t.Errorf("limit error = %v, want ErrInvalidLimit", err)
	}
}

func testUsableAfterFailedWrite(t *testing.T, b lista.Backend) {
	ctx := context.Background()
	createCategory(t, b, "School")

	// A constraint violation fails the unit of work without poisoning the
	// store.
	dup, _ := lista.NewCategory("School")
	if err := b.InsertCategory(ctx, dup); !errors.Is(err, lista.ErrCategoryExists) {
		t.Fatalf("error = %v, want ErrCategoryExists", err)
	}

	c := createCategory(t, b, "Chores")
	it := createItem(t, b, c.ID, "Dishes")
	if _, err := b.ToggleItemDone(ctx, it.ID); err != nil {
		t.Fatalf("store should stay usable after a failed write: %v", err)
	}
}

// ============================================================================
// End-to-end scenario
// ============================================================================

func testSchoolScenario(t *testing.T, b lista.Backend) {
	ctx := context.Background()

	school := createCategory(t, b, "School")
	createItem(t, b, school.ID, "Math HW")

	items := fetchItems(t, b, lista.ItemQuery{CategoryID: school.ID})
	if len(items) != 1 {
		t.Fatalf("got %d items, want exactly [\"Math HW\"]", len(items))
	}
	if items[0].Title != "Math HW" || items[0].Done {
		t.Fatalf("got %+v, want Math HW with done=false", items[0])
	}

	if _, err := b.ToggleItemDone(ctx, items[0].ID); err != nil {
		t.Fatalf("Failed to toggle item: %v", err)
	}
	items = fetchItems(t, b, lista.ItemQuery{CategoryID: school.ID})
	if !items[0].Done {
		t.Fatal("item should be done after the first toggle")
	}

	if _, err := b.ToggleItemDone(ctx, items[0].ID); err != nil {
		t.Fatalf("Failed to toggle item: %v", err)
	}
	items = fetchItems(t, b, lista.ItemQuery{CategoryID: school.ID})
	if items[0].Done {
		t.Fatal("item should not be done after the second toggle")
	}
}
