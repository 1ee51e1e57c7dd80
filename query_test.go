package lista

import (
	"errors"
	"testing"
	"time"
)

func testItem(id ItemID, categoryID CategoryID, title string, createdAt time.Time) *Item {
	return &Item{ID: id, CategoryID: categoryID, Title: title, CreatedAt: createdAt}
}

func testCategory(id CategoryID, name string, createdAt time.Time) *Category {
	return &Category{ID: id, Name: name, CreatedAt: createdAt}
}

func titles(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"category default", CategoryQuery{}.Validate(), nil},
		{"category by name", CategoryQuery{SortBy: SortByName}.Validate(), nil},
		{"category by title", CategoryQuery{SortBy: SortByTitle}.Validate(), ErrInvalidSortKey},
		{"category negative limit", CategoryQuery{Limit: -1}.Validate(), ErrInvalidLimit},
		{"item default", ItemQuery{}.Validate(), nil},
		{"item by title", ItemQuery{SortBy: SortByTitle}.Validate(), nil},
		{"item by name", ItemQuery{SortBy: SortByName}.Validate(), ErrInvalidSortKey},
		{"item bogus key", ItemQuery{SortBy: "done"}.Validate(), ErrInvalidSortKey},
		{"item negative limit", ItemQuery{Limit: -5}.Validate(), ErrInvalidLimit},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.wantErr) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.wantErr)
		}
	}
}

func TestItemQueryMatch(t *testing.T) {
	cat := CategoryID("cat-1")
	it := testItem("it-1", cat, "Math HW", time.Now())

	tests := []struct {
		name  string
		query ItemQuery
		want  bool
	}{
		{"empty query matches", ItemQuery{}, true},
		{"same category", ItemQuery{CategoryID: cat}, true},
		{"other category", ItemQuery{CategoryID: "cat-2"}, false},
		{"exact substring", ItemQuery{TitleContains: "Math"}, true},
		{"different case", ItemQuery{TitleContains: "math hw"}, true},
		{"upper case", ItemQuery{TitleContains: "MATH"}, true},
		{"no match", ItemQuery{TitleContains: "science"}, false},
		{"scope and filter", ItemQuery{CategoryID: cat, TitleContains: "hw"}, true},
		{"scope mismatch wins", ItemQuery{CategoryID: "cat-2", TitleContains: "hw"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Match(it); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

// LIKE metacharacters have no special meaning in a filter: the pattern is a
// plain substring.
func TestItemQueryMatchLiteralMetacharacters(t *testing.T) {
	items := []*Item{
		testItem("a", "c", "100% done", time.Now()),
		testItem("b", "c", "100 percent done", time.Now()),
		testItem("c", "c", "under_score", time.Now()),
		testItem("d", "c", "underscore", time.Now()),
		testItem("e", "c", `back\slash`, time.Now()),
	}

	got := ItemQuery{TitleContains: "100%"}.Apply(items)
	if len(got) != 1 || got[0].Title != "100% done" {
		t.Errorf("filter %q matched %v, want only %q", "100%", titles(got), "100% done")
	}

	got = ItemQuery{TitleContains: "under_"}.Apply(items)
	if len(got) != 1 || got[0].Title != "under_score" {
		t.Errorf("filter %q matched %v, want only %q", "under_", titles(got), "under_score")
	}

	got = ItemQuery{TitleContains: `back\`}.Apply(items)
	if len(got) != 1 || got[0].Title != `back\slash` {
		t.Errorf("filter %q matched %v, want only %q", `back\`, titles(got), `back\slash`)
	}
}

func TestItemQueryApplySortByTitle(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []*Item{
		testItem("1", "c", "banana", base),
		testItem("2", "c", "Apple", base.Add(time.Minute)),
		testItem("3", "c", "cherry", base.Add(2*time.Minute)),
	}

	got := ItemQuery{SortBy: SortByTitle}.Apply(items)
	want := []string{"Apple", "banana", "cherry"}
	if !equalStrings(titles(got), want) {
		t.Errorf("sorted titles = %v, want %v", titles(got), want)
	}

	got = ItemQuery{SortBy: SortByTitle, Descending: true}.Apply(items)
	want = []string{"cherry", "banana", "Apple"}
	if !equalStrings(titles(got), want) {
		t.Errorf("descending titles = %v, want %v", titles(got), want)
	}
}

func TestItemQueryApplyDefaultsToCreationOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []*Item{
		testItem("1", "c", "third", base.Add(2*time.Minute)),
		testItem("2", "c", "first", base),
		testItem("3", "c", "second", base.Add(time.Minute)),
	}

	got := ItemQuery{}.Apply(items)
	want := []string{"first", "second", "third"}
	if !equalStrings(titles(got), want) {
		t.Errorf("default order = %v, want %v", titles(got), want)
	}
}

// Records created at the same instant order by ID so both backends return
// identical results.
func TestItemQueryApplyBreaksTiesByID(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []*Item{
		testItem("b", "c", "same", at),
		testItem("a", "c", "same", at),
		testItem("c", "c", "same", at),
	}

	got := ItemQuery{}.Apply(items)
	for i, wantID := range []ItemID{"a", "b", "c"} {
		if got[i].ID != wantID {
			t.Fatalf("position %d: ID = %q, want %q", i, got[i].ID, wantID)
		}
	}

	// Descending flips the sort key but not the tie-break.
	got = ItemQuery{Descending: true}.Apply(items)
	for i, wantID := range []ItemID{"a", "b", "c"} {
		if got[i].ID != wantID {
			t.Fatalf("descending position %d: ID = %q, want %q", i, got[i].ID, wantID)
		}
	}
}

func TestItemQueryApplyLimit(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []*Item{
		testItem("1", "c", "first", base),
		testItem("2", "c", "second", base.Add(time.Minute)),
		testItem("3", "c", "third", base.Add(2*time.Minute)),
	}

	got := ItemQuery{Limit: 2}.Apply(items)
	want := []string{"first", "second"}
	if !equalStrings(titles(got), want) {
		t.Errorf("limited titles = %v, want %v", titles(got), want)
	}

	if got := (ItemQuery{Limit: 10}).Apply(items); len(got) != 3 {
		t.Errorf("limit larger than result = %d items, want 3", len(got))
	}
}

func TestItemQueryApplyEmptyResultIsNotNil(t *testing.T) {
	got := ItemQuery{}.Apply(nil)
	if got == nil {
		t.Fatal("Apply should return an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Fatalf("Apply on no items returned %d items", len(got))
	}
}

func TestCategoryQueryApply(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cats := []*Category{
		testCategory("1", "school", base),
		testCategory("2", "Chores", base.Add(time.Minute)),
		testCategory("3", "Shopping", base.Add(2*time.Minute)),
	}

	got := CategoryQuery{SortBy: SortByName}.Apply(cats)
	if got[0].Name != "Chores" || got[1].Name != "school" || got[2].Name != "Shopping" {
		names := []string{got[0].Name, got[1].Name, got[2].Name}
		t.Errorf("sorted names = %v, want [Chores school Shopping]", names)
	}

	got = CategoryQuery{NameContains: "ho"}.Apply(cats)
	if len(got) != 2 {
		t.Fatalf("filter matched %d categories, want 2", len(got))
	}

	got = CategoryQuery{NameContains: "SCHOOL"}.Apply(cats)
	if len(got) != 1 || got[0].Name != "school" {
		t.Errorf("case-insensitive filter failed, got %d results", len(got))
	}
}

func TestFoldASCII(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"abc", "abc"},
		{"ABC", "abc"},
		{"Math HW", "math hw"},
		{"100% DONE", "100% done"},
		// Non-ASCII is left alone, matching the relational collation.
		{"ÉCOLE", "École"},
	}

	for _, tt := range tests {
		if got := foldASCII(tt.input); got != tt.want {
			t.Errorf("foldASCII(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
