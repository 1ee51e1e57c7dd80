package lista

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewCategoryValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid name", "School", nil},
		{"empty name", "", ErrEmptyName},
		{"max length name", strings.Repeat("a", 255), nil},
		{"too long name", strings.Repeat("a", 256), ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCategory(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewCategory(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr == nil && c.Name != tt.input {
				t.Errorf("Name = %q, want %q", c.Name, tt.input)
			}
			if tt.wantErr != nil && c != nil {
				t.Errorf("expected nil category on validation error, got %+v", c)
			}
		})
	}
}

func TestNewItemValidation(t *testing.T) {
	tests := []struct {
		name       string
		categoryID CategoryID
		title      string
		wantErr    error
	}{
		{"valid item", NewCategoryID(), "Math HW", nil},
		{"missing category", "", "Math HW", ErrInvalidCategoryID},
		{"empty title", NewCategoryID(), "", ErrEmptyTitle},
		{"too long title", NewCategoryID(), strings.Repeat("a", 256), ErrTitleTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := NewItem(tt.categoryID, tt.title)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewItem error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if it.CategoryID != tt.categoryID {
				t.Errorf("CategoryID = %q, want %q", it.CategoryID, tt.categoryID)
			}
			if it.Done {
				t.Error("new item should not be done")
			}
		})
	}
}

func TestNewRecordsGetDistinctIDs(t *testing.T) {
	a, err := NewCategory("one")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	b, err := NewCategory("two")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	if a.ID == "" || b.ID == "" {
		t.Fatal("categories should get generated IDs")
	}
	if a.ID == b.ID {
		t.Errorf("categories should get distinct IDs, both got %q", a.ID)
	}
}

func TestCreationTimestampPrecision(t *testing.T) {
	c, err := NewCategory("School")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	if c.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}
	if c.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt location = %v, want UTC", c.CreatedAt.Location())
	}
	if !c.CreatedAt.Equal(c.CreatedAt.Truncate(time.Millisecond)) {
		t.Errorf("CreatedAt = %v, want millisecond precision", c.CreatedAt)
	}
}

func TestParseDeletePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    DeletePolicy
		wantErr bool
	}{
		{"cascade", CascadeItems, false},
		{"orphan", OrphanItems, false},
		{"", CascadeItems, true},
		{"keep", CascadeItems, true},
	}

	for _, tt := range tests {
		got, err := ParseDeletePolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDeletePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseDeletePolicy(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDeletePolicyString(t *testing.T) {
	if got := CascadeItems.String(); got != "cascade" {
		t.Errorf("CascadeItems.String() = %q, want %q", got, "cascade")
	}
	if got := OrphanItems.String(); got != "orphan" {
		t.Errorf("OrphanItems.String() = %q, want %q", got, "orphan")
	}
}
