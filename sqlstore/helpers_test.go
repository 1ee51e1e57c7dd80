package sqlstore

import (
	"testing"
	"time"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"plain", "plain"},
		{"100%", `100\%`},
		{"under_score", `under\_score`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}

	for _, tt := range tests {
		if got := escapeLike(tt.input); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	orig := time.Now().UTC().Truncate(time.Millisecond)

	got := timeFromMillis(timeToMillis(orig))
	if !got.Equal(orig) {
		t.Errorf("round-tripped time = %v, want %v", got, orig)
	}
	if got.Location() != time.UTC {
		t.Errorf("round-tripped location = %v, want UTC", got.Location())
	}
}

func TestNullableID(t *testing.T) {
	if got := nullableID(""); got != nil {
		t.Errorf("nullableID(\"\") = %v, want nil", got)
	}
	if got := nullableID("abc"); got != "abc" {
		t.Errorf("nullableID(\"abc\") = %v, want \"abc\"", got)
	}
}
