package reconcile

import (
	"math"
	"testing"
	"time"

	"devtomirror/internal/domain"
)

func TestParseDateNilAndEmpty(t *testing.T) {
	t.Parallel()

	if _, ok := ParseDate(nil); ok {
		t.Fatal("nil should not parse")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatal("empty string should not parse")
	}
	if _, ok := ParseDate("   "); ok {
		t.Fatal("blank string should not parse")
	}
}

func TestParseDateISOStrings(t *testing.T) {
	t.Parallel()

	got, ok := ParseDate("2024-01-01T00:00:00Z")
	if !ok {
		t.Fatal("Z-suffixed ISO string should parse")
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}

	if _, ok := ParseDate("2024-06-15T12:00:00+00:00"); !ok {
		t.Fatal("offset ISO string should parse")
	}

	naive, ok := ParseDate("2024-01-15T10:30:00")
	if !ok {
		t.Fatal("naive ISO string should parse")
	}
	if naive.Location() != time.UTC {
		t.Fatalf("naive string should gain UTC, got %v", naive.Location())
	}
	if naive.Hour() != 10 {
		t.Fatalf("unexpected hour: %d", naive.Hour())
	}

	if _, ok := ParseDate("2024-03-01"); !ok {
		t.Fatal("date-only string should parse")
	}
}

func TestParseDateTimeValuePassthrough(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	got, ok := ParseDate(want)
	if !ok || !got.Equal(want) {
		t.Fatalf("time.Time should pass through, got %v ok=%v", got, ok)
	}
}

func TestParseDateEpochNumbers(t *testing.T) {
	t.Parallel()

	got, ok := ParseDate(1704067200)
	if !ok {
		t.Fatal("integer epoch should parse")
	}
	if got.Year() != 2024 || got.Month() != time.January {
		t.Fatalf("unexpected epoch conversion: %v", got)
	}

	if _, ok := ParseDate(1704067200.0); !ok {
		t.Fatal("float epoch should parse")
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, ok := ParseDate("not-a-date"); ok {
		t.Fatal("garbage string should not parse")
	}
	if _, ok := ParseDate(math.Inf(1)); ok {
		t.Fatal("infinite epoch should not parse")
	}
	if _, ok := ParseDate(math.NaN()); ok {
		t.Fatal("NaN epoch should not parse")
	}
	if _, ok := ParseDate(1e18); ok {
		t.Fatal("out-of-range epoch should not parse")
	}
	if _, ok := ParseDate([]string{"2024"}); ok {
		t.Fatal("unsupported type should not parse")
	}
}

func TestIdentityKeyPrefersID(t *testing.T) {
	t.Parallel()

	key, ok := IdentityKey(domain.Post{ID: 123, Link: "https://example.com/post"})
	if !ok || key != "id:123" {
		t.Fatalf("unexpected key: %q ok=%v", key, ok)
	}
}

func TestIdentityKeyFromAPIData(t *testing.T) {
	t.Parallel()

	post := domain.Post{
		Link:    "https://example.com/post",
		APIData: map[string]any{"id": float64(456)},
	}
	key, ok := IdentityKey(post)
	if !ok || key != "id:456" {
		t.Fatalf("unexpected key: %q ok=%v", key, ok)
	}
}

func TestIdentityKeyFallsBackToLink(t *testing.T) {
	t.Parallel()

	key, ok := IdentityKey(domain.Post{Link: "https://example.com/post/"})
	if !ok || key != "link:https://example.com/post" {
		t.Fatalf("trailing slash should be stripped, got %q", key)
	}

	key, ok = IdentityKey(domain.Post{URL: "https://example.com/post"})
	if !ok || key != "link:https://example.com/post" {
		t.Fatalf("url should serve as link fallback, got %q ok=%v", key, ok)
	}

	key, ok = IdentityKey(domain.Post{APIData: map[string]any{"id": "not-an-int"}, Link: "https://example.com/post"})
	if !ok || key != "link:https://example.com/post" {
		t.Fatalf("non-numeric id should fall through to link, got %q", key)
	}
}

func TestIdentityKeyNone(t *testing.T) {
	t.Parallel()

	if _, ok := IdentityKey(domain.Post{Title: "No identity"}); ok {
		t.Fatal("post without id or link should have no identity")
	}
	if _, ok := IdentityKey(domain.Post{ID: -5, Title: "Negative"}); ok {
		t.Fatal("negative id without link should have no identity")
	}
}

func TestActivityTimePicksMostRecent(t *testing.T) {
	t.Parallel()

	post := domain.Post{
		APIData: map[string]any{
			"edited_at":    "2024-01-05T00:00:00Z",
			"published_at": "2024-01-01T00:00:00Z",
		},
	}
	got, ok := ActivityTime(post)
	if !ok {
		t.Fatal("expected an activity time")
	}
	if got.Day() != 5 {
		t.Fatalf("expected the edited_at candidate, got %v", got)
	}
}

func TestActivityTimeTopLevelFields(t *testing.T) {
	t.Parallel()

	got, ok := ActivityTime(domain.Post{Date: "2024-03-15T10:00:00Z"})
	if !ok || got.Month() != time.March {
		t.Fatalf("expected top-level date to count, got %v ok=%v", got, ok)
	}

	post := domain.Post{
		EditedAt:    "2024-06-01T00:00:00Z",
		PublishedAt: "2024-01-01T00:00:00Z",
	}
	got, ok = ActivityTime(post)
	if !ok || got.Month() != time.June {
		t.Fatalf("expected edited_at to win, got %v", got)
	}
}

func TestActivityTimeAbsent(t *testing.T) {
	t.Parallel()

	if _, ok := ActivityTime(domain.Post{Title: "No dates at all"}); ok {
		t.Fatal("post without date fields should have no activity time")
	}
}

func TestSortKeyFallback(t *testing.T) {
	t.Parallel()

	dated := SortKey(domain.Post{Date: "2024-06-01T00:00:00Z"})
	if dated.Month() != time.June {
		t.Fatalf("unexpected sort key: %v", dated)
	}

	if !SortKey(domain.Post{Title: "No dates"}).IsZero() {
		t.Fatal("dateless post should sort with the zero time")
	}
}
