package maintain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestKeyFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		post map[string]any
		want string
	}{
		{"link", map[string]any{"link": "https://dev.to/a/post", "slug": "post"}, "https://dev.to/a/post"},
		{"link trailing slash", map[string]any{"link": "https://dev.to/a/post/"}, "https://dev.to/a/post"},
		{"slug fallback", map[string]any{"slug": "my-slug"}, "my-slug"},
		{"neither", map[string]any{"title": "Only a title"}, ""},
		{"non-string link", map[string]any{"link": 42, "slug": "still-slug"}, "still-slug"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := KeyFor(tc.post); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDedupeSimpleLaterDateWins(t *testing.T) {
	t.Parallel()

	posts := []map[string]any{
		{"link": "https://dev.to/a/post", "title": "Old", "date": "2024-01-01T00:00:00Z"},
		{"link": "https://dev.to/a/post", "title": "New", "date": "2024-02-01T00:00:00Z"},
	}

	got := DedupeSimple(posts)
	if len(got) != 1 || got[0]["title"] != "New" {
		t.Fatalf("later date should win, got %v", got)
	}
}

func TestDedupeSimpleEqualDateIncomingWins(t *testing.T) {
	t.Parallel()

	posts := []map[string]any{
		{"link": "https://dev.to/a/post", "title": "First", "date": "2024-01-01T00:00:00Z"},
		{"link": "https://dev.to/a/post", "title": "Second", "date": "2024-01-01T00:00:00Z"},
	}

	got := DedupeSimple(posts)
	if len(got) != 1 || got[0]["title"] != "Second" {
		t.Fatalf("equal dates keep the later-seen record, got %v", got)
	}
}

func TestDedupeSimpleDatedBeatsDateless(t *testing.T) {
	t.Parallel()

	posts := []map[string]any{
		{"link": "https://dev.to/a/post", "title": "Dateless"},
		{"link": "https://dev.to/a/post", "title": "Dated", "date": "2020-01-01T00:00:00Z"},
	}

	got := DedupeSimple(posts)
	if len(got) != 1 || got[0]["title"] != "Dated" {
		t.Fatalf("a record with a date should beat one without, got %v", got)
	}

	// Reversed order: the incoming dateless record never displaces a dated one.
	got = DedupeSimple([]map[string]any{posts[1], posts[0]})
	if len(got) != 1 || got[0]["title"] != "Dated" {
		t.Fatalf("dateless incoming should lose, got %v", got)
	}
}

func TestDedupeSimpleBothDatelessKeepsFirst(t *testing.T) {
	t.Parallel()

	posts := []map[string]any{
		{"link": "https://dev.to/a/post", "title": "First"},
		{"link": "https://dev.to/a/post", "title": "Second"},
	}

	got := DedupeSimple(posts)
	if len(got) != 1 || got[0]["title"] != "First" {
		t.Fatalf("two dateless records keep the first seen, got %v", got)
	}
}

func TestDedupeSimpleTitleFallbackKey(t *testing.T) {
	t.Parallel()

	posts := []map[string]any{
		{"title": "Same Title", "date": "2024-01-01T00:00:00Z"},
		{"title": "Same Title", "date": "2024-02-01T00:00:00Z"},
		{"title": "Other Title"},
	}

	got := DedupeSimple(posts)
	if len(got) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(got))
	}
	if got[0]["date"] != "2024-02-01T00:00:00Z" {
		t.Fatalf("later titled duplicate should win, got %v", got[0])
	}
}

func TestCleanMissingFile(t *testing.T) {
	t.Parallel()

	var messages []string
	report := func(format string, args ...any) {
		messages = append(messages, format)
	}

	err := Clean(filepath.Join(t.TempDir(), "missing.json"), report)
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(messages) == 0 {
		t.Fatal("expected a nothing-to-clean report")
	}
}

func TestCleanMalformedJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "posts.json")
	if err := os.WriteFile(path, []byte(`{"broken":`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Clean(path, nil); err == nil {
		t.Fatal("malformed JSON should error")
	}
}

func TestCleanDedupesBacksUpAndSorts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "posts.json")
	original := `[
		{"link": "https://dev.to/a/one", "title": "One Old", "date": "2024-01-01T00:00:00Z"},
		{"link": "https://dev.to/a/one", "title": "One New", "date": "2024-03-01T00:00:00Z"},
		{"link": "https://dev.to/a/two", "title": "Two", "date": "2024-02-01T00:00:00Z"}
	]`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Clean(path, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup should exist: %v", err)
	}
	if string(backup) != original {
		t.Fatal("backup should hold the pre-clean payload")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cleaned []map[string]any
	if err := json.Unmarshal(raw, &cleaned); err != nil {
		t.Fatalf("cleaned file should be valid JSON: %v", err)
	}
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 posts after cleanup, got %d", len(cleaned))
	}
	if cleaned[0]["title"] != "One New" || cleaned[1]["title"] != "Two" {
		t.Fatalf("posts should sort newest first, got %v", cleaned)
	}

	// A second clean must not clobber the original backup.
	if err := Clean(path, nil); err != nil {
		t.Fatalf("second clean failed: %v", err)
	}
	backupAgain, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatal(err)
	}
	if string(backupAgain) != original {
		t.Fatal("backup should be written only once")
	}
}
