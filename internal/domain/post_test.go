package domain

import "testing"

type convertible struct{ title string }

func (c convertible) Post() Post { return Post{Title: c.title} }

func TestPostFromAny(t *testing.T) {
	t.Parallel()

	if got, ok := PostFromAny(Post{Title: "value"}); !ok || got.Title != "value" {
		t.Fatalf("Post value should pass through, got %+v ok=%v", got, ok)
	}
	if got, ok := PostFromAny(&Post{Title: "pointer"}); !ok || got.Title != "pointer" {
		t.Fatalf("*Post should pass through, got %+v ok=%v", got, ok)
	}
	if _, ok := PostFromAny((*Post)(nil)); ok {
		t.Fatal("nil *Post should be skipped")
	}
	if got, ok := PostFromAny(map[string]any{"title": "mapped"}); !ok || got.Title != "mapped" {
		t.Fatalf("map should convert, got %+v ok=%v", got, ok)
	}
	if got, ok := PostFromAny(convertible{title: "wrapped"}); !ok || got.Title != "wrapped" {
		t.Fatalf("convertible should unwrap, got %+v ok=%v", got, ok)
	}
	if _, ok := PostFromAny("just a string"); ok {
		t.Fatal("strings carry no post shape")
	}
	if _, ok := PostFromAny(nil); ok {
		t.Fatal("nil carries no post shape")
	}
}

func TestPostFromMap(t *testing.T) {
	t.Parallel()

	p := PostFromMap(map[string]any{
		"id":       float64(12),
		"title":    "Hello",
		"link":     "https://dev.to/alice/hello",
		"tags":     []any{"go", 42, "testing"},
		"user":     map[string]any{"username": "alice", "name": "Alice"},
		"api_data": map[string]any{"id": float64(12)},
		"date":     12345, // malformed, dropped
	})

	if p.ID != 12 || p.Title != "Hello" {
		t.Fatalf("unexpected post: %+v", p)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "go" || p.Tags[1] != "testing" {
		t.Fatalf("non-string tags should be dropped, got %v", p.Tags)
	}
	if p.User == nil || p.User.Username != "alice" || p.User.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", p.User)
	}
	if p.APIData == nil {
		t.Fatal("api_data should be kept")
	}
	if p.Date != "" {
		t.Fatalf("malformed date should be dropped, got %q", p.Date)
	}
}

func TestPostFromAPI(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"id":           float64(7),
		"title":        "From API",
		"tag_list":     []any{"go"},
		"published_at": "2024-05-01T00:00:00Z",
	}

	p := PostFromAPI(raw, "alice")
	if p.ID != 7 {
		t.Fatalf("unexpected id: %d", p.ID)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "go" {
		t.Fatalf("tag_list should backfill tags, got %v", p.Tags)
	}
	if p.Date != "2024-05-01T00:00:00Z" {
		t.Fatalf("published_at should backfill date, got %q", p.Date)
	}
	if p.User == nil || p.User.Username != "alice" {
		t.Fatalf("user should be forced, got %+v", p.User)
	}
	if len(p.APIData) != len(raw) {
		t.Fatal("verbatim payload should be preserved")
	}
}
