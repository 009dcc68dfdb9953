package fetch

import (
	"encoding/json"
	"os"

	"devtomirror/internal/domain"
)

// loadCachedPosts reads the JSON array at path and converts each entry into
// the normalized article shape. A missing file, malformed JSON, or
// non-mapping entries all degrade to "no cached data" instead of failing.
func loadCachedPosts(path, username string) []domain.Post {
	raw, err := os.ReadFile(path)
	if err != nil {
		return []domain.Post{}
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return []domain.Post{}
	}

	posts := make([]domain.Post, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		posts = append(posts, convertCachedPost(m, username))
	}

	return posts
}

// convertCachedPost maps a cached record's loose shape onto the normalized
// shape the renderer expects.
func convertCachedPost(m map[string]any, username string) domain.Post {
	p := domain.PostFromMap(m)

	if p.Title == "" {
		p.Title = "Untitled"
	}
	if p.Link != "" {
		p.URL = p.Link
	}
	if api := p.APIData; api != nil {
		if id := apiDataID(api["id"]); id > 0 {
			p.ID = id
		}
		if published, ok := api["published_at"].(string); ok && published != "" {
			p.PublishedAt = published
		}
	}
	p.User = &domain.PostUser{Username: username}

	return p
}

func apiDataID(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}
