package domain

// Post is a core entity describing one mirrored article. Fields mirror the
// keys of the on-disk cache file; the zero value of a field means the key
// was absent in the source data.
type Post struct {
	ID          int            `json:"id,omitempty"`
	Title       string         `json:"title,omitempty"`
	Link        string         `json:"link,omitempty"`
	URL         string         `json:"url,omitempty"`
	Slug        string         `json:"slug,omitempty"`
	Description string         `json:"description,omitempty"`
	CoverImage  string         `json:"cover_image,omitempty"`
	Date        string         `json:"date,omitempty"`
	EditedAt    string         `json:"edited_at,omitempty"`
	PublishedAt string         `json:"published_at,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	User        *PostUser      `json:"user,omitempty"`
	APIData     map[string]any `json:"api_data,omitempty"`
}

// PostUser identifies the author on the remote platform.
type PostUser struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// PostConvertible lets opaque values carry a post representation through
// reconciliation boundaries.
type PostConvertible interface {
	Post() Post
}

// PostFromAny normalizes an arbitrary decoded value into a Post. Values
// that carry no post shape report ok=false and are skipped by callers.
func PostFromAny(v any) (Post, bool) {
	switch t := v.(type) {
	case Post:
		return t, true
	case *Post:
		if t == nil {
			return Post{}, false
		}
		return *t, true
	case map[string]any:
		return PostFromMap(t), true
	case PostConvertible:
		return t.Post(), true
	default:
		return Post{}, false
	}
}

// PostFromMap converts loose JSON into a Post, dropping malformed fields
// instead of failing.
func PostFromMap(m map[string]any) Post {
	p := Post{
		ID:          intField(m, "id"),
		Title:       stringField(m, "title"),
		Link:        stringField(m, "link"),
		URL:         stringField(m, "url"),
		Slug:        stringField(m, "slug"),
		Description: stringField(m, "description"),
		CoverImage:  stringField(m, "cover_image"),
		Date:        stringField(m, "date"),
		EditedAt:    stringField(m, "edited_at"),
		PublishedAt: stringField(m, "published_at"),
		Tags:        stringSliceField(m, "tags"),
	}

	if api, ok := m["api_data"].(map[string]any); ok {
		p.APIData = api
	}
	if user, ok := m["user"].(map[string]any); ok {
		username := stringField(user, "username")
		name := stringField(user, "name")
		if username != "" || name != "" {
			p.User = &PostUser{Username: username, Name: name}
		}
	}

	return p
}

// PostFromAPI wraps a full-article payload fetched from the remote API,
// keeping the verbatim payload in APIData.
func PostFromAPI(raw map[string]any, username string) Post {
	p := PostFromMap(raw)
	if p.Tags == nil {
		p.Tags = stringSliceField(raw, "tag_list")
	}
	if p.Date == "" {
		p.Date = p.PublishedAt
	}
	if p.User == nil || p.User.Username == "" {
		p.User = &PostUser{Username: username}
	}
	p.APIData = raw
	return p
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) int {
	switch n := m[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func stringSliceField(m map[string]any, key string) []string {
	switch raw := m[key].(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}
