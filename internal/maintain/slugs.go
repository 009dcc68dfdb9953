package maintain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExtractSlugFromURL pulls the slug segment out of an article URL of the
// form scheme://domain/user/slug[/...]. Anything shorter yields "".
func ExtractSlugFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	idx := strings.Index(rawURL, "//")
	if idx < 0 {
		return ""
	}

	parts := strings.Split(rawURL[idx+2:], "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// SafePath resolves path and rejects anything escaping base.
func SafePath(path, base string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base %s: %w", base, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes %s", path, base)
	}

	return absPath, nil
}

// FixSlugs recomputes each cached post's slug from its link, writing a
// one-time .backup copy before the first rewrite. Missing or malformed
// cache files end the run without failing it.
func FixSlugs(path string, report func(format string, args ...any)) error {
	if report == nil {
		report = func(string, ...any) {}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		report("Nothing to fix: %v", err)
		return nil
	}

	var posts []map[string]any
	if err := json.Unmarshal(raw, &posts); err != nil {
		report("Error parsing %s: %v", path, err)
		return nil
	}

	fixed := 0
	for _, post := range posts {
		link, _ := post["link"].(string)
		slug := ExtractSlugFromURL(link)
		if slug == "" {
			continue
		}
		if current, _ := post["slug"].(string); current != slug {
			post["slug"] = slug
			fixed++
		}
	}

	if fixed == 0 {
		report("No slugs needed fixing")
		return nil
	}

	backup := path + ".backup"
	if _, err := os.Stat(backup); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(backup, raw, 0o644); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
	}

	payload, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal posts data: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write posts data: %w", err)
	}

	report("Fixed %d slugs", fixed)
	return nil
}
