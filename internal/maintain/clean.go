package maintain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"devtomirror/internal/reconcile"
)

// The maintenance tools work on raw JSON objects instead of typed posts so
// a cleanup rewrite never drops fields it does not know about.

// KeyFor derives the cleanup key for a cached post: link with trailing
// slashes stripped, else slug, else empty (the caller falls back to title).
func KeyFor(post map[string]any) string {
	if link, _ := post["link"].(string); link != "" {
		return strings.TrimRight(link, "/")
	}
	if slug, _ := post["slug"].(string); slug != "" {
		return slug
	}
	return ""
}

// DedupeSimple collapses posts sharing a cleanup key, keeping the record
// with the later-or-equal date. Records without a parsable date always lose
// to one that has a date; when neither has one the first-seen record stays.
// This is the non-identity-aware maintenance variant, not the reconciliation
// path.
func DedupeSimple(posts []map[string]any) []map[string]any {
	order := make([]string, 0, len(posts))
	byKey := make(map[string]map[string]any, len(posts))

	for _, post := range posts {
		key := KeyFor(post)
		if key == "" {
			key, _ = post["title"].(string)
		}

		existing, seen := byKey[key]
		if !seen {
			byKey[key] = post
			order = append(order, key)
			continue
		}
		if laterDate(post, existing) {
			byKey[key] = post
		}
	}

	out := make([]map[string]any, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

func laterDate(incoming, existing map[string]any) bool {
	in, inOK := reconcile.ParseDate(incoming["date"])
	if !inOK {
		return false
	}
	ex, exOK := reconcile.ParseDate(existing["date"])
	if !exOK {
		return true
	}
	return !in.Before(ex)
}

// Clean dedupes and re-sorts the posts cache file in place, writing a
// one-time .bak backup first. A missing file is not an error; malformed
// JSON is.
func Clean(path string, report func(format string, args ...any)) error {
	if report == nil {
		report = func(string, ...any) {}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			report("No posts data file at %s, nothing to clean", path)
			return nil
		}
		return fmt.Errorf("read posts data: %w", err)
	}

	var posts []map[string]any
	if err := json.Unmarshal(raw, &posts); err != nil {
		return fmt.Errorf("parse posts data: %w", err)
	}

	backup := path + ".bak"
	if _, err := os.Stat(backup); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(backup, raw, 0o644); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		report("Backup written to %s", backup)
	}

	cleaned := DedupeSimple(posts)
	slices.SortStableFunc(cleaned, func(a, b map[string]any) int {
		return dateOf(b).Compare(dateOf(a))
	})

	payload, err := json.MarshalIndent(cleaned, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal posts data: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write posts data: %w", err)
	}

	report("Kept %d of %d posts", len(cleaned), len(posts))
	return nil
}

func dateOf(post map[string]any) time.Time {
	t, _ := reconcile.ParseDate(post["date"])
	return t
}
