package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devtomirror/internal/devto"
	"devtomirror/internal/domain"
)

// Source identifies where a fetch result's articles came from.
type Source string

const (
	SourceForcedEmpty Source = "forced-empty"
	SourceValidation  Source = "validation"
	SourceMock        Source = "mock"
	SourceAPI         Source = "api"
	SourceCache       Source = "cache"
)

// Result is the orchestrator's output contract. Callers distinguish full
// success, degraded cached success, and "nothing new" purely through these
// fields; the orchestrator never returns an error.
type Result struct {
	Success    bool
	Articles   []domain.Post
	NoNewPosts bool
	Source     Source
}

// Toggles carries the operational overrides, resolved once at the
// configuration boundary so the orchestrator stays free of ambient state.
type Toggles struct {
	ForceEmptyFeed    bool
	ValidationNoPosts bool
	ValidationMode    bool
}

// Fetcher coordinates the remote client with the on-disk cache fallback.
type Fetcher struct {
	client  *devto.Client
	toggles Toggles
	logger  *slog.Logger
}

// NewFetcher wires the orchestrator.
func NewFetcher(client *devto.Client, toggles Toggles, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, toggles: toggles, logger: logger}
}

// FetchAll mirrors the user's published articles. lastRunISO is the
// timestamp of a known prior run, empty when there is none; postsDataPath
// points at the cache file used for the degraded fallback path.
func (f *Fetcher) FetchAll(ctx context.Context, username, lastRunISO, postsDataPath string) Result {
	if f.toggles.ForceEmptyFeed {
		f.logger.Info("forced-empty feed override active")
		return Result{
			Success:    true,
			Articles:   []domain.Post{},
			NoNewPosts: lastRunISO != "",
			Source:     SourceForcedEmpty,
		}
	}

	if f.toggles.ValidationMode {
		if f.toggles.ValidationNoPosts {
			return Result{Success: true, Articles: []domain.Post{}, Source: SourceValidation}
		}
		return Result{Success: true, Articles: []domain.Post{mockArticle(username)}, Source: SourceMock}
	}

	summaries, err := f.client.ListArticles(ctx, username)
	if err != nil {
		f.logger.Warn("article listing failed, serving cached posts", "error", err)
		return f.cacheFallback(postsDataPath, username)
	}
	if len(summaries) == 0 {
		return Result{
			Success:    true,
			Articles:   []domain.Post{},
			NoNewPosts: lastRunISO != "",
			Source:     SourceAPI,
		}
	}

	full, failed, err := f.client.FetchFullArticles(ctx, summaries)
	if err != nil {
		f.logger.Warn("full-article fetch failed, serving cached posts", "error", err)
		return f.cacheFallback(postsDataPath, username)
	}
	if len(full) == 0 {
		f.logger.Warn("no full articles fetched, serving cached posts", "summaries", len(summaries))
		return f.cacheFallback(postsDataPath, username)
	}
	if len(failed) > 0 {
		f.logger.Warn("some articles failed to fetch", "failed", len(failed), "fetched", len(full))
	}

	articles := make([]domain.Post, 0, len(full))
	for _, raw := range full {
		articles = append(articles, domain.PostFromAPI(raw, username))
	}

	return Result{Success: true, Articles: articles, Source: SourceAPI}
}

func (f *Fetcher) cacheFallback(postsDataPath, username string) Result {
	articles := loadCachedPosts(postsDataPath, username)
	f.logger.Info("cache fallback", "cached_articles", len(articles))
	return Result{Success: false, Articles: articles, Source: SourceCache}
}

func mockArticle(username string) domain.Post {
	link := fmt.Sprintf("https://dev.to/%s/sample-validation-post-1", username)
	now := time.Now().UTC().Format(time.RFC3339)
	return domain.Post{
		ID:          1,
		Title:       "Sample Validation Post",
		Link:        link,
		URL:         link,
		Slug:        "sample-validation-post-1",
		Description: "Synthetic article used to validate the rendering path.",
		Date:        now,
		PublishedAt: now,
		Tags:        []string{"validation"},
		User:        &domain.PostUser{Username: username},
		APIData: map[string]any{
			"id":           1,
			"url":          link,
			"published_at": now,
		},
	}
}
