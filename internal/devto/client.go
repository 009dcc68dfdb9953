package devto

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

const (
	defaultBaseURL    = "https://dev.to/api"
	defaultPerPage    = 50
	defaultMaxPages   = 20
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second

	// Fixed delay between consecutive full-article fetches so a batch
	// never hammers the remote API.
	politenessDelay = 800 * time.Millisecond
)

var errNoAttempts = errors.New("no attempts allowed")

// Config tunes the fetch client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	PerPage    int
	MaxPages   int
	MaxRetries int
	RetryDelay time.Duration
}

// Summary is one entry of the paginated article listing. Raw keeps the
// verbatim listing payload for reconciliation.
type Summary struct {
	ID    int
	Title string
	Raw   map[string]any
}

// Client fetches article listings and full article bodies from the remote
// API. All calls are sequential and blocking.
type Client struct {
	baseURL    string
	perPage    int
	maxPages   int
	maxRetries int
	retryDelay time.Duration
	newSession SessionFactory
	sleep      func(time.Duration)
	logger     *slog.Logger
}

// NewClient wires a fetch client; zero config fields fall back to defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	apiKey := cfg.APIKey
	timeout := cfg.Timeout
	return &Client{
		baseURL:    cfg.BaseURL,
		perPage:    cfg.PerPage,
		maxPages:   cfg.MaxPages,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		newSession: func() (Session, error) { return NewHTTPSession(timeout, apiKey), nil },
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// ListArticles pages through the user's article listing until an empty page
// or the page cap. Page fetches use the same retry policy as full-article
// fetches.
func (c *Client) ListArticles(ctx context.Context, username string) ([]Summary, error) {
	session, err := c.newSession()
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	var summaries []Summary
	for page := 1; page <= c.maxPages; page++ {
		pageURL := fmt.Sprintf("%s/articles?username=%s&page=%d&per_page=%d",
			c.baseURL, url.QueryEscape(username), page, c.perPage)

		var payload []map[string]any
		if err := c.getJSONRetry(ctx, session, pageURL, &payload); err != nil {
			return nil, fmt.Errorf("list articles page %d: %w", page, err)
		}
		if len(payload) == 0 {
			break
		}

		for _, item := range payload {
			summary := summaryFromMap(item)
			if summary.ID <= 0 {
				c.logger.Debug("skipping listing entry without id", "title", summary.Title)
				continue
			}
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

// FetchFullArticle requests one article's full body by id. A failed fetch
// reports ok=false; it never returns an error to the caller.
func (c *Client) FetchFullArticle(ctx context.Context, session Session, articleID int) (map[string]any, bool) {
	articleURL := fmt.Sprintf("%s/articles/%d", c.baseURL, articleID)

	var payload map[string]any
	if err := c.getJSONRetry(ctx, session, articleURL, &payload); err != nil {
		c.logger.Warn("full article fetch failed", "article_id", articleID, "error", err)
		return nil, false
	}

	return payload, true
}

// FetchFullArticles fetches each summary's full body sequentially over a
// single session. Individual failures land in the second return value; the
// error covers batch-level faults only.
func (c *Client) FetchFullArticles(ctx context.Context, summaries []Summary) ([]map[string]any, []Summary, error) {
	session, err := c.newSession()
	if err != nil {
		return nil, nil, fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	var (
		full   []map[string]any
		failed []Summary
	)
	for i, summary := range summaries {
		if i > 0 {
			c.sleep(politenessDelay)
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("fetch batch aborted: %w", err)
		}

		article, ok := c.FetchFullArticle(ctx, session, summary.ID)
		if !ok {
			failed = append(failed, summary)
			continue
		}
		full = append(full, article)
	}

	return full, failed, nil
}

// getJSONRetry runs one JSON GET with bounded retry. Only transient
// failures retry, sleeping retryDelay * 2^(attempt-1) before each retry;
// anything else ends the call after its first attempt. A non-positive retry
// budget means no network call at all.
func (c *Client) getJSONRetry(ctx context.Context, session Session, requestURL string, v any) error {
	if c.maxRetries <= 0 {
		return errNoAttempts
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.sleep(c.retryDelay * (1 << (attempt - 1)))
		}

		err := session.GetJSON(ctx, requestURL, v)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsTransient(err) {
			return err
		}
		c.logger.Debug("transient fetch failure", "url", requestURL, "attempt", attempt+1, "error", err)
	}

	return lastErr
}

func summaryFromMap(m map[string]any) Summary {
	s := Summary{Raw: m}
	switch id := m["id"].(type) {
	case float64:
		s.ID = int(id)
	case int:
		s.ID = id
	}
	if title, ok := m["title"].(string); ok {
		s.Title = title
	}
	return s
}
