package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"devtomirror/internal/fetch"
	"devtomirror/internal/ports"
)

// PipelineDeps wires all driven adapters into the mirror pipeline.
type PipelineDeps struct {
	Fetcher       *fetch.Fetcher
	Renderer      ports.SiteRenderer
	Recorder      ports.RunRecorder
	Notifier      ports.Notifier
	Logger        *slog.Logger
	Username      string
	PostsDataPath string
	LastRunPath   string
}

// Pipeline implements the mirror workflow: fetch-and-reconcile, then hand
// the result to the renderer. Collaborators other than the fetcher are
// optional.
type Pipeline struct {
	fetcher       *fetch.Fetcher
	renderer      ports.SiteRenderer
	recorder      ports.RunRecorder
	notifier      ports.Notifier
	logger        *slog.Logger
	username      string
	postsDataPath string
	lastRunPath   string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher:       deps.Fetcher,
		renderer:      deps.Renderer,
		recorder:      deps.Recorder,
		notifier:      deps.Notifier,
		logger:        logger,
		username:      deps.Username,
		postsDataPath: deps.PostsDataPath,
		lastRunPath:   deps.LastRunPath,
	}
}

// Run executes one mirror pass.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	if p.fetcher == nil {
		return nil
	}

	lastRun := p.readLastRun()
	started := now.UTC()

	result := p.fetcher.FetchAll(ctx, p.username, lastRun, p.postsDataPath)
	p.logger.Info("fetch finished",
		"source", string(result.Source),
		"success", result.Success,
		"articles", len(result.Articles),
		"no_new_posts", result.NoNewPosts)

	p.recordRun(ctx, result, started)

	if result.NoNewPosts {
		p.logger.Info("no new posts since last run, skipping render", "last_run", lastRun)
		return nil
	}

	if p.renderer != nil {
		if err := p.renderer.Render(ctx, result); err != nil {
			return fmt.Errorf("render site: %w", err)
		}
	}

	if result.Success {
		p.writeLastRun(started)
	} else {
		p.alertDegraded(ctx, result)
	}

	return nil
}

func (p *Pipeline) recordRun(ctx context.Context, result fetch.Result, started time.Time) {
	if p.recorder == nil {
		return
	}

	run := ports.FetchRun{
		Username:     p.username,
		Source:       string(result.Source),
		Success:      result.Success,
		NoNewPosts:   result.NoNewPosts,
		ArticleCount: len(result.Articles),
		StartedAt:    started,
		FinishedAt:   time.Now().UTC(),
	}
	if err := p.recorder.RecordRun(ctx, run); err != nil {
		p.logger.Warn("recording fetch run failed", "error", err)
	}
}

func (p *Pipeline) alertDegraded(ctx context.Context, result fetch.Result) {
	if p.notifier == nil {
		return
	}

	message := fmt.Sprintf("devtomirror: live fetch for %s failed, served %d cached articles",
		p.username, len(result.Articles))
	if err := p.notifier.PublishAlert(ctx, message); err != nil {
		p.logger.Warn("degraded-run alert failed", "error", err)
	}
}

func (p *Pipeline) readLastRun() string {
	if p.lastRunPath == "" {
		return ""
	}
	raw, err := os.ReadFile(p.lastRunPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (p *Pipeline) writeLastRun(t time.Time) {
	if p.lastRunPath == "" {
		return
	}
	if err := os.WriteFile(p.lastRunPath, []byte(t.Format(time.RFC3339)+"\n"), 0o644); err != nil {
		p.logger.Warn("writing last-run marker failed", "error", err)
	}
}
