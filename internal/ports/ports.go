package ports

import (
	"context"
	"time"

	"devtomirror/internal/fetch"
)

// SiteRenderer consumes a fetch result and produces the static site,
// including writing back the cache snapshot.
type SiteRenderer interface {
	Render(ctx context.Context, result fetch.Result) error
}

// RunRecorder persists fetch-run outcomes for audit/history.
type RunRecorder interface {
	RecordRun(ctx context.Context, run FetchRun) error
}

// FetchRun is one audited pipeline execution.
type FetchRun struct {
	Username     string
	Source       string
	Success      bool
	NoNewPosts   bool
	ArticleCount int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Notifier pushes operational alerts to an external channel.
type Notifier interface {
	PublishAlert(ctx context.Context, message string) error
}

// Scheduler controls when the mirror pipeline executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
