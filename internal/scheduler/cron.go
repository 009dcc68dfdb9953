package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"devtomirror/internal/ports"
)

// CronScheduler drives recurring mirror runs from a cron expression.
type CronScheduler struct {
	spec string
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for the given cron expression,
// evaluated in the provided location.
func NewCronScheduler(spec string, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{
		spec: spec,
		cron: cron.New(cron.WithLocation(loc)),
	}
}

// Start registers the job and begins the cron loop.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.spec, func() { job(time.Now()) }); err != nil {
		return fmt.Errorf("register cron job %q: %w", c.spec, err)
	}

	c.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running job, bounded by ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	stopCtx := c.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	return nil
}
