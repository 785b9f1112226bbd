package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ambient-bg/gateway"
	"ambient-bg/model"
	"ambient-bg/store"
)

const DefaultPollInterval = 5 * time.Second

var ErrPollExhausted = errors.New("generation did not complete within the attempt limit")

type StatusFetcher interface {
	FetchStatus(ctx context.Context, jobID string) (model.GenerationJob, error)
}

type PollerConfig struct {
	Interval time.Duration
	// MaxAttempts caps the number of status fetches. Zero waits forever.
	MaxAttempts int
}

// Poller waits for generation jobs to settle, recording every status it
// observes into the job registry.
type Poller struct {
	fetcher     StatusFetcher
	jobs        *store.JobStore
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger

	// sleep pauses between attempts; it returns early when ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoller(fetcher StatusFetcher, jobs *store.JobStore, cfg PollerConfig, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher:     fetcher,
		jobs:        jobs,
		interval:    cfg.Interval,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// AwaitCompletion fetches the job status until it is completed. The first
// fetch is immediate. A failed job ends the wait with
// *gateway.RemoteFailureError; a fetch error ends it with that error.
func (p *Poller) AwaitCompletion(ctx context.Context, jobID string) (model.GenerationJob, error) {
	for attempt := 1; ; attempt++ {
		job, err := p.fetcher.FetchStatus(ctx, jobID)
		if err != nil {
			return model.GenerationJob{}, fmt.Errorf("poll generation %s: %w", jobID, err)
		}
		if p.jobs != nil {
			p.jobs.Record(job)
		}

		switch job.Status {
		case model.StatusCompleted:
			p.logger.Debug("generation completed", "job_id", jobID, "attempts", attempt)
			return job, nil
		case model.StatusFailed:
			return model.GenerationJob{}, &gateway.RemoteFailureError{JobID: jobID, Reason: job.FailureReason}
		}

		if p.maxAttempts > 0 && attempt >= p.maxAttempts {
			return model.GenerationJob{}, fmt.Errorf("poll generation %s after %d attempts: %w", jobID, attempt, ErrPollExhausted)
		}

		p.logger.Debug("generation not ready", "job_id", jobID, "status", job.Status, "attempt", attempt)
		if err := p.sleep(ctx, p.interval); err != nil {
			return model.GenerationJob{}, fmt.Errorf("poll generation %s: %w", jobID, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
