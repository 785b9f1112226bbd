package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const DefaultRefreshInterval = 20 * time.Second

// Cycler is the work the scheduler triggers.
type Cycler interface {
	Initialize(ctx context.Context) error
	RefreshCycle(ctx context.Context) error
}

type Stats struct {
	Completed int64  `json:"completed"`
	Failed    int64  `json:"failed"`
	Skipped   int64  `json:"skipped"`
	LastError string `json:"last_error,omitempty"`
}

// Scheduler runs Initialize once and then RefreshCycle on every tick. Each
// run happens on its own goroutine so the ticker keeps firing; a tick that
// lands while a cycle is still running is dropped and counted as skipped.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup

	mu    sync.Mutex
	stats Stats
}

func NewScheduler(cycler Cycler, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cycler:   cycler,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled and every in-flight cycle has returned.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "refresh_interval", s.interval)

	s.dispatch(ctx, "initialize", s.cycler.Initialize)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping, waiting for in-flight cycle")
			s.wg.Wait()
			return nil
		case <-ticker.C:
			s.dispatch(ctx, "refresh", s.cycler.RefreshCycle)
		}
	}
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Scheduler) dispatch(ctx context.Context, name string, run func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		err := run(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()

		switch {
		case err == nil:
			s.stats.Completed++
		case errors.Is(err, ErrCycleInProgress):
			s.stats.Skipped++
			s.logger.Warn("tick skipped, previous cycle still running", "procedure", name)
		case ctx.Err() != nil:
			s.logger.Info("cycle interrupted by shutdown", "procedure", name)
		default:
			s.stats.Failed++
			s.stats.LastError = err.Error()
		}
	}()
}
