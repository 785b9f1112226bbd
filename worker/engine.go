package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ambient-bg/model"
	"ambient-bg/store"
)

var ErrCycleInProgress = errors.New("refresh cycle already in progress")

// Gateway is the set of remote calls the engine sequences.
type Gateway interface {
	StatusFetcher
	GeneratePrompt(ctx context.Context, base string) string
	SubmitGeneration(ctx context.Context, prompt, seedImageURL string) (model.GenerationJob, error)
	SubmitInterpolation(ctx context.Context, fromID, toID, prompt string) (model.GenerationJob, error)
}

type EngineConfig struct {
	DefaultPrompt       string
	SeedImageURL        string
	InterpolationPrompt string
}

// Engine produces new background videos and publishes them to the state
// store. Initialize and RefreshCycle never run at the same time; a call made
// while another is in flight returns ErrCycleInProgress.
type Engine struct {
	gateway Gateway
	poller  *Poller
	state   *store.StateStore
	cfg     EngineConfig
	logger  *slog.Logger

	busy atomic.Bool
}

func NewEngine(gw Gateway, poller *Poller, state *store.StateStore, cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		gateway: gw,
		poller:  poller,
		state:   state,
		cfg:     cfg,
		logger:  logger,
	}
}

// Initialize generates the first background from the default prompt and the
// seed image. On failure the published state is left as it was.
func (e *Engine) Initialize(ctx context.Context) error {
	return e.exclusive(ctx, "initialize", e.initialize)
}

// RefreshCycle generates a new video from an evolved prompt, then publishes
// an interpolation from the current video to it. On failure the current
// video stays published. Before the first successful initialization it runs
// the initialize sequence instead.
func (e *Engine) RefreshCycle(ctx context.Context) error {
	return e.exclusive(ctx, "refresh", func(ctx context.Context, logger *slog.Logger) error {
		prev, err := e.state.Current()
		if errors.Is(err, store.ErrNotReady) {
			logger.Warn("no background published yet, initializing instead")
			return e.initialize(ctx, logger)
		}
		return e.refresh(ctx, logger, prev)
	})
}

// Busy reports whether a procedure is currently running.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

func (e *Engine) exclusive(ctx context.Context, procedure string, fn func(context.Context, *slog.Logger) error) error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrCycleInProgress
	}
	defer e.busy.Store(false)

	logger := e.logger.With("cycle_id", uuid.NewString(), "procedure", procedure)
	start := time.Now()
	logger.Info("cycle started")

	if err := fn(ctx, logger); err != nil {
		logger.Error("cycle abandoned, published background unchanged", "error", err, "elapsed", time.Since(start))
		return err
	}
	logger.Info("cycle finished", "elapsed", time.Since(start))
	return nil
}

func (e *Engine) initialize(ctx context.Context, logger *slog.Logger) error {
	prompt := e.gateway.GeneratePrompt(ctx, e.cfg.DefaultPrompt)

	job, err := e.gateway.SubmitGeneration(ctx, prompt, e.cfg.SeedImageURL)
	if err != nil {
		return fmt.Errorf("submit generation: %w", err)
	}
	logger.Info("generation submitted", "job_id", job.ID, "prompt", prompt)

	result, err := e.poller.AwaitCompletion(ctx, job.ID)
	if err != nil {
		return err
	}

	e.commit(logger, model.BackgroundState{
		ActiveVideoID:  job.ID,
		ActiveVideoURL: result.ResultURL,
		ActivePrompt:   prompt,
	})
	return nil
}

// refresh interpolates from prev, the state published before the cycle
// started, so consecutive backgrounds join up.
func (e *Engine) refresh(ctx context.Context, logger *slog.Logger, prev model.BackgroundState) error {
	prompt := e.gateway.GeneratePrompt(ctx, prev.ActivePrompt)

	job, err := e.gateway.SubmitGeneration(ctx, prompt, e.cfg.SeedImageURL)
	if err != nil {
		return fmt.Errorf("submit generation: %w", err)
	}
	logger.Info("generation submitted", "job_id", job.ID, "prompt", prompt)

	if _, err := e.poller.AwaitCompletion(ctx, job.ID); err != nil {
		return err
	}

	interp, err := e.gateway.SubmitInterpolation(ctx, prev.ActiveVideoID, job.ID, e.cfg.InterpolationPrompt)
	if err != nil {
		return fmt.Errorf("submit interpolation %s -> %s: %w", prev.ActiveVideoID, job.ID, err)
	}
	logger.Info("interpolation submitted", "job_id", interp.ID, "from", prev.ActiveVideoID, "to", job.ID)

	result, err := e.poller.AwaitCompletion(ctx, interp.ID)
	if err != nil {
		return err
	}

	e.commit(logger, model.BackgroundState{
		ActiveVideoID:  interp.ID,
		ActiveVideoURL: result.ResultURL,
		ActivePrompt:   prompt,
	})
	return nil
}

func (e *Engine) commit(logger *slog.Logger, state model.BackgroundState) {
	state.CommittedAt = time.Now()
	e.state.Commit(state)
	logger.Info("background published", "video_id", state.ActiveVideoID, "video_url", state.ActiveVideoURL)
}
