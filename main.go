package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ambient-bg/config"
	"ambient-bg/gateway"
	"ambient-bg/handler"
	"ambient-bg/store"
	"ambient-bg/worker"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:           "ambientd",
		Short:         "Serve an ever-evolving AI generated background video",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				slog.Error("failed to load config", "error", err)
				return err
			}
			setupLogger(debug)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to an optional YAML configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()

	states := store.NewStateStore()
	jobs := store.NewJobStore(cfg.Refresh.JobHistorySize)

	gw := gateway.New(
		gateway.NewPromptClient(gateway.PromptClientConfig{
			BaseURL:           cfg.Prompt.BaseURL,
			APIKey:            cfg.Prompt.APIKey,
			Model:             cfg.Prompt.Model,
			RequestsPerSecond: cfg.Prompt.RequestsPerSecond,
			Logger:            logger.With("component", "prompt"),
		}),
		gateway.NewVideoClient(gateway.VideoClientConfig{
			BaseURL:           cfg.Video.BaseURL,
			APIKey:            cfg.Video.APIKey,
			RequestsPerSecond: cfg.Video.RequestsPerSecond,
		}),
	)

	poller := worker.NewPoller(gw, jobs, worker.PollerConfig{
		Interval:    cfg.Refresh.PollInterval(),
		MaxAttempts: cfg.Refresh.PollMaxAttempts,
	}, logger.With("component", "poller"))

	engine := worker.NewEngine(gw, poller, states, worker.EngineConfig{
		DefaultPrompt:       cfg.Prompt.DefaultPrompt,
		SeedImageURL:        cfg.Video.SeedImageURL,
		InterpolationPrompt: cfg.Video.InterpolationPrompt,
	}, logger.With("component", "engine"))

	scheduler := worker.NewScheduler(engine, cfg.Refresh.Interval(), logger.With("component", "scheduler"))

	router := gin.Default()
	handler.NewBackgroundHandler(states, jobs, scheduler).Register(router)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Run(ctx)
	})

	g.Go(func() error {
		logger.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		return err
	}

	logger.Info("server exited properly")
	return nil
}
