package config

import (
	"fmt"
	"net/url"
	"strconv"
)

// Validate rejects unusable settings and fills zero values with defaults.
func Validate(cfg *Config) error {
	defaults := Default()

	if cfg.Port == "" {
		cfg.Port = defaults.Port
	}
	if p, err := strconv.Atoi(cfg.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535, got %q", cfg.Port)
	}

	if err := requireURL("prompt.base_url", cfg.Prompt.BaseURL); err != nil {
		return err
	}
	if err := requireURL("video.base_url", cfg.Video.BaseURL); err != nil {
		return err
	}
	if err := requireURL("video.seed_image_url", cfg.Video.SeedImageURL); err != nil {
		return err
	}
	if cfg.Prompt.APIKey == "" {
		return fmt.Errorf("prompt.api_key is required")
	}
	if cfg.Video.APIKey == "" {
		return fmt.Errorf("video.api_key is required")
	}

	if cfg.Prompt.Model == "" {
		cfg.Prompt.Model = defaults.Prompt.Model
	}
	if cfg.Prompt.DefaultPrompt == "" {
		cfg.Prompt.DefaultPrompt = defaults.Prompt.DefaultPrompt
	}
	if cfg.Video.InterpolationPrompt == "" {
		cfg.Video.InterpolationPrompt = defaults.Video.InterpolationPrompt
	}

	if cfg.Refresh.IntervalMS <= 0 {
		return fmt.Errorf("refresh.interval_ms must be > 0")
	}
	if cfg.Refresh.PollIntervalMS <= 0 {
		return fmt.Errorf("refresh.poll_interval_ms must be > 0")
	}
	if cfg.Refresh.PollMaxAttempts < 0 {
		return fmt.Errorf("refresh.poll_max_attempts must be >= 0")
	}
	if cfg.Refresh.JobHistorySize <= 0 {
		cfg.Refresh.JobHistorySize = defaults.Refresh.JobHistorySize
	}
	if cfg.ShutdownTimeoutMS <= 0 {
		cfg.ShutdownTimeoutMS = defaults.ShutdownTimeoutMS
	}

	return nil
}

func requireURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}
