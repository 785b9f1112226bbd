package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of the service. Values come from the defaults,
// then the optional YAML file, then the process environment.
type Config struct {
	Port              string        `yaml:"port"`
	ShutdownTimeoutMS int           `yaml:"shutdown_timeout_ms"`
	Prompt            PromptConfig  `yaml:"prompt"`
	Video             VideoConfig   `yaml:"video"`
	Refresh           RefreshConfig `yaml:"refresh"`
}

// PromptConfig points at an OpenAI-compatible chat completion service.
type PromptConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	Model             string  `yaml:"model"`
	DefaultPrompt     string  `yaml:"default_prompt"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type VideoConfig struct {
	BaseURL             string  `yaml:"base_url"`
	APIKey              string  `yaml:"api_key"`
	SeedImageURL        string  `yaml:"seed_image_url"`
	InterpolationPrompt string  `yaml:"interpolation_prompt"`
	RequestsPerSecond   float64 `yaml:"requests_per_second"`
}

type RefreshConfig struct {
	IntervalMS      int `yaml:"interval_ms"`
	PollIntervalMS  int `yaml:"poll_interval_ms"`
	PollMaxAttempts int `yaml:"poll_max_attempts"` // 0 polls until the job settles
	JobHistorySize  int `yaml:"job_history_size"`
}

func Default() *Config {
	return &Config{
		Port:              "3000",
		ShutdownTimeoutMS: 10000,
		Prompt: PromptConfig{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o-mini",
			DefaultPrompt:     "Ocean waves at sunset, soft light, slow camera drift",
			RequestsPerSecond: 1,
		},
		Video: VideoConfig{
			BaseURL:             "https://api.lumalabs.ai/dream-machine/v1",
			InterpolationPrompt: "A slow, seamless transition between the two scenes",
			RequestsPerSecond:   2,
		},
		Refresh: RefreshConfig{
			IntervalMS:     20000,
			PollIntervalMS: 5000,
			JobHistorySize: 100,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

func (r RefreshConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMS) * time.Millisecond
}

func (r RefreshConfig) PollInterval() time.Duration {
	return time.Duration(r.PollIntervalMS) * time.Millisecond
}

type lookupFunc func(key string) (string, bool)

// applyEnv overrides cfg with any variables that are set. The first name in
// each list wins over the aliases that follow it.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}
	integer := func(dst *int, key string) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q", key, v)
		}
		*dst = n
		return nil
	}
	float := func(dst *float64, key string) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q", key, v)
		}
		*dst = f
		return nil
	}

	str(&cfg.Port, "PORT")
	str(&cfg.Prompt.BaseURL, "PROMPT_API_BASE_URL")
	str(&cfg.Prompt.APIKey, "PROMPT_API_KEY", "OPENAI_API_KEY")
	str(&cfg.Prompt.Model, "PROMPT_MODEL")
	str(&cfg.Prompt.DefaultPrompt, "DEFAULT_PROMPT")
	str(&cfg.Video.BaseURL, "VIDEO_API_BASE_URL")
	str(&cfg.Video.APIKey, "VIDEO_API_KEY", "LUMAAI_API_KEY")
	str(&cfg.Video.SeedImageURL, "SEED_IMAGE_URL")
	str(&cfg.Video.InterpolationPrompt, "INTERPOLATION_PROMPT")

	for _, set := range []func() error{
		func() error { return integer(&cfg.ShutdownTimeoutMS, "SHUTDOWN_TIMEOUT_MS") },
		func() error { return integer(&cfg.Refresh.IntervalMS, "REFRESH_INTERVAL_MS") },
		func() error { return integer(&cfg.Refresh.PollIntervalMS, "POLL_INTERVAL_MS") },
		func() error { return integer(&cfg.Refresh.PollMaxAttempts, "POLL_MAX_ATTEMPTS") },
		func() error { return integer(&cfg.Refresh.JobHistorySize, "JOB_HISTORY_SIZE") },
		func() error { return float(&cfg.Prompt.RequestsPerSecond, "PROMPT_REQUESTS_PER_SECOND") },
		func() error { return float(&cfg.Video.RequestsPerSecond, "VIDEO_REQUESTS_PER_SECOND") },
	} {
		if err := set(); err != nil {
			return err
		}
	}
	return nil
}
