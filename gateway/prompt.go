package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

const promptInstructions = "You write prompts for a text-to-video model that renders a calm, looping ambient background. " +
	"Given the current scene description, reply with a single new description that evolves it slightly: " +
	"keep the mood, shift one or two visual elements, and use no more than 40 words. Reply with the description only."

type PromptClientConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// PromptClient talks to an OpenAI-compatible chat completion endpoint.
type PromptClient struct {
	api    apiClient
	model  string
	logger *slog.Logger
}

func NewPromptClient(cfg PromptClientConfig) *PromptClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptClient{
		api:    newAPIClient(cfg.BaseURL, cfg.APIKey, cfg.RequestsPerSecond, cfg.HTTPClient),
		model:  cfg.Model,
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GeneratePrompt asks the model to evolve base into a new scene description.
// Any failure is logged and base is returned unchanged.
func (c *PromptClient) GeneratePrompt(ctx context.Context, base string) string {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: promptInstructions},
			{Role: "user", Content: base},
		},
		MaxTokens: 120,
	}

	var resp chatResponse
	if err := c.api.do(ctx, "generate prompt", http.MethodPost, "/chat/completions", req, &resp); err != nil {
		c.logger.Warn("prompt generation failed, keeping previous prompt", "error", err)
		return base
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("prompt generation returned no choices, keeping previous prompt")
		return base
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		c.logger.Warn("prompt generation returned empty text, keeping previous prompt")
		return base
	}
	return text
}
