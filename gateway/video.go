package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"ambient-bg/model"
)

type VideoClientConfig struct {
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// VideoClient talks to a keyframe-driven video generation service.
type VideoClient struct {
	api apiClient
}

func NewVideoClient(cfg VideoClientConfig) *VideoClient {
	return &VideoClient{
		api: newAPIClient(cfg.BaseURL, cfg.APIKey, cfg.RequestsPerSecond, cfg.HTTPClient),
	}
}

// keyframe is either a still image (Type "image", URL set) or a reference to
// a prior generation (Type "generation", ID set).
type keyframe struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
	ID   string `json:"id,omitempty"`
}

type generationRequest struct {
	Prompt    string              `json:"prompt"`
	Keyframes map[string]keyframe `json:"keyframes"`
}

type generationResponse struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	FailureReason string `json:"failure_reason"`
	Assets        struct {
		Video string `json:"video"`
	} `json:"assets"`
}

// SubmitGeneration starts a generation seeded from a still image.
func (c *VideoClient) SubmitGeneration(ctx context.Context, prompt, seedImageURL string) (model.GenerationJob, error) {
	req := generationRequest{
		Prompt: prompt,
		Keyframes: map[string]keyframe{
			"frame0": {Type: "image", URL: seedImageURL},
		},
	}
	return c.create(ctx, "submit generation", req)
}

// SubmitInterpolation starts a generation that transitions from the result of
// job fromID to the result of job toID.
func (c *VideoClient) SubmitInterpolation(ctx context.Context, fromID, toID, prompt string) (model.GenerationJob, error) {
	req := generationRequest{
		Prompt: prompt,
		Keyframes: map[string]keyframe{
			"frame0": {Type: "generation", ID: fromID},
			"frame1": {Type: "generation", ID: toID},
		},
	}
	return c.create(ctx, "submit interpolation", req)
}

func (c *VideoClient) FetchStatus(ctx context.Context, jobID string) (model.GenerationJob, error) {
	const op = "fetch status"

	var resp generationResponse
	if err := c.api.do(ctx, op, http.MethodGet, "/generations/"+url.PathEscape(jobID), nil, &resp); err != nil {
		return model.GenerationJob{}, err
	}
	if resp.State == "" {
		return model.GenerationJob{}, &MalformedResponseError{Op: op, Reason: "missing generation state"}
	}

	job := toJob(resp)
	if job.ID == "" {
		job.ID = jobID
	}
	if job.Status == model.StatusCompleted && job.ResultURL == "" {
		return model.GenerationJob{}, &MalformedResponseError{Op: op, Reason: "completed generation has no video asset"}
	}
	return job, nil
}

func (c *VideoClient) create(ctx context.Context, op string, req generationRequest) (model.GenerationJob, error) {
	var resp generationResponse
	if err := c.api.do(ctx, op, http.MethodPost, "/generations", req, &resp); err != nil {
		return model.GenerationJob{}, err
	}
	if resp.ID == "" {
		return model.GenerationJob{}, &MalformedResponseError{Op: op, Reason: "missing generation id"}
	}
	// A freshly created generation may omit its state.
	if resp.State == "" {
		resp.State = "queued"
	}
	return toJob(resp), nil
}

func toJob(resp generationResponse) model.GenerationJob {
	return model.GenerationJob{
		ID:            resp.ID,
		Status:        mapState(resp.State),
		ResultURL:     resp.Assets.Video,
		FailureReason: resp.FailureReason,
		UpdatedAt:     time.Now(),
	}
}

// mapState folds the remote state names into JobStatus. Unknown states are
// treated as still processing.
func mapState(state string) model.JobStatus {
	switch state {
	case "queued", "pending":
		return model.StatusPending
	case "completed":
		return model.StatusCompleted
	case "failed":
		return model.StatusFailed
	default:
		return model.StatusProcessing
	}
}
