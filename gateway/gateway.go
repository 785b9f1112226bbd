// Package gateway wraps the remote prompt and video generation services.
package gateway

// Gateway bundles the prompt and video clients behind one value so the
// refresh engine has a single collaborator for every remote call.
type Gateway struct {
	*PromptClient
	*VideoClient
}

func New(prompts *PromptClient, videos *VideoClient) *Gateway {
	return &Gateway{PromptClient: prompts, VideoClient: videos}
}
