package model

import "time"

// BackgroundState is the video currently served to the front end.
// It is replaced wholesale, never edited in place.
type BackgroundState struct {
	ActiveVideoID  string    `json:"active_video_id"`
	ActiveVideoURL string    `json:"active_video_url"`
	ActivePrompt   string    `json:"active_prompt"`
	CommittedAt    time.Time `json:"committed_at"`
}
