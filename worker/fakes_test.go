package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"ambient-bg/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completed(id, url string) model.GenerationJob {
	return model.GenerationJob{ID: id, Status: model.StatusCompleted, ResultURL: url}
}

func processing(id string) model.GenerationJob {
	return model.GenerationJob{ID: id, Status: model.StatusProcessing}
}

// fakeGateway hands out generation ids in order and replays a scripted
// status sequence per job; the last status repeats once the script runs out.
type fakeGateway struct {
	mu sync.Mutex

	ids      []string
	interpID string
	evolve   func(string) string
	statuses map[string][]model.GenerationJob

	submitErr error
	interpErr error

	prompts        []string
	submitPrompts  []string
	interpCalls    [][2]string
	interpPrompts  []string
	fetches        map[string]int
	interpEntered  chan struct{}
	interpReleased chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		statuses: make(map[string][]model.GenerationJob),
		fetches:  make(map[string]int),
	}
}

func (g *fakeGateway) GeneratePrompt(ctx context.Context, base string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, base)
	if g.evolve != nil {
		return g.evolve(base)
	}
	return base
}

func (g *fakeGateway) SubmitGeneration(ctx context.Context, prompt, seedImageURL string) (model.GenerationJob, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitErr != nil {
		return model.GenerationJob{}, g.submitErr
	}
	if len(g.ids) == 0 {
		return model.GenerationJob{}, fmt.Errorf("no generation ids left")
	}
	id := g.ids[0]
	g.ids = g.ids[1:]
	g.submitPrompts = append(g.submitPrompts, prompt)
	return model.GenerationJob{ID: id, Status: model.StatusPending}, nil
}

func (g *fakeGateway) SubmitInterpolation(ctx context.Context, fromID, toID, prompt string) (model.GenerationJob, error) {
	g.mu.Lock()
	g.interpCalls = append(g.interpCalls, [2]string{fromID, toID})
	g.interpPrompts = append(g.interpPrompts, prompt)
	entered, released := g.interpEntered, g.interpReleased
	err, id := g.interpErr, g.interpID
	g.mu.Unlock()

	if entered != nil {
		close(entered)
		<-released
	}
	if err != nil {
		return model.GenerationJob{}, err
	}
	return model.GenerationJob{ID: id, Status: model.StatusPending}, nil
}

func (g *fakeGateway) FetchStatus(ctx context.Context, jobID string) (model.GenerationJob, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	seq, ok := g.statuses[jobID]
	if !ok || len(seq) == 0 {
		return model.GenerationJob{}, fmt.Errorf("unknown generation %s", jobID)
	}
	n := g.fetches[jobID]
	g.fetches[jobID] = n + 1
	if n >= len(seq) {
		return seq[len(seq)-1], nil
	}
	return seq[n], nil
}

func (g *fakeGateway) fetchCount(jobID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetches[jobID]
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
