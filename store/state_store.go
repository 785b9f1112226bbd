package store

import (
	"errors"
	"sync/atomic"

	"ambient-bg/model"
)

var ErrNotReady = errors.New("background not ready")

// StateStore publishes the current BackgroundState. Commit swaps a single
// pointer, so readers see either the previous or the new state in full.
type StateStore struct {
	current atomic.Pointer[model.BackgroundState]
}

func NewStateStore() *StateStore {
	return &StateStore{}
}

func (s *StateStore) Commit(state model.BackgroundState) {
	s.current.Store(&state)
}

// Current returns ErrNotReady until the first Commit.
func (s *StateStore) Current() (model.BackgroundState, error) {
	state := s.current.Load()
	if state == nil {
		return model.BackgroundState{}, ErrNotReady
	}
	return *state, nil
}
