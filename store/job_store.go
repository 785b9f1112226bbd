package store

import (
	"errors"
	"sync"
	"time"

	"ambient-bg/model"
)

var ErrJobNotFound = errors.New("job not found")

const defaultJobCapacity = 100

// JobStore remembers the most recent generation jobs observed by the poller.
// Once capacity is reached the oldest job is evicted.
type JobStore struct {
	mu       sync.RWMutex
	jobs     map[string]model.GenerationJob
	order    []string
	capacity int
}

func NewJobStore(capacity int) *JobStore {
	if capacity <= 0 {
		capacity = defaultJobCapacity
	}
	return &JobStore{
		jobs:     make(map[string]model.GenerationJob),
		capacity: capacity,
	}
}

// Record inserts or replaces the job with the same ID.
func (s *JobStore) Record(job model.GenerationJob) {
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; !exists {
		s.order = append(s.order, job.ID)
		for len(s.order) > s.capacity {
			delete(s.jobs, s.order[0])
			s.order = s.order[1:]
		}
	}
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) (model.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return model.GenerationJob{}, ErrJobNotFound
	}
	return job, nil
}

// GetAll returns the known jobs, most recently submitted first.
func (s *JobStore) GetAll() []model.GenerationJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]model.GenerationJob, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		jobs = append(jobs, s.jobs[s.order[i]])
	}
	return jobs
}
