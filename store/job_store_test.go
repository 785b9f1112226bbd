package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ambient-bg/model"
)

func TestJobStore_RecordAndGet(t *testing.T) {
	store := NewJobStore(10)

	store.Record(model.GenerationJob{ID: "test-id", Status: model.StatusPending})

	result, err := store.Get("test-id")
	if err != nil {
		t.Fatalf("expected job, got error %v", err)
	}
	if result.ID != "test-id" {
		t.Fatalf("expected id test-id, got %s", result.ID)
	}
	if result.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be stamped")
	}
}

func TestJobStore_RecordReplacesStatus(t *testing.T) {
	store := NewJobStore(10)

	store.Record(model.GenerationJob{ID: "test-id", Status: model.StatusPending})
	store.Record(model.GenerationJob{ID: "test-id", Status: model.StatusCompleted, ResultURL: "http://x/a.mp4"})

	job, err := store.Get("test-id")
	if err != nil {
		t.Fatalf("expected job, got error %v", err)
	}
	if job.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if len(store.GetAll()) != 1 {
		t.Fatalf("expected a single entry, got %d", len(store.GetAll()))
	}
}

func TestJobStore_GetNotFound(t *testing.T) {
	store := NewJobStore(10)

	_, err := store.Get("invalid-id")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestJobStore_GetAllNewestFirst(t *testing.T) {
	store := NewJobStore(10)

	for _, id := range []string{"a", "b", "c"} {
		store.Record(model.GenerationJob{ID: id, Status: model.StatusPending})
	}

	all := store.GetAll()
	want := []string{"c", "b", "a"}
	if len(all) != len(want) {
		t.Fatalf("expected %d jobs, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}
}

func TestJobStore_EvictsOldest(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		records  int
		wantLen  int
		evicted  string
	}{
		{name: "under capacity", capacity: 5, records: 3, wantLen: 3},
		{name: "at capacity", capacity: 3, records: 3, wantLen: 3},
		{name: "over capacity", capacity: 3, records: 5, wantLen: 3, evicted: "job-1"},
		{name: "default capacity", capacity: 0, records: defaultJobCapacity + 1, wantLen: defaultJobCapacity, evicted: "job-0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewJobStore(tt.capacity)
			for i := 0; i < tt.records; i++ {
				store.Record(model.GenerationJob{ID: fmt.Sprintf("job-%d", i), Status: model.StatusPending})
			}

			if got := len(store.GetAll()); got != tt.wantLen {
				t.Fatalf("expected %d jobs, got %d", tt.wantLen, got)
			}
			if tt.evicted != "" {
				if _, err := store.Get(tt.evicted); !errors.Is(err, ErrJobNotFound) {
					t.Fatalf("expected %s to be evicted, got %v", tt.evicted, err)
				}
			}
		})
	}
}

func TestJobStore_ConcurrentRecordAndRead(t *testing.T) {
	s := NewJobStore(1000)
	const numJobs = 200

	var wg sync.WaitGroup
	wg.Add(numJobs)
	for i := 0; i < numJobs; i++ {
		go func(i int) {
			defer wg.Done()
			s.Record(model.GenerationJob{
				ID:        fmt.Sprintf("job-%d", i),
				Status:    model.StatusProcessing,
				UpdatedAt: time.Now(),
			})
		}(i)
	}

	var rwg sync.WaitGroup
	rwg.Add(1)
	go func() {
		defer rwg.Done()
		for i := 0; i < 100; i++ {
			for _, job := range s.GetAll() {
				if _, err := s.Get(job.ID); err != nil {
					t.Errorf("expected job to exist: %v", err)
					return
				}
			}
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()
	rwg.Wait()

	if got := len(s.GetAll()); got != numJobs {
		t.Fatalf("expected %d jobs, got %d", numJobs, got)
	}
}
