// Package memory provides the in-memory job registry used by a single crawl
// run. The registry is the only structure touched by multiple jobs
// concurrently; one mutex guards insert and lookup.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/chenmingwei23/smart-dine/internal/crawler"
)

// ErrJobNotFound is returned for lookups of unregistered job IDs.
var ErrJobNotFound = errors.New("job not found")

// JobStore implements crawler.JobStore with a mutex-guarded map.
type JobStore struct {
	mu    sync.RWMutex
	jobs  map[string]crawler.JobRecord
	order []string
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]crawler.JobRecord),
	}
}

// Register stores a new job record.
func (s *JobStore) Register(_ context.Context, rec crawler.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[rec.ID]; exists {
		return errors.New("job already registered")
	}
	s.jobs[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return nil
}

// UpdateStatus updates the status and error text for a job.
func (s *JobStore) UpdateStatus(_ context.Context, jobID string, status crawler.JobStatus, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	rec.Status = status
	rec.ErrorText = errText
	s.jobs[jobID] = rec
	return nil
}

// Get fetches a job record by ID.
func (s *JobStore) Get(_ context.Context, jobID string) (crawler.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.jobs[jobID]
	if !ok {
		return crawler.JobRecord{}, ErrJobNotFound
	}
	return rec, nil
}

// List returns all records in registration order.
func (s *JobStore) List(_ context.Context) ([]crawler.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crawler.JobRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.jobs[id])
	}
	return out, nil
}
