package repository

import (
	"context"
	"sync"

	"github.com/timmy/sitegen/internal/domain"
)

// MemoryJobStore keeps job records in an in-process map.
// Records are never evicted; they live as long as the process.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

// NewMemoryJobStore creates an empty in-memory store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*domain.Job)}
}

// Create inserts a new job record.
func (s *MemoryJobStore) Create(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return domain.ErrJobExists
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get retrieves a job record by id.
func (s *MemoryJobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job.Clone(), nil
}

// Update applies fn to a copy of the record and stores it when fn succeeds.
func (s *MemoryJobStore) Update(ctx context.Context, id string, fn JobMutator) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.jobs[id] = next
	return next.Clone(), nil
}

// Len returns the number of records held.
func (s *MemoryJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
