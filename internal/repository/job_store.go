package repository

import (
	"context"

	"github.com/timmy/sitegen/internal/domain"
)

// JobMutator applies a state transition to a job. Returning an error aborts the update.
type JobMutator func(job *domain.Job) error

// JobStore is the process-wide table of job records keyed by job id.
// Implementations must be safe for concurrent use across different keys.
type JobStore interface {
	// Create inserts a new record. Returns domain.ErrJobExists if the id is taken.
	Create(ctx context.Context, job *domain.Job) error

	// Get returns a copy of the current record or domain.ErrJobNotFound.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// Update atomically applies fn to the record and returns the committed copy.
	// Nothing is written when fn fails. Returns domain.ErrJobNotFound if the id is unknown.
	Update(ctx context.Context, id string, fn JobMutator) (*domain.Job, error)
}
