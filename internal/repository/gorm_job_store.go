package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/sitegen/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJobStore persists job records through GORM (SQLite or PostgreSQL).
type GormJobStore struct {
	db *gorm.DB
}

// NewGormJobStore creates a new GormJobStore.
// Parameters:
//   - db: GORM database handle with the site_jobs table migrated.
//
// Returns:
//   - *GormJobStore: store bound to db.
func NewGormJobStore(db *gorm.DB) *GormJobStore {
	return &GormJobStore{db: db}
}

// Create inserts a new job record.
func (s *GormJobStore) Create(ctx context.Context, job *domain.Job) error {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(newJobRecord(job))
	if result.Error != nil {
		return fmt.Errorf("failed to create job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrJobExists
	}
	return nil
}

// Get retrieves a job record by id.
func (s *GormJobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	var rec jobRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return rec.toDomain(), nil
}

// Update loads, mutates and saves the record inside one transaction.
func (s *GormJobStore) Update(ctx context.Context, id string, fn JobMutator) (*domain.Job, error) {
	var updated *domain.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec jobRecord
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&rec, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrJobNotFound
			}
			return err
		}

		job := rec.toDomain()
		if err := fn(job); err != nil {
			return err
		}
		if err := tx.Save(newJobRecord(job)).Error; err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
