package repository

import (
	"time"

	"github.com/timmy/sitegen/internal/domain"
)

// jobRecord is the relational row for a domain.Job.
type jobRecord struct {
	ID              string           `gorm:"type:text;primaryKey"`
	RowID           string           `gorm:"type:text;not null;index"`
	Status          domain.JobStatus `gorm:"type:text;not null;index;default:queued"`
	ChatID          *string          `gorm:"type:text"`
	SiteURL         *string          `gorm:"type:text"`
	HeroImageURL    *string          `gorm:"type:text"`
	ContactImageURL *string          `gorm:"type:text"`
	Error           *string          `gorm:"type:text"`
	CallbackURL     string           `gorm:"type:text;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the database table name for job records.
func (jobRecord) TableName() string {
	return "site_jobs"
}

func newJobRecord(j *domain.Job) *jobRecord {
	r := &jobRecord{
		ID:          j.ID,
		RowID:       j.RowID,
		Status:      j.Status,
		ChatID:      j.ChatID,
		SiteURL:     j.SiteURL,
		Error:       j.Error,
		CallbackURL: j.CallbackURL,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.ImageURLs != nil {
		hero, contact := j.ImageURLs.Hero, j.ImageURLs.Contact
		r.HeroImageURL = &hero
		r.ContactImageURL = &contact
	}
	return r
}

func (r *jobRecord) toDomain() *domain.Job {
	j := &domain.Job{
		ID:          r.ID,
		RowID:       r.RowID,
		Status:      r.Status,
		ChatID:      r.ChatID,
		SiteURL:     r.SiteURL,
		Error:       r.Error,
		CallbackURL: r.CallbackURL,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.HeroImageURL != nil || r.ContactImageURL != nil {
		j.ImageURLs = &domain.ImageURLs{}
		if r.HeroImageURL != nil {
			j.ImageURLs.Hero = *r.HeroImageURL
		}
		if r.ContactImageURL != nil {
			j.ImageURLs.Contact = *r.ContactImageURL
		}
	}
	return j
}
