package repository

import (
	"errors"

	"donation-import-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SponsorshipRepository struct {
	db *gorm.DB
}

func NewSponsorshipRepository(db *gorm.DB) *SponsorshipRepository {
	return &SponsorshipRepository{db: db}
}

// FindByChild returns an existing sponsorship for the child and the project
// it links to. This backs the one-sponsorship-project-per-child reuse rule.
func (r *SponsorshipRepository) FindByChild(childID uuid.UUID) (*models.Sponsorship, *models.Project, error) {
	var sponsorship models.Sponsorship
	err := r.db.Where("child_id = ?", childID).Order("created_at ASC").First(&sponsorship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var project models.Project
	err = r.db.Unscoped().First(&project, "id = ?", sponsorship.ProjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &sponsorship, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &sponsorship, &project, nil
}

func (r *SponsorshipRepository) Create(sponsorship *models.Sponsorship) error {
	return r.db.Create(sponsorship).Error
}
