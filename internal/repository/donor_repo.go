package repository

import (
	"errors"

	"donation-import-backend/internal/models"

	"gorm.io/gorm"
)

type DonorRepository struct {
	db *gorm.DB
}

func NewDonorRepository(db *gorm.DB) *DonorRepository {
	return &DonorRepository{db: db}
}

// FindByIdentity looks a donor up by email / synthetic identity, archived
// records included so new activity can restore them.
func (r *DonorRepository) FindByIdentity(identity string) (*models.Donor, error) {
	var donor models.Donor
	err := r.db.Unscoped().Where("email = ?", identity).First(&donor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

func (r *DonorRepository) Create(donor *models.Donor) error {
	return r.db.Create(donor).Error
}
