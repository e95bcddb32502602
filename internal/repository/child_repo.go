package repository

import (
	"errors"

	"donation-import-backend/internal/models"
	"donation-import-backend/internal/services/association"

	"gorm.io/gorm"
)

type ChildRepository struct {
	db *gorm.DB
}

func NewChildRepository(db *gorm.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// FindByName matches case-insensitively on the trimmed name, archived
// records included.
func (r *ChildRepository) FindByName(name string) (*models.Child, error) {
	var child models.Child
	err := r.db.Unscoped().Where("LOWER(name) = ?", association.NormalizeName(name)).First(&child).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *ChildRepository) Create(child *models.Child) error {
	return r.db.Create(child).Error
}
