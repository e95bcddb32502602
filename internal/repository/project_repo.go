package repository

import (
	"errors"

	"donation-import-backend/internal/models"
	"donation-import-backend/internal/services/association"

	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) FindByTitle(title string) (*models.Project, error) {
	var project models.Project
	err := r.db.Unscoped().Where("LOWER(title) = ?", association.NormalizeName(title)).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}
