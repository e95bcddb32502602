package repository

import (
	"errors"

	"donation-import-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImportBatchRepository struct {
	db *gorm.DB
}

func NewImportBatchRepository(db *gorm.DB) *ImportBatchRepository {
	return &ImportBatchRepository{db: db}
}

func (r *ImportBatchRepository) Create(batch *models.ImportBatch) error {
	return r.db.Create(batch).Error
}

func (r *ImportBatchRepository) Update(batch *models.ImportBatch) error {
	return r.db.Save(batch).Error
}

func (r *ImportBatchRepository) GetByID(id uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	err := r.db.First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}
