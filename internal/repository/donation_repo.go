package repository

import (
	"errors"

	"donation-import-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(donation *models.Donation) error {
	return r.db.Create(donation).Error
}

func (r *DonationRepository) GetByID(id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.First(&donation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// ListByBatch pages through a batch's donations with cursor pagination,
// optionally filtered by status (the needs_attention review queue) and a
// search over the external charge id.
func (r *DonationRepository) ListByBatch(
	batchID uuid.UUID,
	status string,
	cursor string,
	limit int,
	search string,
) ([]models.Donation, string, bool, error) {

	var donations []models.Donation
	query := r.db.
		Where("import_batch_id = ?", batchID).
		Order("id ASC").
		Limit(limit + 1)

	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}
	if search != "" {
		query = query.Where("external_charge_id ILIKE ?", "%"+search+"%")
	}

	if err := query.Find(&donations).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	var nextCursor string
	if len(donations) > limit {
		hasMore = true
		nextCursor = donations[limit-1].ID.String()
		donations = donations[:limit]
	}
	return donations, nextCursor, hasMore, nil
}

// Resolve clears a donation's review state after an operator has looked at
// it: new status, duplicate flag and reason dropped.
func (r *DonationRepository) Resolve(id uuid.UUID, status string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.First(&donation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	donation.Status = status
	donation.DuplicateFlag = false
	donation.NeedsAttentionReason = nil
	if err := r.db.Save(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// HardDeleteAll wipes every donation record. Only the importer CLI's
// destructive re-run flag uses this.
func (r *DonationRepository) HardDeleteAll() (int64, error) {
	result := r.db.Unscoped().Where("1 = 1").Delete(&models.Donation{})
	return result.RowsAffected, result.Error
}

func (r *DonationRepository) CountByBatch(batchID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Donation{}).Where("import_batch_id = ?", batchID).Count(&count).Error
	return count, err
}
