package repository

import (
	"donation-import-backend/internal/models"
	"donation-import-backend/internal/services/importing"

	"gorm.io/gorm"
)

// TxRunner gives the orchestrator its per-row transaction boundary: each
// closure runs against transaction-scoped repositories, so one row's writes
// commit or roll back as a unit.
type TxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (r *TxRunner) InTransaction(fn func(s importing.Stores) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStores(tx))
	})
}

// NewStores builds the store bundle the pipeline consumes from one DB handle.
func NewStores(db *gorm.DB) importing.Stores {
	return importing.Stores{
		Donors:       NewDonorRepository(db),
		Children:     NewChildRepository(db),
		Projects:     NewProjectRepository(db),
		Sponsorships: NewSponsorshipRepository(db),
		Donations:    NewDonationRepository(db),
		Restorer:     NewRestorer(db),
	}
}

// Restorer clears soft-delete state on entities referenced by new financial
// activity.
type Restorer struct {
	db *gorm.DB
}

func NewRestorer(db *gorm.DB) *Restorer {
	return &Restorer{db: db}
}

func (r *Restorer) RestoreDonor(donor *models.Donor) error {
	donor.DeletedAt = gorm.DeletedAt{}
	return r.db.Unscoped().Model(donor).Update("deleted_at", nil).Error
}

func (r *Restorer) RestoreChild(child *models.Child) error {
	child.DeletedAt = gorm.DeletedAt{}
	return r.db.Unscoped().Model(child).Update("deleted_at", nil).Error
}

func (r *Restorer) RestoreProject(project *models.Project) error {
	project.DeletedAt = gorm.DeletedAt{}
	return r.db.Unscoped().Model(project).Update("deleted_at", nil).Error
}
