package importing

import (
	"donation-import-backend/internal/models"
	"donation-import-backend/internal/services/association"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory store backing for pipeline tests. Lookup semantics mirror the
// gorm repositories: case-insensitive trimmed name matching, archived
// records included, (nil, nil) for no match.
type memDB struct {
	donors       []*models.Donor
	children     []*models.Child
	projects     []*models.Project
	sponsorships []*models.Sponsorship
	donations    []*models.Donation
	batches      []*models.ImportBatch
}

func (db *memDB) stores() Stores {
	return Stores{
		Donors:       &memDonors{db},
		Children:     &memChildren{db},
		Projects:     &memProjects{db},
		Sponsorships: &memSponsorships{db},
		Donations:    &memDonations{db},
		Restorer:     &memRestorer{},
	}
}

type memDonors struct{ db *memDB }

func (m *memDonors) FindByIdentity(identity string) (*models.Donor, error) {
	for _, d := range m.db.donors {
		if d.Email == identity {
			return d, nil
		}
	}
	return nil, nil
}

func (m *memDonors) Create(donor *models.Donor) error {
	m.db.donors = append(m.db.donors, donor)
	return nil
}

type memChildren struct{ db *memDB }

func (m *memChildren) FindByName(name string) (*models.Child, error) {
	for _, c := range m.db.children {
		if association.NormalizeName(c.Name) == association.NormalizeName(name) {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memChildren) Create(child *models.Child) error {
	m.db.children = append(m.db.children, child)
	return nil
}

type memProjects struct{ db *memDB }

func (m *memProjects) FindByTitle(title string) (*models.Project, error) {
	for _, p := range m.db.projects {
		if association.NormalizeName(p.Title) == association.NormalizeName(title) {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memProjects) Create(project *models.Project) error {
	m.db.projects = append(m.db.projects, project)
	return nil
}

type memSponsorships struct{ db *memDB }

func (m *memSponsorships) FindByChild(childID uuid.UUID) (*models.Sponsorship, *models.Project, error) {
	for _, s := range m.db.sponsorships {
		if s.ChildID != childID {
			continue
		}
		for _, p := range m.db.projects {
			if p.ID == s.ProjectID {
				return s, p, nil
			}
		}
		return s, nil, nil
	}
	return nil, nil, nil
}

type memDonations struct{ db *memDB }

func (m *memDonations) Create(donation *models.Donation) error {
	m.db.donations = append(m.db.donations, donation)
	return nil
}

type memRestorer struct{}

func (memRestorer) RestoreDonor(donor *models.Donor) error {
	donor.DeletedAt = gorm.DeletedAt{}
	return nil
}

func (memRestorer) RestoreChild(child *models.Child) error {
	child.DeletedAt = gorm.DeletedAt{}
	return nil
}

func (memRestorer) RestoreProject(project *models.Project) error {
	project.DeletedAt = gorm.DeletedAt{}
	return nil
}

// memTx satisfies TxRunner without transactional isolation; the tests here
// exercise pipeline semantics, not rollback behavior.
type memTx struct{ db *memDB }

func (t *memTx) InTransaction(fn func(s Stores) error) error {
	return fn(t.db.stores())
}

type memBatches struct{ db *memDB }

func (m *memBatches) Create(batch *models.ImportBatch) error {
	m.db.batches = append(m.db.batches, batch)
	return nil
}

func (m *memBatches) Update(batch *models.ImportBatch) error {
	for i, b := range m.db.batches {
		if b.ID == batch.ID {
			m.db.batches[i] = batch
		}
	}
	return nil
}
