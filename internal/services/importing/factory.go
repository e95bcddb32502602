package importing

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"donation-import-backend/internal/models"
	"donation-import-backend/internal/services/association"
	"donation-import-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// DonorStore lookups include archived donors, so a returning donor whose
// record was soft-deleted is found and restored instead of duplicated.
type DonorStore interface {
	FindByIdentity(identity string) (*models.Donor, error)
	Create(donor *models.Donor) error
}

type DonationStore interface {
	Create(donation *models.Donation) error
}

// Restorer clears the archived state of an entity referenced by new
// financial activity. The factory applies it uniformly to every resolved
// donor, child, and project before persisting.
type Restorer interface {
	RestoreDonor(donor *models.Donor) error
	RestoreChild(child *models.Child) error
	RestoreProject(project *models.Project) error
}

// Factory builds the persisted Donation records for one resolved row.
type Factory struct {
	donors    DonorStore
	donations DonationStore
	restorer  Restorer
	log       *logrus.Entry
}

func NewFactory(donors DonorStore, donations DonationStore, restorer Restorer) *Factory {
	return &Factory{
		donors:    donors,
		donations: donations,
		restorer:  restorer,
		log:       logger.WithComponent("donation_factory"),
	}
}

// Build persists one donation per resolved child (or a single donation when
// the row funds a project directly) and returns the created records.
//
// Status precedence: a duplicate flag or a resolver/classifier attention
// reason always forces needs_attention, even over a succeeded outcome.
func (f *Factory) Build(
	batchID uuid.UUID,
	row *ImportRow,
	classification Classification,
	resolution association.Resolution,
	duplicate bool,
	duplicateReason string,
) ([]*models.Donation, error) {

	status := classification.Status
	reason := joinReasons(classification.AttentionReason, resolution.AttentionReason, duplicateReason)
	if duplicate || reason != "" {
		status = models.StatusNeedsAttention
	}

	donor, err := f.resolveDonor(row)
	if err != nil {
		return nil, err
	}

	base := models.Donation{
		ID:                     uuid.New(),
		ImportBatchID:          batchID,
		Amount:                 row.Amount,
		Currency:               row.Currency,
		Date:                   row.Date,
		Status:                 status,
		PaymentMethod:          models.PaymentMethodProcessor,
		DonorID:                donor.ID,
		ExternalChargeID:       row.ChargeID,
		ExternalSubscriptionID: row.SubscriptionID,
		ExternalCustomerID:     row.CustomerID,
		DuplicateFlag:          duplicate,
		CreatedAt:              time.Now(),
	}
	if reason != "" {
		base.NeedsAttentionReason = &reason
	}
	if len(row.Metadata) > 0 {
		meta := make(datatypes.JSONMap, len(row.Metadata))
		for k, v := range row.Metadata {
			meta[k] = v
		}
		base.Metadata = meta
	}

	if len(resolution.Children) == 0 {
		if resolution.Project != nil {
			if err := f.reactivateProject(resolution.Project); err != nil {
				return nil, err
			}
			id := resolution.Project.ID
			base.ProjectID = &id
		}
		if err := f.donations.Create(&base); err != nil {
			return nil, err
		}
		return []*models.Donation{&base}, nil
	}

	// Multi-child fan-out: one donation per child, amount split evenly with
	// the remainder minor units on the first child.
	amounts := splitAmount(row.Amount, len(resolution.Children))
	donations := make([]*models.Donation, 0, len(resolution.Children))
	for i, rc := range resolution.Children {
		if err := f.restoreChildIfArchived(rc.Child); err != nil {
			return nil, err
		}
		if rc.Project != nil {
			if err := f.reactivateProject(rc.Project); err != nil {
				return nil, err
			}
		}

		d := base
		d.ID = uuid.New()
		d.Amount = amounts[i]
		childID := rc.Child.ID
		d.ChildID = &childID
		if rc.Project != nil {
			projectID := rc.Project.ID
			d.ProjectID = &projectID
		}
		if rc.Sponsorship != nil {
			sponsorshipID := rc.Sponsorship.ID
			d.SponsorshipID = &sponsorshipID
		}
		if err := f.donations.Create(&d); err != nil {
			return nil, err
		}
		donations = append(donations, &d)
	}
	return donations, nil
}

// resolveDonor finds or creates the donor for a row. Donors are keyed by
// email; anonymous givers get a synthetic identity derived from phone and
// address so two different anonymous donors never collapse into one record.
func (f *Factory) resolveDonor(row *ImportRow) (*models.Donor, error) {
	identity := donorIdentity(row)
	donor, err := f.donors.FindByIdentity(identity)
	if err != nil {
		return nil, err
	}
	if donor != nil {
		if donor.DeletedAt.Valid {
			if err := f.restorer.RestoreDonor(donor); err != nil {
				return nil, err
			}
			f.log.WithField("donor", donor.ID).Info("restored archived donor")
		}
		return donor, nil
	}

	name := row.CustomerName
	if name == "" {
		name = "Anonymous"
	}
	donor = &models.Donor{
		ID:                 uuid.New(),
		Name:               name,
		Email:              identity,
		Phone:              row.CustomerPhone,
		Address:            row.CustomerAddress,
		ExternalCustomerID: row.CustomerID,
		CreatedAt:          time.Now(),
	}
	if err := f.donors.Create(donor); err != nil {
		return nil, err
	}
	return donor, nil
}

func (f *Factory) restoreChildIfArchived(child *models.Child) error {
	if !child.DeletedAt.Valid {
		return nil
	}
	if err := f.restorer.RestoreChild(child); err != nil {
		return err
	}
	f.log.WithField("child", child.Name).Info("restored archived child")
	return nil
}

func (f *Factory) reactivateProject(project *models.Project) error {
	if !project.DeletedAt.Valid {
		return nil
	}
	if err := f.restorer.RestoreProject(project); err != nil {
		return err
	}
	f.log.WithField("project", project.Title).Info("restored archived project")
	return nil
}

// donorIdentity is the find-or-create key. Real emails win; otherwise a
// short hash over phone and address distinguishes anonymous givers. Rows
// with no contact details at all fall back to the processor's customer id,
// then the charge id, so they never share one synthetic donor.
func donorIdentity(row *ImportRow) string {
	if email := strings.ToLower(strings.TrimSpace(row.CustomerEmail)); email != "" {
		return email
	}
	seed := row.CustomerPhone + "|" + row.CustomerAddress
	if strings.TrimSpace(row.CustomerPhone) == "" && strings.TrimSpace(row.CustomerAddress) == "" {
		if row.CustomerID != "" {
			seed = row.CustomerID
		} else {
			seed = row.ChargeID
		}
	}
	sum := sha256.Sum256([]byte(seed))
	return "anon:" + hex.EncodeToString(sum[:])[:12]
}

func splitAmount(total int64, parts int) []int64 {
	amounts := make([]int64, parts)
	base := total / int64(parts)
	for i := range amounts {
		amounts[i] = base
	}
	amounts[0] += total % int64(parts)
	return amounts
}

func joinReasons(reasons ...string) string {
	var nonEmpty []string
	for _, r := range reasons {
		if r != "" {
			nonEmpty = append(nonEmpty, r)
		}
	}
	return strings.Join(nonEmpty, "; ")
}
