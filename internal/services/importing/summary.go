package importing

import (
	"github.com/google/uuid"

	"donation-import-backend/internal/models"
)

// BatchSummary is the operator-facing result of one run: per-status counts
// of the donations created plus the ordered list of row-level errors.
type BatchSummary struct {
	BatchID  uuid.UUID `json:"batch_id"`
	Filename string    `json:"filename"`

	TotalRows      int `json:"total_rows"`
	Succeeded      int `json:"succeeded"`
	Failed         int `json:"failed"`
	Refunded       int `json:"refunded"`
	Canceled       int `json:"canceled"`
	NeedsAttention int `json:"needs_attention"`

	Errors []RowError `json:"errors"`
}

func (s *BatchSummary) addStatus(status string) {
	switch status {
	case models.StatusSucceeded:
		s.Succeeded++
	case models.StatusFailed:
		s.Failed++
	case models.StatusRefunded:
		s.Refunded++
	case models.StatusCanceled:
		s.Canceled++
	case models.StatusNeedsAttention:
		s.NeedsAttention++
	}
}

func (s *BatchSummary) addError(rowNumber int, message string) {
	s.Errors = append(s.Errors, RowError{RowNumber: rowNumber, Message: message})
}

// DonationsCreated is the total across all statuses.
func (s *BatchSummary) DonationsCreated() int {
	return s.Succeeded + s.Failed + s.Refunded + s.Canceled + s.NeedsAttention
}
