package importing

import (
	"fmt"
	"strings"

	"donation-import-backend/internal/models"
)

// Classification is the canonical status for a row plus, when the vendor
// status is unrecognized, the reason the row needs review.
type Classification struct {
	Status          string
	AttentionReason string
}

var statusMap = map[string]string{
	"succeeded": models.StatusSucceeded,
	"failed":    models.StatusFailed,
	"refunded":  models.StatusRefunded,
	"canceled":  models.StatusCanceled,
	"cancelled": models.StatusCanceled,
}

// ClassifyStatus maps a vendor outcome string onto the canonical taxonomy.
// Unknown values are not rejected; they import as needs_attention.
func ClassifyStatus(raw string) Classification {
	if status, ok := statusMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return Classification{Status: status}
	}
	return Classification{
		Status:          models.StatusNeedsAttention,
		AttentionReason: fmt.Sprintf("unrecognized status: %s", raw),
	}
}
