package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Canonical donation statuses. Every imported donation ends up in exactly
// one of these five.
const (
	StatusSucceeded      = "succeeded"
	StatusFailed         = "failed"
	StatusRefunded       = "refunded"
	StatusCanceled       = "canceled"
	StatusNeedsAttention = "needs_attention"
)

// PaymentMethodProcessor marks donations created by the processor import.
const PaymentMethodProcessor = "processor"

type Donation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ImportBatchID uuid.UUID `gorm:"index"`
	Amount        int64     // minor units
	Currency      string
	Date          time.Time
	Status        string `gorm:"index"`
	PaymentMethod string

	DonorID       uuid.UUID  `gorm:"index"`
	ProjectID     *uuid.UUID `gorm:"index"`
	ChildID       *uuid.UUID `gorm:"index"`
	SponsorshipID *uuid.UUID

	ExternalChargeID       string `gorm:"index"`
	ExternalSubscriptionID string
	ExternalCustomerID     string

	DuplicateFlag        bool
	NeedsAttentionReason *string

	Metadata  datatypes.JSONMap
	CreatedAt time.Time
}

// ValidStatus reports whether s is one of the five canonical statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusRefunded, StatusCanceled, StatusNeedsAttention:
		return true
	}
	return false
}
