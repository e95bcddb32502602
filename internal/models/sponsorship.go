package models

import (
	"time"

	"github.com/google/uuid"
)

type Sponsorship struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	DonorID   uuid.UUID `gorm:"index"`
	ChildID   uuid.UUID `gorm:"index"`
	ProjectID uuid.UUID `gorm:"index"`

	MonthlyAmount int64 // minor units
	EndDate       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
