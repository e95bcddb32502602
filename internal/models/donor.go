package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Donor struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name    string    `gorm:"index"`
	Email   string    `gorm:"uniqueIndex"` // real email, or synthetic anon:<hash> identity
	Phone   string
	Address string

	ExternalCustomerID string `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
