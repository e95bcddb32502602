package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project types.
const (
	ProjectTypeGeneral     = "general"
	ProjectTypeCampaign    = "campaign"
	ProjectTypeSponsorship = "sponsorship"
)

// DefaultProjectTitle is the catch-all bucket for donations with no
// resolvable association.
const DefaultProjectTitle = "General Fund"

type Project struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title string    `gorm:"index"`
	Type  string    `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
