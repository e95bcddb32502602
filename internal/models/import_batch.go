package models

import (
	"time"

	"github.com/google/uuid"
)

type ImportBatch struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Filename string

	TotalRows           int
	SucceededCount      int
	FailedCount         int
	RefundedCount       int
	CanceledCount       int
	NeedsAttentionCount int
	ErrorCount          int

	Status      string `gorm:"index"` // processing, completed, failed
	StartedAt   time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}
