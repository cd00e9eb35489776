package models

import (
	"time"

	"github.com/google/uuid"
)

// RunEvent is the telemetry row written for each reconciliation attempt.
type RunEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Account     string    `gorm:"index"`
	Template    string
	BankRecords int
	Status      string `gorm:"index"`
	Error       string
	CreatedAt   time.Time
}
