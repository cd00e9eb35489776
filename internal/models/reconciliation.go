package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ReconciliationRun struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Account             string    `gorm:"index"`
	BankIdentifier      string
	Template            string
	Mode                string
	Status              string          `gorm:"index"`
	PCCTotal            decimal.Decimal `gorm:"type:numeric"`
	BankTotal           decimal.Decimal `gorm:"type:numeric"`
	Difference          decimal.Decimal `gorm:"type:numeric"`
	MatchedCount        int
	UnmatchedBatchCount int
	UnmatchedBankCount  int
	Result              datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt           time.Time
}
