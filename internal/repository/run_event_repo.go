package repository

import (
	"context"
	"time"

	"batch-reconciliation-backend/internal/models"
	"batch-reconciliation-backend/internal/telemetry"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ telemetry.Recorder = (*RunEventRepository)(nil)

type RunEventRepository struct {
	db *gorm.DB
}

func NewRunEventRepository(db *gorm.DB) *RunEventRepository {
	return &RunEventRepository{db: db}
}

func (r *RunEventRepository) Record(ctx context.Context, e telemetry.Event) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	return r.db.WithContext(ctx).Create(&models.RunEvent{
		ID:          uuid.New(),
		Account:     e.Account,
		Template:    e.Template,
		BankRecords: e.BankRecords,
		Status:      e.Status,
		Error:       e.Error,
		CreatedAt:   at,
	}).Error
}
