package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"batch-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRunNotFound   = errors.New("reconciliation run not found")
	ErrInvalidCursor = errors.New("invalid run cursor")
)

// RunCursor is the (created_at, id) of the last run on the previous page.
type RunCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func (c RunCursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == uuid.Nil
}

// String encodes the cursor as <RFC3339Nano>_<uuid>.
func (c RunCursor) String() string {
	return c.CreatedAt.UTC().Format(time.RFC3339Nano) + "_" + c.ID.String()
}

// Precedes reports whether the run (createdAt, id) is listed after c.
func (c RunCursor) Precedes(createdAt time.Time, id uuid.UUID) bool {
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return bytes.Compare(id[:], c.ID[:]) < 0
}

func ParseRunCursor(s string) (RunCursor, error) {
	ts, rawID, ok := strings.Cut(s, "_")
	if !ok {
		return RunCursor{}, ErrInvalidCursor
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return RunCursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return RunCursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return RunCursor{CreatedAt: t, ID: id}, nil
}

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *models.ReconciliationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// GetByID fetch a single run by ID
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReconciliationRun, error) {
	var run models.ReconciliationRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first, optionally for one account, starting after
// cursor.
func (r *RunRepository) List(ctx context.Context, account string, cursor RunCursor, limit int) ([]models.ReconciliationRun, bool, error) {
	var runs []models.ReconciliationRun
	if err := listQuery(r.db.WithContext(ctx), account, cursor, limit).Find(&runs).Error; err != nil {
		return nil, false, err
	}

	hasMore := false
	if len(runs) > limit {
		hasMore = true
		runs = runs[:limit]
	}
	return runs, hasMore, nil
}

// listQuery pages on (created_at, id) so runs sharing a timestamp are not
// skipped at a page boundary.
func listQuery(db *gorm.DB, account string, cursor RunCursor, limit int) *gorm.DB {
	query := db.Model(&models.ReconciliationRun{}).
		Omit("result").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1)

	if account != "" {
		query = query.Where("account = ?", account)
	}
	if !cursor.IsZero() {
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	return query
}
