package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"batch-reconciliation-backend/internal/models"
	"batch-reconciliation-backend/internal/templates"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ templates.Store = (*TemplateRepository)(nil)

// TemplateRepository stores each template list as one JSON row per key.
type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Load(ctx context.Context, key string) ([]templates.Template, error) {
	var set models.MappingTemplateSet
	err := r.db.WithContext(ctx).First(&set, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []templates.Template{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeTemplates(set.Templates)
}

func (r *TemplateRepository) Save(ctx context.Context, key string, list []templates.Template) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	set := models.MappingTemplateSet{
		Key:       key,
		Templates: data,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"templates", "updated_at"}),
	}).Create(&set).Error
}

func decodeTemplates(data []byte) ([]templates.Template, error) {
	list := []templates.Template{}
	if len(data) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("corrupt template list: %w", err)
	}
	return list, nil
}
