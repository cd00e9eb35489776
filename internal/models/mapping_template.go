package models

import (
	"time"

	"gorm.io/datatypes"
)

// MappingTemplateSet holds every template saved under one key.
type MappingTemplateSet struct {
	Key       string         `gorm:"primaryKey"`
	Templates datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time
}
