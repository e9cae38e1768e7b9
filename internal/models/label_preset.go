package models

import (
	"time"

	"gorm.io/datatypes"
)

// LabelPreset is a saved label-sheet layout (grid geometry, margins)
// kept in the products store. Config holds a JSON-encoded
// printer.LabelConfig.
type LabelPreset struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	Config    datatypes.JSON `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (LabelPreset) TableName() string { return "label_presets" }
