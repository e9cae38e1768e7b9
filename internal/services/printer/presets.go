package printer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPresetNotFound is returned when no preset carries the given name.
var ErrPresetNotFound = errors.New("label preset not found")

// SavePreset stores a named label-sheet layout in the products store.
// Saving under an existing name overwrites that preset.
func SavePreset(db *database.Store, name string, cfg LabelConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode label preset: %w", err)
	}
	preset := models.LabelPreset{Name: name, Config: datatypes.JSON(raw)}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"config", "updated_at"}),
	}).Create(&preset).Error
	if err != nil {
		return fmt.Errorf("failed to save label preset: %w", err)
	}
	return nil
}

// LoadPreset returns the stored layout by name.
func LoadPreset(db *database.Store, name string) (LabelConfig, error) {
	var preset models.LabelPreset
	err := db.Where("name = ?", name).First(&preset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LabelConfig{}, fmt.Errorf("preset %q: %w", name, ErrPresetNotFound)
	}
	if err != nil {
		return LabelConfig{}, fmt.Errorf("failed to load label preset: %w", err)
	}
	var cfg LabelConfig
	if err := json.Unmarshal(preset.Config, &cfg); err != nil {
		return LabelConfig{}, fmt.Errorf("failed to decode label preset %q: %w", name, err)
	}
	return cfg, nil
}

// ListPresets returns the saved preset names sorted alphabetically.
func ListPresets(db *database.Store) ([]string, error) {
	var names []string
	if err := db.Model(&models.LabelPreset{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list label presets: %w", err)
	}
	return names, nil
}
