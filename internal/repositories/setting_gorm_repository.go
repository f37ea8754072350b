package repositories

import (
	"errors"
	"fmt"

	"obrolan/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSettingRepository is a GORM implementation of SettingRepository.
type GORMSettingRepository struct {
	db *gorm.DB
}

// NewGORMSettingRepository creates a new instance of GORMSettingRepository.
func NewGORMSettingRepository(db *gorm.DB) *GORMSettingRepository {
	return &GORMSettingRepository{
		db: db,
	}
}

// Get retrieves a setting value by name. A missing setting is reported via
// ok=false, not an error.
func (r *GORMSettingRepository) Get(name string) (string, bool, error) {
	var setting models.Setting
	if err := r.db.First(&setting, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return setting.Value, true, nil
}

// Set stores a setting value, creating or overwriting as needed.
func (r *GORMSettingRepository) Set(name, value string) error {
	setting := models.Setting{Name: name, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return nil
}
