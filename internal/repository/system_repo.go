package repository

import (
	"errors"

	"krankenhaus-matrix/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SystemSettingsRepository struct {
	db *gorm.DB
}

func NewSystemSettingsRepo(db *gorm.DB) *SystemSettingsRepository {
	return &SystemSettingsRepository{db: db}
}

// GetSettings returns the stored settings, or nil when none were saved yet
func (r *SystemSettingsRepository) GetSettings() (*models.SystemSettings, error) {
	var settings models.SystemSettings
	err := r.db.Where("id = ?", models.SystemSettingsID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

// SaveSettings inserts or overwrites the settings row
func (r *SystemSettingsRepository) SaveSettings(settings *models.SystemSettings) error {
	settings.ID = models.SystemSettingsID
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(settings).Error
}
