package repository

import (
	"krankenhaus-matrix/internal/models"

	"gorm.io/gorm"
)

type PreNotificationRepository struct {
	db *gorm.DB
}

func NewPreNotificationRepo(db *gorm.DB) *PreNotificationRepository {
	return &PreNotificationRepository{db: db}
}

// GetAllPreNotifications retrieves all pre-notifications in insertion order
func (r *PreNotificationRepository) GetAllPreNotifications() ([]models.PreNotification, error) {
	var list []models.PreNotification
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}

// CreatePreNotification stores a new pre-notification
func (r *PreNotificationRepository) CreatePreNotification(pva *models.PreNotification) error {
	return r.db.Create(pva).Error
}

// UpdatePreNotification overwrites a pre-notification of the same cell
func (r *PreNotificationRepository) UpdatePreNotification(pva *models.PreNotification) error {
	return r.db.Model(&models.PreNotification{}).
		Where("id = ? AND hospital_id = ? AND item_id = ?", pva.ID, pva.HospitalID, pva.ItemID).
		Select("*").
		Omit("id", "hospital_id", "item_id").
		Updates(pva).Error
}

// DeletePreNotification removes a pre-notification from a cell
func (r *PreNotificationRepository) DeletePreNotification(hospitalID, itemID, id int64) error {
	return r.db.Where("id = ? AND hospital_id = ? AND item_id = ?", id, hospitalID, itemID).
		Delete(&models.PreNotification{}).Error
}
