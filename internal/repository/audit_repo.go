package repository

import (
	"krankenhaus-matrix/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *AuditRepository) CreateAuditLog(userID *uint, action string, details string) error {
	log := &models.AuditLog{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	return r.db.Create(log).Error
}

// GetRecentAuditLogs returns the newest entries first
func (r *AuditRepository) GetRecentAuditLogs(limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
