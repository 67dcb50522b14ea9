package repository

import (
	"krankenhaus-matrix/internal/models"

	"gorm.io/gorm"
)

type UserHospitalRepository struct {
	db *gorm.DB
}

func NewUserHospitalRepo(db *gorm.DB) *UserHospitalRepository {
	return &UserHospitalRepository{db: db}
}

// AssignUserToHospital assigns a user to a hospital
func (r *UserHospitalRepository) AssignUserToHospital(userID uint, hospitalID int64) error {
	userHospital := &models.UserHospital{
		UserID:     userID,
		HospitalID: hospitalID,
	}
	// Use FirstOrCreate to avoid duplicate entries
	return r.db.Where("user_id = ? AND hospital_id = ?", userID, hospitalID).
		FirstOrCreate(userHospital).Error
}

// RemoveUserFromHospital removes a user's access to a hospital
func (r *UserHospitalRepository) RemoveUserFromHospital(userID uint, hospitalID int64) error {
	return r.db.Where("user_id = ? AND hospital_id = ?", userID, hospitalID).
		Delete(&models.UserHospital{}).Error
}

// GetUserHospitals retrieves all hospital IDs a user may report for
func (r *UserHospitalRepository) GetUserHospitals(userID uint) ([]int64, error) {
	var hospitalIDs []int64
	err := r.db.Model(&models.UserHospital{}).
		Where("user_id = ?", userID).
		Order("hospital_id ASC").
		Pluck("hospital_id", &hospitalIDs).Error
	return hospitalIDs, err
}

// UserHasAccessToHospital checks if a user is assigned to a specific hospital
func (r *UserHospitalRepository) UserHasAccessToHospital(userID uint, hospitalID int64) (bool, error) {
	var count int64
	err := r.db.Model(&models.UserHospital{}).
		Where("user_id = ? AND hospital_id = ?", userID, hospitalID).
		Count(&count).Error
	return count > 0, err
}
