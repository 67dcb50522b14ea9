package repository

import (
	"krankenhaus-matrix/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// GetAllHospitals retrieves all hospitals in creation order, inactive ones included
func (r *HospitalRepository) GetAllHospitals() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.Order("id ASC").Find(&hospitals).Error
	return hospitals, err
}

// CreateHospital creates a new hospital together with its default cells
func (r *HospitalRepository) CreateHospital(hospital *models.Hospital, cells []*models.MatrixCell) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(hospital).Error; err != nil {
			return err
		}
		if len(cells) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cells).Error
	})
}

// UpdateHospital updates an existing hospital
func (r *HospitalRepository) UpdateHospital(hospital *models.Hospital) error {
	return r.db.Model(&models.Hospital{}).
		Where("id = ?", hospital.ID).
		Select("name", "alias", "address", "phone", "email", "contact_person", "is_active").
		Updates(hospital).Error
}

// DeleteHospital removes a hospital with its cells, pre-notifications and user assignments
func (r *HospitalRepository) DeleteHospital(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hospital_id = ?", id).Delete(&models.PreNotification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("hospital_id = ?", id).Delete(&models.MatrixCell{}).Error; err != nil {
			return err
		}
		if err := tx.Where("hospital_id = ?", id).Delete(&models.UserHospital{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Hospital{}).Error
	})
}
