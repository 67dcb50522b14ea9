package repository

import (
	"krankenhaus-matrix/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CellRepository struct {
	db *gorm.DB
}

func NewCellRepo(db *gorm.DB) *CellRepository {
	return &CellRepository{db: db}
}

// GetAllCells retrieves every matrix cell
func (r *CellRepository) GetAllCells() ([]models.MatrixCell, error) {
	var cells []models.MatrixCell
	err := r.db.Order("hospital_id ASC, item_id ASC").Find(&cells).Error
	return cells, err
}

// SaveCells inserts or overwrites cells by (hospital_id, item_id)
func (r *CellRepository) SaveCells(cells ...*models.MatrixCell) error {
	if len(cells) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hospital_id"}, {Name: "item_id"}},
		UpdateAll: true,
	}).Create(&cells).Error
}
