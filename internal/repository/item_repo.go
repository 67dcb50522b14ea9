package repository

import (
	"krankenhaus-matrix/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetItemsByCategory retrieves capacity types or service groups in creation order
func (r *ItemRepository) GetItemsByCategory(category string) ([]models.MatrixItem, error) {
	var items []models.MatrixItem
	err := r.db.Where("category = ?", category).Order("id ASC").Find(&items).Error
	return items, err
}

// CreateItem creates a new item together with its default cells
func (r *ItemRepository) CreateItem(item *models.MatrixItem, cells []*models.MatrixCell) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if len(cells) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cells).Error
	})
}

// UpdateItem updates name and description of an item within its category
func (r *ItemRepository) UpdateItem(item *models.MatrixItem) error {
	return r.db.Model(&models.MatrixItem{}).
		Where("id = ? AND category = ?", item.ID, item.Category).
		Select("name", "description").
		Updates(item).Error
}

// DeleteItem removes an item with its cells and pre-notifications
func (r *ItemRepository) DeleteItem(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.PreNotification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.MatrixCell{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.MatrixItem{}).Error
	})
}
