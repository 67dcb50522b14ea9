package models

import (
	"time"

	"krankenhaus-matrix/internal/matrix"
)

// MatrixItem is a capacity type or service group, a column of the matrix
type MatrixItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Category    string    `gorm:"size:20;not null;index" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for MatrixItem model
func (MatrixItem) TableName() string {
	return "matrix_items"
}

func (i MatrixItem) ToDomain() matrix.Item {
	return matrix.Item{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Category:    matrix.ItemCategory(i.Category),
	}
}

func ItemFromDomain(i matrix.Item) *MatrixItem {
	return &MatrixItem{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Category:    string(i.Category),
	}
}
