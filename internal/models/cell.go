package models

import (
	"time"

	"krankenhaus-matrix/internal/matrix"
)

// MatrixCell stores the status of one (hospital, item) pair
type MatrixCell struct {
	HospitalID      int64                   `gorm:"primaryKey;autoIncrement:false" json:"hospital_id"`
	ItemID          int64                   `gorm:"primaryKey;autoIncrement:false;index" json:"item_id"`
	Status          string                  `gorm:"size:20;not null;default:'free'" json:"status"`
	Available       bool                    `gorm:"not null;default:true" json:"available"`
	LastUpdate      time.Time               `json:"last_update"`
	UpdatedBy       string                  `gorm:"size:100" json:"updated_by"`
	Comment         string                  `gorm:"type:text" json:"comment"`
	SkipAutoFree    bool                    `gorm:"not null;default:false" json:"skip_auto_free"`
	FutureOverloads []matrix.OverloadWindow `gorm:"type:text;serializer:json" json:"future_overloads"`
}

// TableName specifies the table name for MatrixCell model
func (MatrixCell) TableName() string {
	return "matrix_cells"
}

func (c MatrixCell) ToDomain() matrix.Cell {
	windows := c.FutureOverloads
	if windows == nil {
		windows = []matrix.OverloadWindow{}
	}
	return matrix.Cell{
		HospitalID:      c.HospitalID,
		ItemID:          c.ItemID,
		Status:          matrix.StatusKind(c.Status),
		Available:       c.Available,
		LastUpdate:      c.LastUpdate,
		UpdatedBy:       c.UpdatedBy,
		Comment:         c.Comment,
		SkipAutoFree:    c.SkipAutoFree,
		FutureOverloads: windows,
	}
}

func CellFromDomain(c matrix.Cell) *MatrixCell {
	return &MatrixCell{
		HospitalID:      c.HospitalID,
		ItemID:          c.ItemID,
		Status:          string(c.Status),
		Available:       c.Available,
		LastUpdate:      c.LastUpdate,
		UpdatedBy:       c.UpdatedBy,
		Comment:         c.Comment,
		SkipAutoFree:    c.SkipAutoFree,
		FutureOverloads: c.FutureOverloads,
	}
}
