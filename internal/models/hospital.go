package models

import (
	"time"

	"krankenhaus-matrix/internal/matrix"
)

// Hospital represents a hospital row of the dispatch matrix
type Hospital struct {
	ID            int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Alias         string    `gorm:"size:50" json:"alias"`
	Address       string    `gorm:"type:text" json:"address,omitempty"`
	Phone         string    `gorm:"size:50" json:"phone,omitempty"`
	Email         string    `gorm:"size:255" json:"email,omitempty"`
	ContactPerson string    `gorm:"size:255" json:"contact_person,omitempty"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}

func (h Hospital) ToDomain() matrix.Hospital {
	return matrix.Hospital{
		ID:            h.ID,
		Name:          h.Name,
		Alias:         h.Alias,
		Active:        h.IsActive,
		Address:       h.Address,
		Phone:         h.Phone,
		Email:         h.Email,
		ContactPerson: h.ContactPerson,
	}
}

func HospitalFromDomain(h matrix.Hospital) *Hospital {
	return &Hospital{
		ID:            h.ID,
		Name:          h.Name,
		Alias:         h.Alias,
		Address:       h.Address,
		Phone:         h.Phone,
		Email:         h.Email,
		ContactPerson: h.ContactPerson,
		IsActive:      h.Active,
	}
}
