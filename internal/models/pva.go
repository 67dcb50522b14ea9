package models

import (
	"time"

	"krankenhaus-matrix/internal/matrix"
)

// PreNotification represents the pre_notifications table
// Each row belongs to one matrix cell through (hospital_id, item_id)
type PreNotification struct {
	ID             int64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	HospitalID     int64 `gorm:"not null;index:idx_pva_cell" json:"hospital_id"`
	ItemID         int64 `gorm:"not null;index:idx_pva_cell" json:"item_id"`
	TriageCategory int   `gorm:"not null" json:"triage_category"`

	// Patient
	PatientName   string `gorm:"size:255;not null" json:"patient_name"`
	PatientAge    string `gorm:"size:20" json:"patient_age"`
	PatientGender string `gorm:"size:20" json:"patient_gender"`
	Symptoms      string `gorm:"type:text" json:"symptoms"`

	// Medical
	Diagnosis       string `gorm:"type:text" json:"diagnosis"`
	Vitals          string `gorm:"type:text" json:"vitals"`
	Treatments      string `gorm:"type:text" json:"treatments"`
	MedicalCategory string `gorm:"size:50" json:"medical_category"`

	// Logistics
	TransportMethod     string `gorm:"size:100" json:"transport_method"`
	EstimatedArrival    string `gorm:"size:50" json:"estimated_arrival"`
	Priority            string `gorm:"size:20" json:"priority"`
	SpecialRequirements string `gorm:"type:text" json:"special_requirements"`

	ArrivalTime time.Time `gorm:"index" json:"arrival_time"`
	Confirmed   bool      `gorm:"not null;default:false" json:"confirmed"`
	CreatedBy   string    `gorm:"size:100" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for PreNotification model
func (PreNotification) TableName() string {
	return "pre_notifications"
}

func (p PreNotification) Key() matrix.CellKey {
	return matrix.CellKey{HospitalID: p.HospitalID, ItemID: p.ItemID}
}

func (p PreNotification) ToDomain() matrix.PVA {
	return matrix.PVA{
		ID:             p.ID,
		TriageCategory: matrix.TriageCategory(p.TriageCategory),
		PatientInfo: matrix.PatientInfo{
			Name:     p.PatientName,
			Age:      p.PatientAge,
			Gender:   p.PatientGender,
			Symptoms: p.Symptoms,
		},
		MedicalInfo: matrix.MedicalInfo{
			Diagnosis:  p.Diagnosis,
			Vitals:     p.Vitals,
			Treatments: p.Treatments,
			Category:   p.MedicalCategory,
		},
		LogisticsInfo: matrix.LogisticsInfo{
			TransportMethod:     p.TransportMethod,
			EstimatedArrival:    p.EstimatedArrival,
			Priority:            p.Priority,
			SpecialRequirements: p.SpecialRequirements,
		},
		ArrivalTime: p.ArrivalTime,
		Confirmed:   p.Confirmed,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

func PreNotificationFromDomain(key matrix.CellKey, p matrix.PVA) *PreNotification {
	return &PreNotification{
		ID:                  p.ID,
		HospitalID:          key.HospitalID,
		ItemID:              key.ItemID,
		TriageCategory:      int(p.TriageCategory),
		PatientName:         p.PatientInfo.Name,
		PatientAge:          p.PatientInfo.Age,
		PatientGender:       p.PatientInfo.Gender,
		Symptoms:            p.PatientInfo.Symptoms,
		Diagnosis:           p.MedicalInfo.Diagnosis,
		Vitals:              p.MedicalInfo.Vitals,
		Treatments:          p.MedicalInfo.Treatments,
		MedicalCategory:     p.MedicalInfo.Category,
		TransportMethod:     p.LogisticsInfo.TransportMethod,
		EstimatedArrival:    p.LogisticsInfo.EstimatedArrival,
		Priority:            p.LogisticsInfo.Priority,
		SpecialRequirements: p.LogisticsInfo.SpecialRequirements,
		ArrivalTime:         p.ArrivalTime,
		Confirmed:           p.Confirmed,
		CreatedBy:           p.CreatedBy,
		CreatedAt:           p.CreatedAt,
	}
}
