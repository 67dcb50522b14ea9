package models

import "time"

// UserHospital assigns a hospital user to the hospitals they may report for
type UserHospital struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	HospitalID int64     `gorm:"not null;index" json:"hospital_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for UserHospital model
func (UserHospital) TableName() string {
	return "user_hospitals"
}
