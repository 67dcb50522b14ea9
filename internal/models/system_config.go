package models

import (
	"time"

	"krankenhaus-matrix/internal/matrix"
)

// SystemSettingsID is the primary key of the single system_settings row
const SystemSettingsID = 1

// SystemSettings represents the system_settings table (one row)
type SystemSettings struct {
	ID                      uint                      `gorm:"primaryKey" json:"id"`
	AutoFreeTimes           []string                  `gorm:"type:text;serializer:json" json:"auto_free_times"`
	BackupEmail             string                    `gorm:"size:255" json:"backup_email"`
	RefreshInterval         int                       `gorm:"not null;default:5" json:"refresh_interval"`
	ExternalURL             string                    `gorm:"size:512" json:"external_url"`
	EnablePushNotifications bool                      `json:"enable_push_notifications"`
	EnableEmailAlerts       bool                      `json:"enable_email_alerts"`
	MaxPVAPerDay            int                       `json:"max_pva_per_day"`
	EmergencyContacts       []matrix.EmergencyContact `gorm:"type:text;serializer:json" json:"emergency_contacts"`
	UpdatedAt               time.Time                 `json:"updated_at"`
}

// TableName specifies the table name for SystemSettings model
func (SystemSettings) TableName() string {
	return "system_settings"
}

func (s SystemSettings) ToDomain() matrix.SystemConfig {
	return matrix.SystemConfig{
		AutoFreeTimes:           s.AutoFreeTimes,
		BackupEmail:             s.BackupEmail,
		RefreshInterval:         s.RefreshInterval,
		ExternalURL:             s.ExternalURL,
		EnablePushNotifications: s.EnablePushNotifications,
		EnableEmailAlerts:       s.EnableEmailAlerts,
		MaxPVAPerDay:            s.MaxPVAPerDay,
		EmergencyContacts:       s.EmergencyContacts,
	}.Normalize()
}

func SystemSettingsFromDomain(c matrix.SystemConfig) *SystemSettings {
	return &SystemSettings{
		ID:                      SystemSettingsID,
		AutoFreeTimes:           c.AutoFreeTimes,
		BackupEmail:             c.BackupEmail,
		RefreshInterval:         c.RefreshInterval,
		ExternalURL:             c.ExternalURL,
		EnablePushNotifications: c.EnablePushNotifications,
		EnableEmailAlerts:       c.EnableEmailAlerts,
		MaxPVAPerDay:            c.MaxPVAPerDay,
		EmergencyContacts:       c.EmergencyContacts,
	}
}
