package matrix

import (
	"fmt"
	"time"
)

const (
	MinRefreshInterval = 1
	MaxRefreshInterval = 60
)

// EmergencyContact is an entry of the dispatch center's contact list
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role,omitempty"`
}

// SystemConfig holds the dispatch-center wide settings
type SystemConfig struct {
	AutoFreeTimes           []string           `json:"auto_free_times"`
	BackupEmail             string             `json:"backup_email"`
	RefreshInterval         int                `json:"refresh_interval"` // minutes
	ExternalURL             string             `json:"external_url"`
	EnablePushNotifications bool               `json:"enable_push_notifications"`
	EnableEmailAlerts       bool               `json:"enable_email_alerts"`
	MaxPVAPerDay            int                `json:"max_pva_per_day"`
	EmergencyContacts       []EmergencyContact `json:"emergency_contacts"`
}

// DefaultSystemConfig returns the settings used before an administrator saves any
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		AutoFreeTimes:           []string{"06:00", "14:00", "22:00"},
		RefreshInterval:         5,
		EnablePushNotifications: true,
		EnableEmailAlerts:       true,
		MaxPVAPerDay:            50,
		EmergencyContacts:       []EmergencyContact{},
	}
}

// Normalize clamps the refresh interval into 1..60 minutes and returns non-nil lists of its own
func (c SystemConfig) Normalize() SystemConfig {
	if c.RefreshInterval < MinRefreshInterval {
		c.RefreshInterval = MinRefreshInterval
	}
	if c.RefreshInterval > MaxRefreshInterval {
		c.RefreshInterval = MaxRefreshInterval
	}
	c.AutoFreeTimes = append([]string{}, c.AutoFreeTimes...)
	c.EmergencyContacts = append([]EmergencyContact{}, c.EmergencyContacts...)
	return c
}

// Clone returns c with its own copies of the list fields
func (c SystemConfig) Clone() SystemConfig {
	if c.AutoFreeTimes != nil {
		c.AutoFreeTimes = append([]string{}, c.AutoFreeTimes...)
	}
	if c.EmergencyContacts != nil {
		c.EmergencyContacts = append([]EmergencyContact{}, c.EmergencyContacts...)
	}
	return c
}

// RefreshPeriod is the refresh interval as a duration
func (c SystemConfig) RefreshPeriod() time.Duration {
	return time.Duration(c.Normalize().RefreshInterval) * time.Minute
}

// ClockTime is a time of day in minutes precision
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses an "HH:MM" value
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On returns the instant of c on the day of ref, in ref's location
func (c ClockTime) On(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, ref.Location())
}
