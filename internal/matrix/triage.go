package matrix

import (
	"fmt"
	"sort"
)

// TriageCategory is the IG NRW three level clinical urgency of a PVA (1 = most urgent)
type TriageCategory int

const (
	TriageCritical TriageCategory = 1
	TriageUrgent   TriageCategory = 2
	TriageNormal   TriageCategory = 3
)

// TriageInfo describes a triage category for display
type TriageInfo struct {
	ID          TriageCategory `json:"id"`
	Label       string         `json:"label"`
	Color       string         `json:"color"`
	BadgeColor  string         `json:"badge_color"`
	Description string         `json:"description"`
}

// TriageCategories lists the categories in priority order
var TriageCategories = []TriageInfo{
	{
		ID:          TriageCritical,
		Label:       "Kategorie 1 - Kritisch",
		Color:       "#d32f2f",
		BadgeColor:  "#f44336",
		Description: "Akut lebensbedrohlich, sofortige Behandlung erforderlich",
	},
	{
		ID:          TriageUrgent,
		Label:       "Kategorie 2 - Dringlich",
		Color:       "#f57c00",
		BadgeColor:  "#ff9800",
		Description: "Potenziell lebensbedrohlich, Behandlung innerhalb 30 Min",
	},
	{
		ID:          TriageNormal,
		Label:       "Kategorie 3 - Normal",
		Color:       "#2e7d32",
		BadgeColor:  "#4caf50",
		Description: "Nicht lebensbedrohlich, Behandlung planbar",
	},
}

// Valid reports whether c is 1, 2 or 3
func (c TriageCategory) Valid() bool {
	return c >= TriageCritical && c <= TriageNormal
}

// Info returns the display attributes of c
func (c TriageCategory) Info() (TriageInfo, error) {
	if !c.Valid() {
		return TriageInfo{}, fmt.Errorf("unknown triage category %d", c)
	}
	return TriageCategories[c-1], nil
}

// SortPVAs orders a cell's pre-notifications by triage category, then arrival time.
// The input is not modified and equal keys keep their insertion order.
func SortPVAs(list []PVA) []PVA {
	sorted := make([]PVA, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TriageCategory != b.TriageCategory {
			return a.TriageCategory < b.TriageCategory
		}
		return a.ArrivalTime.Before(b.ArrivalTime)
	})
	return sorted
}

// CategoryCounts is the number of PVA per triage category, used for cell badges
type CategoryCounts map[TriageCategory]int

// CountByCategory counts list per category. All three categories are always present.
func CountByCategory(list []PVA) CategoryCounts {
	counts := CategoryCounts{TriageCritical: 0, TriageUrgent: 0, TriageNormal: 0}
	for _, info := range TriageCategories {
		for _, p := range list {
			if p.TriageCategory == info.ID {
				counts[info.ID]++
			}
		}
	}
	return counts
}
