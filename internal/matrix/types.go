package matrix

import "time"

// Hospital is a row of the matrix
type Hospital struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Alias         string `json:"alias"`
	Active        bool   `json:"active"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
}

// ItemCategory separates capacity types from service groups
type ItemCategory string

const (
	CategoryCapacity ItemCategory = "capacity"
	CategoryService  ItemCategory = "service"
)

// Valid reports whether c names one of the two registries
func (c ItemCategory) Valid() bool {
	return c == CategoryCapacity || c == CategoryService
}

// Item is a capacity type or service group, a column of the matrix
type Item struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    ItemCategory `json:"category"`
}

// CellKey addresses one (hospital, item) pair
type CellKey struct {
	HospitalID int64 `json:"hospital_id"`
	ItemID     int64 `json:"item_id"`
}

// OverloadWindow is an announced period of future overload
type OverloadWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Cell is the stored status record of a (hospital, item) pair
type Cell struct {
	HospitalID      int64            `json:"hospital_id"`
	ItemID          int64            `json:"item_id"`
	Status          StatusKind       `json:"status"`
	Available       bool             `json:"available"`
	LastUpdate      time.Time        `json:"last_update"`
	UpdatedBy       string           `json:"updated_by"`
	Comment         string           `json:"comment"`
	SkipAutoFree    bool             `json:"skip_auto_free"`
	FutureOverloads []OverloadWindow `json:"future_overloads"`
}

// Key returns the matrix key of c
func (c Cell) Key() CellKey {
	return CellKey{HospitalID: c.HospitalID, ItemID: c.ItemID}
}

// Apply returns c with the update applied at the given time.
// Future overload windows are only kept for the future_overload status.
func (c Cell) Apply(u CellUpdate, at time.Time) Cell {
	c.Status = u.Status
	c.Comment = u.Comment
	c.SkipAutoFree = u.SkipAutoFree
	if u.Available != nil {
		c.Available = *u.Available
	}
	if u.Status == StatusFutureOverload {
		c.FutureOverloads = append([]OverloadWindow{}, u.FutureOverloads...)
	} else {
		c.FutureOverloads = []OverloadWindow{}
	}
	c.UpdatedBy = u.UpdatedBy
	c.LastUpdate = at
	return c
}

// CellUpdate is a status change requested for one cell
type CellUpdate struct {
	Status          StatusKind
	Comment         string
	SkipAutoFree    bool
	Available       *bool
	FutureOverloads []OverloadWindow
	UpdatedBy       string
}

type PatientInfo struct {
	Name     string `json:"name"`
	Age      string `json:"age"`
	Gender   string `json:"gender"`
	Symptoms string `json:"symptoms"`
}

type MedicalInfo struct {
	Diagnosis  string `json:"diagnosis"`
	Vitals     string `json:"vitals"`
	Treatments string `json:"treatments"`
	Category   string `json:"category"`
}

type LogisticsInfo struct {
	TransportMethod     string `json:"transport_method"`
	EstimatedArrival    string `json:"estimated_arrival"`
	Priority            string `json:"priority"`
	SpecialRequirements string `json:"special_requirements"`
}

// PVA is a patient pre-notification (Patientenvoranmeldung) for one cell
type PVA struct {
	ID             int64          `json:"id"`
	TriageCategory TriageCategory `json:"triage_category"`
	PatientInfo    PatientInfo    `json:"patient_info"`
	MedicalInfo    MedicalInfo    `json:"medical_info"`
	LogisticsInfo  LogisticsInfo  `json:"logistics_info"`
	ArrivalTime    time.Time      `json:"arrival_time"`
	Confirmed      bool           `json:"confirmed"`
	CreatedBy      string         `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Statistics aggregates the countable statuses over all available cells
type Statistics struct {
	Total         int `json:"total"`
	Free          int `json:"free"`
	Limited       int `json:"limited"`
	Overloaded    int `json:"overloaded"`
	Incapacitated int `json:"incapacitated"`
	TotalPVA      int `json:"total_pva"`
}
