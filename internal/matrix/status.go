package matrix

import "fmt"

// StatusKind is the capacity status of a matrix cell
type StatusKind string

const (
	StatusFree           StatusKind = "free"
	StatusOverloaded     StatusKind = "overloaded"
	StatusLimited        StatusKind = "limited"
	StatusIncapacitated  StatusKind = "incapacitated"
	StatusNotAvailable   StatusKind = "not_available"
	StatusFutureOverload StatusKind = "future_overload"
	StatusInactive       StatusKind = "inactive"
)

// InactivePattern is the striped background used for cells of inactive hospitals
const InactivePattern = "repeating-linear-gradient(45deg, #4caf50, #4caf50 10px, #ffffff 10px, #ffffff 20px)"

// StatusInfo holds the display attributes of a status kind
type StatusInfo struct {
	Kind      StatusKind `json:"kind"`
	Color     string     `json:"color"`
	Label     string     `json:"label"`
	Icon      string     `json:"icon"`
	Countable bool       `json:"countable"`
}

var statusTable = map[StatusKind]StatusInfo{
	StatusFree:           {Kind: StatusFree, Color: "#4caf50", Label: "Verfügbar", Icon: "check_circle", Countable: true},
	StatusOverloaded:     {Kind: StatusOverloaded, Color: "#f44336", Label: "Ausgelastet", Icon: "error", Countable: true},
	StatusLimited:        {Kind: StatusLimited, Color: "#ff9800", Label: "Eingeschränkt", Icon: "warning", Countable: true},
	StatusIncapacitated:  {Kind: StatusIncapacitated, Color: "#000000", Label: "Handlungsunfähig", Icon: "error", Countable: true},
	StatusNotAvailable:   {Kind: StatusNotAvailable, Color: "#9e9e9e", Label: "Nicht verfügbar", Icon: "circle"},
	StatusFutureOverload: {Kind: StatusFutureOverload, Color: "#a5d6a7", Label: "Zukünftig ausgelastet", Icon: "access_time"},
	StatusInactive:       {Kind: StatusInactive, Color: "#4caf50", Label: "Inaktiv", Icon: "circle"},
}

// AllStatuses lists the status kinds in legend order
var AllStatuses = []StatusKind{
	StatusFree,
	StatusLimited,
	StatusOverloaded,
	StatusIncapacitated,
	StatusFutureOverload,
	StatusNotAvailable,
	StatusInactive,
}

// Valid reports whether s is one of the seven known kinds
func (s StatusKind) Valid() bool {
	_, ok := statusTable[s]
	return ok
}

// Settable reports whether s may be stored on a cell by a user.
// not_available and inactive are derived from the cell's availability and the hospital's active flag.
func (s StatusKind) Settable() bool {
	return s.Valid() && s != StatusNotAvailable && s != StatusInactive
}

// Countable reports whether s has a statistics bucket
func (s StatusKind) Countable() bool {
	return statusTable[s].Countable
}

// Info returns the display attributes of s
func (s StatusKind) Info() StatusInfo {
	if info, ok := statusTable[s]; ok {
		return info
	}
	return StatusInfo{Kind: s, Color: "#9e9e9e", Label: string(s), Icon: "circle"}
}

// ParseStatus converts a raw value into a StatusKind
func ParseStatus(raw string) (StatusKind, error) {
	s := StatusKind(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// EffectiveStatus derives the status shown for a cell.
// An inactive hospital wins over everything, a missing or unavailable cell shows as not_available.
func EffectiveStatus(cell *Cell, hospitalActive bool) StatusKind {
	if !hospitalActive {
		return StatusInactive
	}
	if cell == nil || !cell.Available {
		return StatusNotAvailable
	}
	return cell.Status
}

// CellDisplay is the rendered form of one cell
type CellDisplay struct {
	Status     StatusKind `json:"status"`
	Label      string     `json:"label"`
	Icon       string     `json:"icon"`
	Background string     `json:"background"`
	Striped    bool       `json:"striped"`
}

// Display renders an effective status. In black & white mode only free cells are white.
func Display(status StatusKind, blackWhite bool) CellDisplay {
	info := status.Info()
	d := CellDisplay{
		Status: status,
		Label:  info.Label,
		Icon:   info.Icon,
	}

	switch {
	case blackWhite:
		if status == StatusFree {
			d.Background = "#ffffff"
		} else {
			d.Background = "#000000"
		}
	case status == StatusInactive:
		d.Background = InactivePattern
		d.Striped = true
	default:
		d.Background = info.Color
	}
	return d
}
