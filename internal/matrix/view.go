package matrix

import "time"

// CellView is a cell as the dashboard renders it
type CellView struct {
	HospitalID      int64            `json:"hospital_id"`
	ItemID          int64            `json:"item_id"`
	Display         CellDisplay      `json:"display"`
	StoredStatus    StatusKind       `json:"stored_status"`
	Available       bool             `json:"available"`
	Comment         string           `json:"comment"`
	LastUpdate      time.Time        `json:"last_update"`
	UpdatedBy       string           `json:"updated_by"`
	SkipAutoFree    bool             `json:"skip_auto_free"`
	FutureOverloads []OverloadWindow `json:"future_overloads"`
	PVACount        int              `json:"pva_count"`
	PVACategories   CategoryCounts   `json:"pva_categories"`
}

// RowView is one hospital row of the matrix
type RowView struct {
	Hospital Hospital   `json:"hospital"`
	Cells    []CellView `json:"cells"`
}

// View is the matrix for one item category
type View struct {
	Category   ItemCategory `json:"category,omitempty"`
	BlackWhite bool         `json:"black_white"`
	Items      []Item       `json:"items"`
	Rows       []RowView    `json:"rows"`
	Statistics Statistics   `json:"statistics"`
	LastUpdate time.Time    `json:"last_update"`
}

// View renders the matrix. An empty category renders capacities and services side by side.
func (s *Store) View(category ItemCategory, blackWhite bool) View {
	items := s.Items(category)
	stats := s.Statistics()

	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		Category:   category,
		BlackWhite: blackWhite,
		Items:      items,
		Rows:       make([]RowView, 0, len(s.hospitals)),
		Statistics: stats,
		LastUpdate: s.lastUpdate,
	}
	for _, h := range s.hospitals {
		row := RowView{Hospital: h, Cells: make([]CellView, 0, len(items))}
		for _, it := range items {
			key := CellKey{HospitalID: h.ID, ItemID: it.ID}
			row.Cells = append(row.Cells, s.cellViewLocked(key, h.Active, blackWhite))
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// CellView renders a single cell
func (s *Store) CellView(key CellKey, blackWhite bool) (CellView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.hospitalIndexLocked(key.HospitalID)
	if i < 0 || !s.hasItemLocked(key.ItemID) {
		return CellView{}, ErrNotFound
	}
	return s.cellViewLocked(key, s.hospitals[i].Active, blackWhite), nil
}

func (s *Store) cellViewLocked(key CellKey, hospitalActive, blackWhite bool) CellView {
	c := s.cells[key]
	pvas := s.pvas[key]
	view := CellView{
		HospitalID:      key.HospitalID,
		ItemID:          key.ItemID,
		Display:         Display(EffectiveStatus(c, hospitalActive), blackWhite),
		FutureOverloads: []OverloadWindow{},
		PVACount:        len(pvas),
		PVACategories:   CountByCategory(pvas),
	}
	if c != nil {
		view.StoredStatus = c.Status
		view.Available = c.Available || !hospitalActive
		view.Comment = c.Comment
		view.LastUpdate = c.LastUpdate
		view.UpdatedBy = c.UpdatedBy
		view.SkipAutoFree = c.SkipAutoFree
		view.FutureOverloads = append(view.FutureOverloads, c.FutureOverloads...)
	}
	return view
}

// LegendEntry describes one status for the legend dialog
type LegendEntry struct {
	StatusInfo
	Background string `json:"background"`
}

// Legend lists every status and triage category with its display attributes
func Legend() ([]LegendEntry, []TriageInfo) {
	entries := make([]LegendEntry, 0, len(AllStatuses))
	for _, st := range AllStatuses {
		entries = append(entries, LegendEntry{StatusInfo: st.Info(), Background: Display(st, false).Background})
	}
	return entries, append([]TriageInfo(nil), TriageCategories...)
}
