package matrix

import (
	"sync"
	"time"
)

// Store is the in-memory matrix state: the registries, the cells and the PVA lists.
// It is owned by a single controller; reads may run concurrently with each other.
type Store struct {
	mu         sync.RWMutex
	ids        *IDGenerator
	now        func() time.Time
	hospitals  []Hospital
	capacities []Item
	services   []Item
	cells      map[CellKey]*Cell
	pvas       map[CellKey][]PVA
	system     SystemConfig
	lastUpdate time.Time
}

// Snapshot is the full state used to seed a store
type Snapshot struct {
	Hospitals  []Hospital
	Capacities []Item
	Services   []Item
	Cells      []Cell
	PVAs       map[CellKey][]PVA
	System     *SystemConfig
}

func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		ids:    NewIDGenerator(now),
		now:    now,
		cells:  make(map[CellKey]*Cell),
		pvas:   make(map[CellKey][]PVA),
		system: DefaultSystemConfig(),
	}
}

// NextID allocates an id for a new hospital, item or PVA
func (s *Store) NextID() int64 {
	return s.ids.Next()
}

// Seed replaces the whole state. Missing cells for known pairs are created with defaults.
func (s *Store) Seed(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hospitals = append([]Hospital(nil), snap.Hospitals...)
	s.capacities = append([]Item(nil), snap.Capacities...)
	s.services = append([]Item(nil), snap.Services...)
	s.cells = make(map[CellKey]*Cell, len(snap.Cells))
	s.pvas = make(map[CellKey][]PVA, len(snap.PVAs))

	for _, h := range s.hospitals {
		s.ids.Observe(h.ID)
	}
	for _, it := range s.allItemsLocked() {
		s.ids.Observe(it.ID)
	}
	for i := range snap.Cells {
		c := snap.Cells[i]
		if !s.hasHospitalLocked(c.HospitalID) || !s.hasItemLocked(c.ItemID) {
			continue
		}
		s.cells[c.Key()] = &c
	}
	for key, list := range snap.PVAs {
		if !s.hasHospitalLocked(key.HospitalID) || !s.hasItemLocked(key.ItemID) {
			continue
		}
		for _, p := range list {
			s.ids.Observe(p.ID)
		}
		s.pvas[key] = append([]PVA(nil), list...)
	}
	for _, h := range s.hospitals {
		s.ensureRowLocked(h.ID)
	}
	if snap.System != nil {
		s.system = snap.System.Normalize()
	}
}

// Hospitals returns the hospital registry in insertion order
func (s *Store) Hospitals() []Hospital {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]Hospital, 0, len(s.hospitals)), s.hospitals...)
}

// Hospital looks up a hospital by id
func (s *Store) Hospital(id int64) (Hospital, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.hospitalIndexLocked(id)
	if i < 0 {
		return Hospital{}, false
	}
	return s.hospitals[i], true
}

// Items returns one registry, or capacities followed by services when category is empty
func (s *Store) Items(category ItemCategory) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch category {
	case CategoryCapacity:
		return append(make([]Item, 0, len(s.capacities)), s.capacities...)
	case CategoryService:
		return append(make([]Item, 0, len(s.services)), s.services...)
	}
	return s.allItemsLocked()
}

// Item looks up a capacity type or service group by id
func (s *Store) Item(id int64) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.allItemsLocked() {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// AddHospital validates h, assigns an id when h.ID is zero and appends it.
// A default cell is created for every existing item.
func (s *Store) AddHospital(h Hospital) (Hospital, error) {
	if err := ValidateHospital(h); err != nil {
		return Hospital{}, err
	}
	if h.ID == 0 {
		h.ID = s.ids.Next()
	} else {
		s.ids.Observe(h.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasHospitalLocked(h.ID) {
		return Hospital{}, ErrDuplicateID
	}
	s.hospitals = append(s.hospitals, h)
	s.ensureRowLocked(h.ID)
	s.touchLocked()
	return h, nil
}

// EditHospital replaces the hospital with h.ID in place. It reports false when no such hospital exists.
func (s *Store) EditHospital(h Hospital) (bool, error) {
	if err := ValidateHospital(h); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.hospitalIndexLocked(h.ID)
	if i < 0 {
		return false, nil
	}
	s.hospitals[i] = h
	s.touchLocked()
	return true, nil
}

// DeleteHospital removes a hospital together with its cells and PVA lists
func (s *Store) DeleteHospital(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.hospitalIndexLocked(id)
	if i < 0 {
		return false
	}
	s.hospitals = append(s.hospitals[:i], s.hospitals[i+1:]...)
	for key := range s.cells {
		if key.HospitalID == id {
			delete(s.cells, key)
		}
	}
	for key := range s.pvas {
		if key.HospitalID == id {
			delete(s.pvas, key)
		}
	}
	s.touchLocked()
	return true
}

// AddItem appends a capacity type or service group, creating a default cell for every hospital
func (s *Store) AddItem(item Item) (Item, error) {
	if err := ValidateItem(item); err != nil {
		return Item{}, err
	}
	if item.ID == 0 {
		item.ID = s.ids.Next()
	} else {
		s.ids.Observe(item.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasItemLocked(item.ID) {
		return Item{}, ErrDuplicateID
	}
	reg := s.registryLocked(item.Category)
	*reg = append(*reg, item)
	for _, h := range s.hospitals {
		s.ensureCellLocked(CellKey{HospitalID: h.ID, ItemID: item.ID})
	}
	s.touchLocked()
	return item, nil
}

// EditItem replaces the entry with item.ID in the registry named by item.Category
func (s *Store) EditItem(item Item) (bool, error) {
	if err := ValidateItem(item); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	reg := s.registryLocked(item.Category)
	for i := range *reg {
		if (*reg)[i].ID == item.ID {
			(*reg)[i] = item
			s.touchLocked()
			return true, nil
		}
	}
	return false, nil
}

// DeleteItem removes an item from the given registry together with its cells and PVA lists
func (s *Store) DeleteItem(category ItemCategory, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !category.Valid() {
		return false
	}
	reg := s.registryLocked(category)
	found := false
	for i := range *reg {
		if (*reg)[i].ID == id {
			*reg = append((*reg)[:i], (*reg)[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for key := range s.cells {
		if key.ItemID == id {
			delete(s.cells, key)
		}
	}
	for key := range s.pvas {
		if key.ItemID == id {
			delete(s.pvas, key)
		}
	}
	s.touchLocked()
	return true
}

// Cell returns the stored cell for key
func (s *Store) Cell(key CellKey) (Cell, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cells[key]
	if !ok {
		return Cell{}, false
	}
	return copyCell(c), true
}

// Cells returns every stored cell
func (s *Store) Cells() []Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Cell, 0, len(s.cells))
	for _, h := range s.hospitals {
		for _, it := range s.allItemsLocked() {
			if c, ok := s.cells[CellKey{HospitalID: h.ID, ItemID: it.ID}]; ok {
				out = append(out, copyCell(c))
			}
		}
	}
	return out
}

// PutCells stores fully computed cells as they are. Every cell must belong to a known pair.
func (s *Store) PutCells(cells ...Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cells {
		if !s.hasHospitalLocked(c.HospitalID) || !s.hasItemLocked(c.ItemID) {
			return ErrNotFound
		}
	}
	for _, c := range cells {
		stored := copyCell(&c)
		s.cells[c.Key()] = &stored
		if c.LastUpdate.After(s.lastUpdate) {
			s.lastUpdate = c.LastUpdate
		}
	}
	return nil
}

// PlanAutoFree returns the cells an auto-free run at the given time would change, without changing them.
// Cells of inactive hospitals, unavailable cells, opted-out cells and free cells are left alone.
func (s *Store) PlanAutoFree(by string, at time.Time) []Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var changed []Cell
	for _, h := range s.hospitals {
		if !h.Active {
			continue
		}
		for _, it := range s.allItemsLocked() {
			c, ok := s.cells[CellKey{HospitalID: h.ID, ItemID: it.ID}]
			if !ok || !c.Available || c.SkipAutoFree || c.Status == StatusFree {
				continue
			}
			next := copyCell(c)
			next.Status = StatusFree
			next.Comment = ""
			next.FutureOverloads = []OverloadWindow{}
			next.UpdatedBy = by
			next.LastUpdate = at
			changed = append(changed, next)
		}
	}
	return changed
}

// PVAs returns the pre-notifications of a cell in insertion order
func (s *Store) PVAs(key CellKey) []PVA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]PVA, 0, len(s.pvas[key])), s.pvas[key]...)
}

// SortedPVAs returns the pre-notifications of a cell in triage order
func (s *Store) SortedPVAs(key CellKey) []PVA {
	return SortPVAs(s.PVAs(key))
}

// AddPVA appends a pre-notification to a cell
func (s *Store) AddPVA(key CellKey, p PVA) (PVA, error) {
	if err := ValidatePVA(p); err != nil {
		return PVA{}, err
	}
	if p.ID == 0 {
		p.ID = s.ids.Next()
	} else {
		s.ids.Observe(p.ID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	if p.ArrivalTime.IsZero() {
		p.ArrivalTime = p.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasHospitalLocked(key.HospitalID) || !s.hasItemLocked(key.ItemID) {
		return PVA{}, ErrNotFound
	}
	for _, existing := range s.pvas[key] {
		if existing.ID == p.ID {
			return PVA{}, ErrDuplicateID
		}
	}
	s.pvas[key] = append(s.pvas[key], p)
	s.touchLocked()
	return p, nil
}

// EditPVA replaces the pre-notification with p.ID in place
func (s *Store) EditPVA(key CellKey, p PVA) (bool, error) {
	if err := ValidatePVA(p); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.pvas[key]
	for i := range list {
		if list[i].ID == p.ID {
			list[i] = p
			s.touchLocked()
			return true, nil
		}
	}
	return false, nil
}

// DeletePVA removes the pre-notification with id from a cell
func (s *Store) DeletePVA(key CellKey, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.pvas[key]
	for i := range list {
		if list[i].ID == id {
			s.pvas[key] = append(list[:i:i], list[i+1:]...)
			s.touchLocked()
			return true
		}
	}
	return false
}

// System returns the current system configuration
func (s *Store) System() SystemConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.system.Clone()
}

// SetSystem replaces the system configuration after clamping
func (s *Store) SetSystem(c SystemConfig) (SystemConfig, error) {
	if err := ValidateSystemConfig(c); err != nil {
		return SystemConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.system = c.Normalize()
	return s.system.Clone(), nil
}

// LastUpdate is the time of the latest committed change
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Statistics counts available cells and their countable statuses.
// Cells of inactive hospitals are counted as available but never land in a status bucket.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Statistics
	for key, c := range s.cells {
		i := s.hospitalIndexLocked(key.HospitalID)
		if i < 0 {
			continue
		}
		active := s.hospitals[i].Active
		if active && !c.Available {
			continue
		}
		st.Total++
		if !active {
			continue
		}
		switch c.Status {
		case StatusFree:
			st.Free++
		case StatusLimited:
			st.Limited++
		case StatusOverloaded:
			st.Overloaded++
		case StatusIncapacitated:
			st.Incapacitated++
		}
	}
	for _, list := range s.pvas {
		st.TotalPVA += len(list)
	}
	return st
}

func (s *Store) touchLocked() {
	s.lastUpdate = s.now()
}

func (s *Store) hospitalIndexLocked(id int64) int {
	for i := range s.hospitals {
		if s.hospitals[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) hasHospitalLocked(id int64) bool {
	return s.hospitalIndexLocked(id) >= 0
}

func (s *Store) hasItemLocked(id int64) bool {
	for _, it := range s.capacities {
		if it.ID == id {
			return true
		}
	}
	for _, it := range s.services {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) allItemsLocked() []Item {
	out := make([]Item, 0, len(s.capacities)+len(s.services))
	out = append(out, s.capacities...)
	return append(out, s.services...)
}

func (s *Store) registryLocked(category ItemCategory) *[]Item {
	if category == CategoryService {
		return &s.services
	}
	return &s.capacities
}

func (s *Store) ensureRowLocked(hospitalID int64) {
	for _, it := range s.allItemsLocked() {
		s.ensureCellLocked(CellKey{HospitalID: hospitalID, ItemID: it.ID})
	}
}

func (s *Store) ensureCellLocked(key CellKey) *Cell {
	if c, ok := s.cells[key]; ok {
		return c
	}
	c := &Cell{
		HospitalID:      key.HospitalID,
		ItemID:          key.ItemID,
		Status:          StatusFree,
		Available:       true,
		LastUpdate:      s.now(),
		FutureOverloads: []OverloadWindow{},
	}
	s.cells[key] = c
	return c
}

func copyCell(c *Cell) Cell {
	out := *c
	out.FutureOverloads = append([]OverloadWindow{}, c.FutureOverloads...)
	return out
}
