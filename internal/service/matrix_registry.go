package service

import (
	"fmt"

	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/models"
	"krankenhaus-matrix/internal/notify"

	"go.uber.org/zap"
)

// AddHospital appends a hospital and creates a free cell for every item
func (s *MatrixService) AddHospital(actor Actor, h matrix.Hospital) (matrix.Hospital, error) {
	if !actor.isAdmin() {
		return matrix.Hospital{}, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	form := matrix.NewForm()
	err := form.Submit(
		func() error { return matrix.ValidateHospital(h) },
		func(int64) error {
			h.ID = s.store.NextID()
			cells := s.defaultCells(func(it matrix.Item) matrix.CellKey {
				return matrix.CellKey{HospitalID: h.ID, ItemID: it.ID}
			})
			if err := s.repos.Hospitals.CreateHospital(models.HospitalFromDomain(h), cellRows(cells)); err != nil {
				return fmt.Errorf("create hospital: %w", err)
			}
			if _, err := s.store.AddHospital(h); err != nil {
				return err
			}
			return s.store.PutCells(cells...)
		},
	)
	if err != nil {
		return matrix.Hospital{}, err
	}

	s.audit(actor, "hospital_add", fmt.Sprintf("Created hospital %s (ID: %d)", h.Name, h.ID))
	s.publishRegistry(actor, KindHospital, ActionAdd, h)
	return h, nil
}

// EditHospital replaces a hospital in place. It reports false when the id is unknown.
func (s *MatrixService) EditHospital(actor Actor, h matrix.Hospital) (bool, error) {
	if !actor.isAdmin() {
		return false, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	form := matrix.NewForm()
	if err := form.Edit(h.ID); err != nil {
		return false, err
	}
	err := form.Submit(
		func() error { return matrix.ValidateHospital(h) },
		func(id int64) error {
			if _, ok := s.store.Hospital(id); !ok {
				return nil
			}
			h.ID = id
			if err := s.repos.Hospitals.UpdateHospital(models.HospitalFromDomain(h)); err != nil {
				return fmt.Errorf("update hospital %d: %w", id, err)
			}
			var err error
			found, err = s.store.EditHospital(h)
			return err
		},
	)
	if err != nil || !found {
		return false, err
	}

	s.audit(actor, "hospital_edit", fmt.Sprintf("Updated hospital %s (ID: %d, active: %v)", h.Name, h.ID, h.Active))
	s.publishRegistry(actor, KindHospital, ActionEdit, h)
	return true, nil
}

// DeleteHospital removes a hospital with its cells and pre-notifications
func (s *MatrixService) DeleteHospital(actor Actor, id int64, confirm bool) (bool, error) {
	if !actor.isAdmin() {
		return false, ErrAccessDenied
	}
	if !confirm {
		return false, ErrConfirmationRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.store.Hospital(id)
	if !ok {
		return false, nil
	}
	if err := s.repos.Hospitals.DeleteHospital(id); err != nil {
		return false, fmt.Errorf("delete hospital %d: %w", id, err)
	}
	s.store.DeleteHospital(id)

	s.audit(actor, "hospital_delete", fmt.Sprintf("Deleted hospital %s (ID: %d)", h.Name, id))
	s.publishRegistry(actor, KindHospital, ActionDelete, map[string]int64{"id": id})
	return true, nil
}

// AddItem appends a capacity type or service group and creates a free cell for every hospital
func (s *MatrixService) AddItem(actor Actor, item matrix.Item) (matrix.Item, error) {
	if !actor.isAdmin() {
		return matrix.Item{}, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	form := matrix.NewForm()
	err := form.Submit(
		func() error { return matrix.ValidateItem(item) },
		func(int64) error {
			item.ID = s.store.NextID()
			cells := make([]matrix.Cell, 0)
			for _, h := range s.store.Hospitals() {
				cells = append(cells, s.defaultCell(matrix.CellKey{HospitalID: h.ID, ItemID: item.ID}))
			}
			if err := s.repos.Items.CreateItem(models.ItemFromDomain(item), cellRows(cells)); err != nil {
				return fmt.Errorf("create %s: %w", item.Category, err)
			}
			if _, err := s.store.AddItem(item); err != nil {
				return err
			}
			return s.store.PutCells(cells...)
		},
	)
	if err != nil {
		return matrix.Item{}, err
	}

	s.audit(actor, string(item.Category)+"_add", fmt.Sprintf("Created %s %s (ID: %d)", item.Category, item.Name, item.ID))
	s.publishRegistry(actor, Kind(item.Category), ActionAdd, item)
	return item, nil
}

// EditItem replaces an item within its registry. It reports false when the id is unknown there.
func (s *MatrixService) EditItem(actor Actor, item matrix.Item) (bool, error) {
	if !actor.isAdmin() {
		return false, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	form := matrix.NewForm()
	if err := form.Edit(item.ID); err != nil {
		return false, err
	}
	err := form.Submit(
		func() error { return matrix.ValidateItem(item) },
		func(id int64) error {
			existing, ok := s.store.Item(id)
			if !ok || existing.Category != item.Category {
				return nil
			}
			item.ID = id
			if err := s.repos.Items.UpdateItem(models.ItemFromDomain(item)); err != nil {
				return fmt.Errorf("update %s %d: %w", item.Category, id, err)
			}
			var err error
			found, err = s.store.EditItem(item)
			return err
		},
	)
	if err != nil || !found {
		return false, err
	}

	s.audit(actor, string(item.Category)+"_edit", fmt.Sprintf("Updated %s %s (ID: %d)", item.Category, item.Name, item.ID))
	s.publishRegistry(actor, Kind(item.Category), ActionEdit, item)
	return true, nil
}

// DeleteItem removes an item from its registry with its cells and pre-notifications
func (s *MatrixService) DeleteItem(actor Actor, category matrix.ItemCategory, id int64, confirm bool) (bool, error) {
	if !actor.isAdmin() {
		return false, ErrAccessDenied
	}
	if !confirm {
		return false, ErrConfirmationRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.store.Item(id)
	if !ok || item.Category != category {
		return false, nil
	}
	if err := s.repos.Items.DeleteItem(id); err != nil {
		return false, fmt.Errorf("delete %s %d: %w", category, id, err)
	}
	s.store.DeleteItem(category, id)

	s.audit(actor, string(category)+"_delete", fmt.Sprintf("Deleted %s %s (ID: %d)", category, item.Name, id))
	s.publishRegistry(actor, Kind(category), ActionDelete, map[string]int64{"id": id})
	return true, nil
}

// UpdateSystem replaces the system configuration. The refresh interval is clamped to 1..60 minutes.
func (s *MatrixService) UpdateSystem(actor Actor, cfg matrix.SystemConfig) (matrix.SystemConfig, error) {
	if !actor.isAdmin() {
		return matrix.SystemConfig{}, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var saved matrix.SystemConfig
	form := matrix.NewForm()
	err := form.Submit(
		func() error { return matrix.ValidateSystemConfig(cfg) },
		func(int64) error {
			normalized := cfg.Normalize()
			for _, entry := range normalized.AutoFreeTimes {
				if _, err := matrix.ParseClock(entry); err != nil {
					s.log.Warn("auto-free time will be ignored", zap.String("entry", entry))
				}
			}
			if err := s.repos.System.SaveSettings(models.SystemSettingsFromDomain(normalized)); err != nil {
				return fmt.Errorf("save system settings: %w", err)
			}
			var err error
			saved, err = s.store.SetSystem(normalized)
			return err
		},
	)
	if err != nil {
		return matrix.SystemConfig{}, err
	}

	s.audit(actor, "system_update", fmt.Sprintf("refresh_interval=%d push=%v auto_free=%v", saved.RefreshInterval, saved.EnablePushNotifications, saved.AutoFreeTimes))
	s.publishRegistry(actor, KindSystem, ActionUpdate, saved)
	return saved, nil
}

func (s *MatrixService) defaultCell(key matrix.CellKey) matrix.Cell {
	return matrix.Cell{
		HospitalID:      key.HospitalID,
		ItemID:          key.ItemID,
		Status:          matrix.StatusFree,
		Available:       true,
		LastUpdate:      s.now(),
		FutureOverloads: []matrix.OverloadWindow{},
	}
}

func (s *MatrixService) defaultCells(keyFor func(matrix.Item) matrix.CellKey) []matrix.Cell {
	items := s.store.Items("")
	cells := make([]matrix.Cell, 0, len(items))
	for _, it := range items {
		cells = append(cells, s.defaultCell(keyFor(it)))
	}
	return cells
}

func cellRows(cells []matrix.Cell) []*models.MatrixCell {
	rows := make([]*models.MatrixCell, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, models.CellFromDomain(c))
	}
	return rows
}

func (s *MatrixService) publishRegistry(actor Actor, kind Kind, action Action, data interface{}) {
	s.publish(notify.RegistrySubject(string(kind)), notify.Event{
		Type:   string(kind),
		Action: string(action),
		Actor:  actor.name(),
		Data:   data,
	})
}
