package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/models"
	"krankenhaus-matrix/internal/notify"
	"krankenhaus-matrix/internal/repository"

	"go.uber.org/zap"
)

var (
	// ErrConfirmationRequired is returned by deletes that were not confirmed
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrAccessDenied is returned when the actor's role may not perform the change
	ErrAccessDenied = errors.New("access denied")
)

// Actor is the authenticated user behind a change
type Actor struct {
	UserID   uint
	Username string
	Role     string
}

// SystemActor is used for scheduler changes
func SystemActor(name string) Actor {
	return Actor{Username: name, Role: models.RoleAdmin}
}

func (a Actor) name() string {
	if a.Username == "" {
		return "System"
	}
	return a.Username
}

func (a Actor) auditID() *uint {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

func (a Actor) isAdmin() bool {
	return a.Role == models.RoleAdmin
}

// canWrite reports whether the actor may change cells and pre-notifications.
// Hospital users are further restricted to their assigned hospitals by the HTTP layer.
func (a Actor) canWrite() bool {
	switch a.Role {
	case models.RoleAdmin, models.RoleDispatcher, models.RoleHospital:
		return true
	}
	return false
}

// MatrixRepositories groups the persistence the matrix service writes through
type MatrixRepositories struct {
	Hospitals *repository.HospitalRepository
	Items     *repository.ItemRepository
	Cells     *repository.CellRepository
	PVAs      *repository.PreNotificationRepository
	System    *repository.SystemSettingsRepository
	Audit     *repository.AuditRepository
}

// MatrixService owns the matrix state. Every change is validated, persisted,
// applied to the in-memory store, audited and published, one at a time.
type MatrixService struct {
	mu        sync.Mutex
	store     *matrix.Store
	repos     MatrixRepositories
	publisher notify.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewMatrixService(repos MatrixRepositories, publisher notify.Publisher, log *zap.Logger, now func() time.Time) *MatrixService {
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MatrixService{
		store:     matrix.NewStore(now),
		repos:     repos,
		publisher: publisher,
		log:       log.Named("matrix"),
		now:       now,
	}
}

// Load seeds the in-memory state from the database
func (s *MatrixService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hospitals, err := s.repos.Hospitals.GetAllHospitals()
	if err != nil {
		return fmt.Errorf("load hospitals: %w", err)
	}
	capacities, err := s.repos.Items.GetItemsByCategory(string(matrix.CategoryCapacity))
	if err != nil {
		return fmt.Errorf("load capacity types: %w", err)
	}
	services, err := s.repos.Items.GetItemsByCategory(string(matrix.CategoryService))
	if err != nil {
		return fmt.Errorf("load service groups: %w", err)
	}
	cells, err := s.repos.Cells.GetAllCells()
	if err != nil {
		return fmt.Errorf("load cells: %w", err)
	}
	pvas, err := s.repos.PVAs.GetAllPreNotifications()
	if err != nil {
		return fmt.Errorf("load pre-notifications: %w", err)
	}
	settings, err := s.repos.System.GetSettings()
	if err != nil {
		return fmt.Errorf("load system settings: %w", err)
	}

	snap := matrix.Snapshot{
		Hospitals:  make([]matrix.Hospital, 0, len(hospitals)),
		Capacities: make([]matrix.Item, 0, len(capacities)),
		Services:   make([]matrix.Item, 0, len(services)),
		Cells:      make([]matrix.Cell, 0, len(cells)),
		PVAs:       make(map[matrix.CellKey][]matrix.PVA),
	}
	for _, h := range hospitals {
		snap.Hospitals = append(snap.Hospitals, h.ToDomain())
	}
	for _, it := range capacities {
		snap.Capacities = append(snap.Capacities, it.ToDomain())
	}
	for _, it := range services {
		snap.Services = append(snap.Services, it.ToDomain())
	}
	for _, c := range cells {
		snap.Cells = append(snap.Cells, c.ToDomain())
	}
	for _, p := range pvas {
		snap.PVAs[p.Key()] = append(snap.PVAs[p.Key()], p.ToDomain())
	}
	if settings != nil {
		cfg := settings.ToDomain()
		snap.System = &cfg
	}

	s.store.Seed(snap)
	s.log.Info("matrix loaded",
		zap.Int("hospitals", len(hospitals)),
		zap.Int("capacity_types", len(capacities)),
		zap.Int("service_groups", len(services)),
		zap.Int("cells", len(cells)),
		zap.Int("pre_notifications", len(pvas)),
	)
	return nil
}

// View returns the matrix of one tab with display attributes
func (s *MatrixService) View(category matrix.ItemCategory, blackWhite bool) matrix.View {
	return s.store.View(category, blackWhite)
}

func (s *MatrixService) Statistics() matrix.Statistics {
	return s.store.Statistics()
}

func (s *MatrixService) CellView(key matrix.CellKey, blackWhite bool) (matrix.CellView, error) {
	return s.store.CellView(key, blackWhite)
}

// CellPVAs returns the pre-notifications of a cell in triage order
func (s *MatrixService) CellPVAs(key matrix.CellKey) ([]matrix.PVA, error) {
	if _, ok := s.store.Cell(key); !ok {
		return nil, matrix.ErrNotFound
	}
	return s.store.SortedPVAs(key), nil
}

func (s *MatrixService) Hospitals() []matrix.Hospital {
	return s.store.Hospitals()
}

func (s *MatrixService) Hospital(id int64) (matrix.Hospital, bool) {
	return s.store.Hospital(id)
}

func (s *MatrixService) Items(category matrix.ItemCategory) []matrix.Item {
	return s.store.Items(category)
}

func (s *MatrixService) System() matrix.SystemConfig {
	return s.store.System()
}

func (s *MatrixService) LastUpdate() time.Time {
	return s.store.LastUpdate()
}

// UpdateCell sets the status of one cell and stamps it with the actor and time
func (s *MatrixService) UpdateCell(actor Actor, key matrix.CellKey, u matrix.CellUpdate) (matrix.Cell, error) {
	if !actor.canWrite() {
		return matrix.Cell{}, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated matrix.Cell
	form := matrix.NewForm()
	err := form.Submit(
		func() error { return matrix.ValidateCellUpdate(u) },
		func(int64) error {
			cur, ok := s.store.Cell(key)
			if !ok {
				return matrix.ErrNotFound
			}
			u.UpdatedBy = actor.name()
			next := cur.Apply(u, s.now())
			if err := s.repos.Cells.SaveCells(models.CellFromDomain(next)); err != nil {
				return fmt.Errorf("save cell %d/%d: %w", key.HospitalID, key.ItemID, err)
			}
			if err := s.store.PutCells(next); err != nil {
				return err
			}
			updated = next
			return nil
		},
	)
	if err != nil {
		return matrix.Cell{}, err
	}

	s.audit(actor, "cell_update", fmt.Sprintf("hospital=%d item=%d status=%s available=%v", key.HospitalID, key.ItemID, updated.Status, updated.Available))
	s.publish(notify.CellStatusSubject(key.HospitalID, key.ItemID), notify.Event{Type: "cell", Action: "update", Actor: actor.name(), Data: updated})
	return updated, nil
}

// AddPVA appends a pre-notification to a cell
func (s *MatrixService) AddPVA(actor Actor, key matrix.CellKey, p matrix.PVA) (matrix.PVA, error) {
	if !actor.canWrite() {
		return matrix.PVA{}, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	form := matrix.NewForm()
	err := form.Submit(
		func() error { return matrix.ValidatePVA(p) },
		func(int64) error {
			if _, ok := s.store.Cell(key); !ok {
				return matrix.ErrNotFound
			}
			p.ID = s.store.NextID()
			now := s.now()
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			if p.ArrivalTime.IsZero() {
				p.ArrivalTime = p.CreatedAt
			}
			if p.CreatedBy == "" {
				p.CreatedBy = actor.name()
			}
			if err := s.repos.PVAs.CreatePreNotification(models.PreNotificationFromDomain(key, p)); err != nil {
				return fmt.Errorf("create pre-notification: %w", err)
			}
			added, err := s.store.AddPVA(key, p)
			if err != nil {
				return err
			}
			p = added
			return nil
		},
	)
	if err != nil {
		return matrix.PVA{}, err
	}

	s.audit(actor, "pva_add", fmt.Sprintf("hospital=%d item=%d pva=%d category=%d", key.HospitalID, key.ItemID, p.ID, p.TriageCategory))
	s.publishPVA(actor, key, "add")
	return p, nil
}

// EditPVA replaces a pre-notification of a cell. It reports false when the cell has no such entry.
func (s *MatrixService) EditPVA(actor Actor, key matrix.CellKey, p matrix.PVA) (bool, error) {
	if !actor.canWrite() {
		return false, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	form := matrix.NewForm()
	if err := form.Edit(p.ID); err != nil {
		return false, err
	}
	err := form.Submit(
		func() error { return matrix.ValidatePVA(p) },
		func(id int64) error {
			existing, ok := s.findPVA(key, id)
			if !ok {
				return nil
			}
			p.ID = id
			if p.CreatedAt.IsZero() {
				p.CreatedAt = existing.CreatedAt
			}
			if p.CreatedBy == "" {
				p.CreatedBy = existing.CreatedBy
			}
			if p.ArrivalTime.IsZero() {
				p.ArrivalTime = existing.ArrivalTime
			}
			if err := s.repos.PVAs.UpdatePreNotification(models.PreNotificationFromDomain(key, p)); err != nil {
				return fmt.Errorf("update pre-notification %d: %w", id, err)
			}
			var err error
			found, err = s.store.EditPVA(key, p)
			return err
		},
	)
	if err != nil || !found {
		return false, err
	}

	s.audit(actor, "pva_edit", fmt.Sprintf("hospital=%d item=%d pva=%d category=%d", key.HospitalID, key.ItemID, p.ID, p.TriageCategory))
	s.publishPVA(actor, key, "edit")
	return true, nil
}

// DeletePVA removes a pre-notification from a cell
func (s *MatrixService) DeletePVA(actor Actor, key matrix.CellKey, id int64, confirm bool) (bool, error) {
	if !actor.canWrite() {
		return false, ErrAccessDenied
	}
	if !confirm {
		return false, ErrConfirmationRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findPVA(key, id); !ok {
		return false, nil
	}
	if err := s.repos.PVAs.DeletePreNotification(key.HospitalID, key.ItemID, id); err != nil {
		return false, fmt.Errorf("delete pre-notification %d: %w", id, err)
	}
	s.store.DeletePVA(key, id)

	s.audit(actor, "pva_delete", fmt.Sprintf("hospital=%d item=%d pva=%d", key.HospitalID, key.ItemID, id))
	s.publishPVA(actor, key, "delete")
	return true, nil
}

// AutoFree resets every eligible cell to free and returns the changed cells
func (s *MatrixService) AutoFree(by string) ([]matrix.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.store.PlanAutoFree(by, s.now())
	if len(changed) == 0 {
		return changed, nil
	}

	if err := s.repos.Cells.SaveCells(cellRows(changed)...); err != nil {
		return nil, fmt.Errorf("auto-free cells: %w", err)
	}
	if err := s.store.PutCells(changed...); err != nil {
		return nil, err
	}

	actor := SystemActor(by)
	s.audit(actor, "cells_auto_free", fmt.Sprintf("cells=%d", len(changed)))
	for _, c := range changed {
		s.publish(notify.CellStatusSubject(c.HospitalID, c.ItemID), notify.Event{Type: "cell", Action: "auto_free", Actor: actor.name(), Data: c})
	}
	s.log.Info("auto-free applied", zap.Int("cells", len(changed)))
	return changed, nil
}

// PublishRefresh tells dashboards to re-read the matrix
func (s *MatrixService) PublishRefresh() {
	s.publish(notify.SubjectRefresh, notify.Event{
		Type: "refresh",
		Data: map[string]interface{}{"last_update": s.store.LastUpdate()},
	})
}

func (s *MatrixService) findPVA(key matrix.CellKey, id int64) (matrix.PVA, bool) {
	for _, p := range s.store.PVAs(key) {
		if p.ID == id {
			return p, true
		}
	}
	return matrix.PVA{}, false
}

func (s *MatrixService) publishPVA(actor Actor, key matrix.CellKey, action string) {
	list := s.store.PVAs(key)
	s.publish(notify.CellPVASubject(key.HospitalID, key.ItemID), notify.Event{
		Type:   "pva",
		Action: action,
		Actor:  actor.name(),
		Data: map[string]interface{}{
			"hospital_id": key.HospitalID,
			"item_id":     key.ItemID,
			"count":       len(list),
			"categories":  matrix.CountByCategory(list),
		},
	})
}

func (s *MatrixService) publish(subject string, event notify.Event) {
	if !s.store.System().EnablePushNotifications {
		return
	}
	event.Timestamp = s.now()
	if err := s.publisher.Publish(subject, event); err != nil {
		s.log.Warn("publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

func (s *MatrixService) audit(actor Actor, action, details string) {
	if err := s.repos.Audit.CreateAuditLog(actor.auditID(), action, details); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}
