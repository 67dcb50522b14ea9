package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"krankenhaus-matrix/internal/database/dbtest"
	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/models"
	"krankenhaus-matrix/internal/notify"
	"krankenhaus-matrix/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []notify.Event
	fail     error
}

func (p *recordingPublisher) Publish(subject string, event notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, event)
	return p.fail
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var (
	admin      = Actor{UserID: 1, Username: "admin", Role: models.RoleAdmin}
	dispatcher = Actor{UserID: 2, Username: "leitstelle", Role: models.RoleDispatcher}
	hospUser   = Actor{UserID: 3, Username: "kh-nord", Role: models.RoleHospital}
)

type fixture struct {
	db    *gorm.DB
	svc   *MatrixService
	pub   *recordingPublisher
	clock *clock
	repos MatrixRepositories
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	repos := MatrixRepositories{
		Hospitals: repository.NewHospitalRepo(db),
		Items:     repository.NewItemRepo(db),
		Cells:     repository.NewCellRepo(db),
		PVAs:      repository.NewPreNotificationRepo(db),
		System:    repository.NewSystemSettingsRepo(db),
		Audit:     repository.NewAuditRepo(db),
	}
	clk := &clock{now: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)}
	pub := &recordingPublisher{}
	svc := NewMatrixService(repos, pub, nil, clk.Now)
	require.NoError(t, svc.Load())
	return &fixture{db: db, svc: svc, pub: pub, clock: clk, repos: repos}
}

// reload builds a second service on the same database, as after a restart
func (f *fixture) reload(t *testing.T) *MatrixService {
	t.Helper()
	svc := NewMatrixService(f.repos, notify.Nop{}, nil, f.clock.Now)
	require.NoError(t, svc.Load())
	return svc
}

func (f *fixture) grid(t *testing.T) (matrix.Hospital, matrix.Item, matrix.Item) {
	t.Helper()
	h, err := f.svc.AddHospital(admin, matrix.Hospital{Name: "Klinikum Nord", Alias: "KN", Active: true})
	require.NoError(t, err)
	capacity, err := f.svc.AddItem(admin, matrix.Item{Name: "Intensivbetten", Category: matrix.CategoryCapacity})
	require.NoError(t, err)
	svc, err := f.svc.AddItem(admin, matrix.Item{Name: "Herzkatheter", Category: matrix.CategoryService})
	require.NoError(t, err)
	return h, capacity, svc
}

func TestMatrixService_AddPersistsAndSurvivesReload(t *testing.T) {
	f := newFixture(t)
	h, capacity, svc := f.grid(t)

	reloaded := f.reload(t)
	assert.Equal(t, []matrix.Hospital{h}, reloaded.Hospitals())
	assert.Equal(t, []matrix.Item{capacity}, reloaded.Items(matrix.CategoryCapacity))
	assert.Equal(t, []matrix.Item{svc}, reloaded.Items(matrix.CategoryService))

	view, err := reloaded.CellView(matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, matrix.StatusFree, view.Display.Status)
}

func TestMatrixService_ValidationBlocksSave(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddHospital(admin, matrix.Hospital{Name: "   "})
	var verrs matrix.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "name", verrs[0].Field)
	assert.Empty(t, f.svc.Hospitals())

	var count int64
	require.NoError(t, f.db.Model(&models.Hospital{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.pub.Subjects())
}

func TestMatrixService_RegistryRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddHospital(dispatcher, matrix.Hospital{Name: "X"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.AddItem(hospUser, matrix.Item{Name: "X", Category: matrix.CategoryCapacity})
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.UpdateSystem(dispatcher, matrix.DefaultSystemConfig())
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestMatrixService_EditUnknownIsNoop(t *testing.T) {
	f := newFixture(t)
	h, capacity, _ := f.grid(t)

	found, err := f.svc.EditHospital(admin, matrix.Hospital{ID: h.ID + 1000, Name: "Phantom", Active: true})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []matrix.Hospital{h}, f.svc.Hospitals())

	// an item id is only found within its own registry
	found, err = f.svc.EditItem(admin, matrix.Item{ID: capacity.ID, Name: "Umbenannt", Category: matrix.CategoryService})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "Intensivbetten", f.svc.Items(matrix.CategoryCapacity)[0].Name)
}

func TestMatrixService_EditHospitalDeactivates(t *testing.T) {
	f := newFixture(t)
	h, capacity, _ := f.grid(t)

	h.Active = false
	h.Name = "Klinikum Nord (geschlossen)"
	found, err := f.svc.EditHospital(admin, h)
	require.NoError(t, err)
	require.True(t, found)

	reloaded := f.reload(t)
	got, ok := reloaded.Hospital(h.ID)
	require.True(t, ok)
	assert.False(t, got.Active)

	view, err := reloaded.CellView(matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, matrix.StatusInactive, view.Display.Status)
	assert.True(t, view.Display.Striped)
}

func TestMatrixService_DeleteRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	h, _, _ := f.grid(t)

	found, err := f.svc.DeleteHospital(admin, h.ID, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.False(t, found)
	assert.Len(t, f.svc.Hospitals(), 1)

	found, err = f.svc.DeleteHospital(admin, h.ID, true)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = f.svc.DeleteHospital(admin, h.ID, true)
	require.NoError(t, err)
	assert.False(t, found, "second delete is a no-op")
}

func TestMatrixService_DeleteItemCascades(t *testing.T) {
	f := newFixture(t)
	h, capacity, svc := f.grid(t)
	key := matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}

	_, err := f.svc.AddPVA(dispatcher, key, matrix.PVA{TriageCategory: matrix.TriageCritical, PatientInfo: matrix.PatientInfo{Name: "Patient A", Symptoms: "Polytrauma"}})
	require.NoError(t, err)

	found, err := f.svc.DeleteItem(admin, matrix.CategoryCapacity, capacity.ID, true)
	require.NoError(t, err)
	require.True(t, found)

	_, err = f.svc.CellPVAs(key)
	assert.ErrorIs(t, err, matrix.ErrNotFound)

	reloaded := f.reload(t)
	assert.Empty(t, reloaded.Items(matrix.CategoryCapacity))
	assert.Equal(t, 0, reloaded.Statistics().TotalPVA)
	_, err = reloaded.CellView(matrix.CellKey{HospitalID: h.ID, ItemID: svc.ID}, false)
	assert.NoError(t, err)

	var pvaRows int64
	require.NoError(t, f.db.Model(&models.PreNotification{}).Count(&pvaRows).Error)
	assert.Zero(t, pvaRows)
}

func TestMatrixService_UpdateCell(t *testing.T) {
	f := newFixture(t)
	h, capacity, _ := f.grid(t)
	key := matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}

	f.clock.Set(f.clock.Now().Add(10 * time.Minute))
	cell, err := f.svc.UpdateCell(dispatcher, key, matrix.CellUpdate{Status: matrix.StatusOverloaded, Comment: "keine Betten", SkipAutoFree: true})
	require.NoError(t, err)
	assert.Equal(t, "leitstelle", cell.UpdatedBy)
	assert.Equal(t, f.clock.Now(), cell.LastUpdate)

	reloaded := f.reload(t)
	view, err := reloaded.CellView(key, false)
	require.NoError(t, err)
	assert.Equal(t, matrix.StatusOverloaded, view.StoredStatus)
	assert.Equal(t, "keine Betten", view.Comment)
	assert.True(t, view.SkipAutoFree)

	assert.Contains(t, f.pub.Subjects(), notify.CellStatusSubject(h.ID, capacity.ID))
}

func TestMatrixService_UpdateCellRejectsDerivedStatus(t *testing.T) {
	f := newFixture(t)
	h, capacity, _ := f.grid(t)

	_, err := f.svc.UpdateCell(dispatcher, matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}, matrix.CellUpdate{Status: matrix.StatusInactive})
	var verrs matrix.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.UpdateCell(dispatcher, matrix.CellKey{HospitalID: h.ID, ItemID: 424242}, matrix.CellUpdate{Status: matrix.StatusFree})
	assert.ErrorIs(t, err, matrix.ErrNotFound)

	_, err = f.svc.UpdateCell(Actor{Role: "guest"}, matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}, matrix.CellUpdate{Status: matrix.StatusFree})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestMatrixService_PVAOrderingAndLifecycle(t *testing.T) {
	f := newFixture(t)
	h, capacity, _ := f.grid(t)
	key := matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}
	base := f.clock.Now()

	urgent, err := f.svc.AddPVA(dispatcher, key, matrix.PVA{
		TriageCategory: matrix.TriageUrgent,
		PatientInfo:    matrix.PatientInfo{Name: "B", Symptoms: "Fraktur"},
		ArrivalTime:    base.Add(-time.Hour),
	})
	require.NoError(t, err)
	critical, err := f.svc.AddPVA(dispatcher, key, matrix.PVA{
		TriageCategory: matrix.TriageCritical,
		PatientInfo:    matrix.PatientInfo{Name: "A", Symptoms: "Reanimation"},
		ArrivalTime:    base,
	})
	require.NoError(t, err)
	assert.NotEqual(t, urgent.ID, critical.ID)
	assert.Equal(t, "leitstelle", critical.CreatedBy)

	list, err := f.svc.CellPVAs(key)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, critical.ID, list[0].ID, "category beats arrival time")

	urgent.Confirmed = true
	urgent.CreatedBy = ""
	found, err := f.svc.EditPVA(dispatcher, key, urgent)
	require.NoError(t, err)
	require.True(t, found)

	reloaded := f.reload(t)
	list, err = reloaded.CellPVAs(key)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[1].Confirmed)
	assert.Equal(t, "leitstelle", list[1].CreatedBy, "creator is kept on edit")

	_, err = f.svc.DeletePVA(dispatcher, key, urgent.ID, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	found, err = f.svc.DeletePVA(dispatcher, key, urgent.ID, true)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, f.svc.Statistics().TotalPVA)

	assert.Contains(t, f.pub.Subjects(), notify.CellPVASubject(h.ID, capacity.ID))
}

func TestMatrixService_PVAValidation(t *testing.T) {
	f := newFixture(t)
	h, capacity, _ := f.grid(t)

	_, err := f.svc.AddPVA(dispatcher, matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}, matrix.PVA{TriageCategory: matrix.TriageNormal})
	var verrs matrix.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := map[string]bool{}
	for _, fe := range verrs {
		fields[fe.Field] = true
	}
	assert.True(t, fields["patient_info.name"])
	assert.True(t, fields["patient_info.symptoms"])
	assert.Equal(t, 0, f.svc.Statistics().TotalPVA)
}

func TestMatrixService_AutoFree(t *testing.T) {
	f := newFixture(t)
	h, capacity, svc := f.grid(t)
	keep := matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}
	reset := matrix.CellKey{HospitalID: h.ID, ItemID: svc.ID}

	_, err := f.svc.UpdateCell(dispatcher, keep, matrix.CellUpdate{Status: matrix.StatusLimited, SkipAutoFree: true})
	require.NoError(t, err)
	_, err = f.svc.UpdateCell(dispatcher, reset, matrix.CellUpdate{Status: matrix.StatusIncapacitated, Comment: "Stromausfall"})
	require.NoError(t, err)

	changed, err := f.svc.AutoFree("System")
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, reset, changed[0].Key())

	reloaded := f.reload(t)
	view, err := reloaded.CellView(reset, false)
	require.NoError(t, err)
	assert.Equal(t, matrix.StatusFree, view.StoredStatus)
	assert.Equal(t, "System", view.UpdatedBy)
	view, err = reloaded.CellView(keep, false)
	require.NoError(t, err)
	assert.Equal(t, matrix.StatusLimited, view.StoredStatus)

	changed, err = f.svc.AutoFree("System")
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestMatrixService_UpdateSystemClampsAndPersists(t *testing.T) {
	f := newFixture(t)

	cfg := matrix.DefaultSystemConfig()
	cfg.RefreshInterval = 500
	cfg.AutoFreeTimes = []string{"07:00"}
	saved, err := f.svc.UpdateSystem(admin, cfg)
	require.NoError(t, err)
	assert.Equal(t, matrix.MaxRefreshInterval, saved.RefreshInterval)

	reloaded := f.reload(t)
	assert.Equal(t, matrix.MaxRefreshInterval, reloaded.System().RefreshInterval)
	assert.Equal(t, []string{"07:00"}, reloaded.System().AutoFreeTimes)

	cfg.MaxPVAPerDay = -1
	_, err = f.svc.UpdateSystem(admin, cfg)
	var verrs matrix.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestMatrixService_NotificationsFollowSetting(t *testing.T) {
	f := newFixture(t)
	h, capacity, _ := f.grid(t)

	cfg := f.svc.System()
	cfg.EnablePushNotifications = false
	_, err := f.svc.UpdateSystem(admin, cfg)
	require.NoError(t, err)

	before := len(f.pub.Subjects())
	_, err = f.svc.UpdateCell(dispatcher, matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}, matrix.CellUpdate{Status: matrix.StatusLimited})
	require.NoError(t, err)
	f.svc.PublishRefresh()
	assert.Len(t, f.pub.Subjects(), before)
}

func TestMatrixService_PublishFailureDoesNotFailSave(t *testing.T) {
	f := newFixture(t)
	f.pub.fail = errors.New("nats down")

	_, err := f.svc.AddHospital(admin, matrix.Hospital{Name: "St. Josef", Active: true})
	require.NoError(t, err)
	assert.Contains(t, f.pub.Subjects(), notify.RegistrySubject("hospital"))
}

func TestMatrixService_SaveContract(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Save(admin, SaveRequest{Kind: KindHospital, Action: ActionAdd, Payload: json.RawMessage(`{"name":"Marien Hospital","alias":"MH"}`)})
	require.NoError(t, err)
	require.True(t, res.Found)
	h := res.Data.(matrix.Hospital)
	assert.True(t, h.Active, "missing active flag means active")

	res, err = f.svc.Save(admin, SaveRequest{Kind: KindCapacity, Action: ActionAdd, Payload: json.RawMessage(`{"name":"Schockraum"}`)})
	require.NoError(t, err)
	item := res.Data.(matrix.Item)
	assert.Equal(t, matrix.CategoryCapacity, item.Category)

	res, err = f.svc.Save(admin, SaveRequest{Kind: KindService, Action: ActionDelete, Payload: json.RawMessage(`{"id":1}`), Confirm: true})
	require.NoError(t, err)
	assert.False(t, res.Found)

	_, err = f.svc.Save(admin, SaveRequest{Kind: KindHospital, Action: ActionDelete, Payload: json.RawMessage(`{"id":` + jsonInt(h.ID) + `}`)})
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	res, err = f.svc.Save(admin, SaveRequest{Kind: KindSystem, Action: ActionUpdate, Payload: json.RawMessage(`{"refresh_interval":0}`)})
	require.NoError(t, err)
	cfg := res.Data.(matrix.SystemConfig)
	assert.Equal(t, matrix.MinRefreshInterval, cfg.RefreshInterval)
	assert.True(t, cfg.EnablePushNotifications, "fields missing from the payload keep their value")

	_, err = f.svc.Save(admin, SaveRequest{Kind: KindSystem, Action: ActionDelete, Payload: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrUnsupportedSave)

	_, err = f.svc.Save(admin, SaveRequest{Kind: KindHospital, Action: ActionAdd, Payload: json.RawMessage(`[`)})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestMatrixService_RejectedSystemSaveChangesNothing(t *testing.T) {
	f := newFixture(t)
	before := f.svc.System()

	_, err := f.svc.Save(admin, SaveRequest{
		Kind:    KindSystem,
		Action:  ActionUpdate,
		Payload: json.RawMessage(`{"auto_free_times":["01:00","02:00","03:00"],"emergency_contacts":[{"name":"THW","phone":"0"}],"max_pva_per_day":-1}`),
	})
	var verrs matrix.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	assert.Equal(t, before, f.svc.System())
	assert.Equal(t, before, f.reload(t).System())
	assert.Empty(t, f.pub.Subjects())
}

func TestMatrixService_SavePVAContract(t *testing.T) {
	f := newFixture(t)
	h, capacity, _ := f.grid(t)
	key := matrix.CellKey{HospitalID: h.ID, ItemID: capacity.ID}

	res, err := f.svc.SavePVA(dispatcher, key, ActionAdd, matrix.PVA{TriageCategory: matrix.TriageNormal, PatientInfo: matrix.PatientInfo{Name: "C", Symptoms: "Synkope"}}, false)
	require.NoError(t, err)
	added := res.Data.(matrix.PVA)

	res, err = f.svc.SavePVA(dispatcher, key, ActionDelete, matrix.PVA{ID: added.ID}, true)
	require.NoError(t, err)
	assert.True(t, res.Found)

	_, err = f.svc.SavePVA(dispatcher, key, ActionUpdate, matrix.PVA{}, false)
	assert.ErrorIs(t, err, ErrUnsupportedSave)
}

func TestMatrixService_AuditTrail(t *testing.T) {
	f := newFixture(t)
	f.grid(t)

	logs, err := repository.NewAuditRepo(f.db).GetRecentAuditLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "service_add", logs[0].Action)
	assert.Equal(t, "hospital_add", logs[2].Action)
	require.NotNil(t, logs[2].UserID)
	assert.Equal(t, admin.UserID, *logs[2].UserID)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
