package repository_test

import (
	"testing"
	"time"

	"krankenhaus-matrix/internal/database/dbtest"
	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/models"
	"krankenhaus-matrix/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var stamp = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func defaultCell(hospitalID, itemID int64) *models.MatrixCell {
	return &models.MatrixCell{
		HospitalID:      hospitalID,
		ItemID:          itemID,
		Status:          string(matrix.StatusFree),
		Available:       true,
		LastUpdate:      stamp,
		FutureOverloads: []matrix.OverloadWindow{},
	}
}

func seedGrid(t *testing.T, db *gorm.DB) {
	t.Helper()
	items := repository.NewItemRepo(db)
	hospitals := repository.NewHospitalRepo(db)

	require.NoError(t, items.CreateItem(&models.MatrixItem{ID: 10, Name: "Intensivbetten", Category: "capacity"}, nil))
	require.NoError(t, items.CreateItem(&models.MatrixItem{ID: 20, Name: "Kardiologie", Category: "service"}, nil))
	require.NoError(t, hospitals.CreateHospital(
		&models.Hospital{ID: 1, Name: "Klinikum Nord", Alias: "KN", IsActive: true},
		[]*models.MatrixCell{defaultCell(1, 10), defaultCell(1, 20)},
	))
	require.NoError(t, hospitals.CreateHospital(
		&models.Hospital{ID: 2, Name: "St. Elisabeth", Alias: "SE", IsActive: true},
		[]*models.MatrixCell{defaultCell(2, 10), defaultCell(2, 20)},
	))
}

func TestHospitalRepository_CreateUpdateList(t *testing.T) {
	db := dbtest.Open(t)
	seedGrid(t, db)
	repo := repository.NewHospitalRepo(db)

	require.NoError(t, repo.UpdateHospital(&models.Hospital{ID: 2, Name: "St. Elisabeth Hospital", Alias: "SEH", IsActive: false}))

	list, err := repo.GetAllHospitals()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, "St. Elisabeth Hospital", list[1].Name)
	assert.False(t, list[1].IsActive, "explicit false must be written")

	cells, err := repository.NewCellRepo(db).GetAllCells()
	require.NoError(t, err)
	assert.Len(t, cells, 4)
}

func TestHospitalRepository_DeleteCascades(t *testing.T) {
	db := dbtest.Open(t)
	seedGrid(t, db)

	pvas := repository.NewPreNotificationRepo(db)
	require.NoError(t, pvas.CreatePreNotification(&models.PreNotification{ID: 100, HospitalID: 1, ItemID: 10, TriageCategory: 1, PatientName: "A", Symptoms: "Thoraxschmerz", ArrivalTime: stamp}))
	require.NoError(t, pvas.CreatePreNotification(&models.PreNotification{ID: 101, HospitalID: 2, ItemID: 10, TriageCategory: 2, PatientName: "B", Symptoms: "Sturz", ArrivalTime: stamp}))
	require.NoError(t, repository.NewUserHospitalRepo(db).AssignUserToHospital(7, 1))

	require.NoError(t, repository.NewHospitalRepo(db).DeleteHospital(1))

	cells, err := repository.NewCellRepo(db).GetAllCells()
	require.NoError(t, err)
	require.Len(t, cells, 2)
	for _, c := range cells {
		assert.Equal(t, int64(2), c.HospitalID)
	}

	rest, err := pvas.GetAllPreNotifications()
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, int64(101), rest[0].ID)

	ids, err := repository.NewUserHospitalRepo(db).GetUserHospitals(7)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestItemRepository_CategoryAndCascade(t *testing.T) {
	db := dbtest.Open(t)
	seedGrid(t, db)
	repo := repository.NewItemRepo(db)

	// editing within the wrong category changes nothing
	require.NoError(t, repo.UpdateItem(&models.MatrixItem{ID: 10, Name: "Falsch", Category: "service"}))
	require.NoError(t, repo.UpdateItem(&models.MatrixItem{ID: 10, Name: "ITS-Betten", Description: "beatmet", Category: "capacity"}))

	capacities, err := repo.GetItemsByCategory("capacity")
	require.NoError(t, err)
	require.Len(t, capacities, 1)
	assert.Equal(t, "ITS-Betten", capacities[0].Name)
	assert.Equal(t, "beatmet", capacities[0].Description)

	require.NoError(t, repo.DeleteItem(20))
	services, err := repo.GetItemsByCategory("service")
	require.NoError(t, err)
	assert.Empty(t, services)

	cells, err := repository.NewCellRepo(db).GetAllCells()
	require.NoError(t, err)
	assert.Len(t, cells, 2)
}

func TestCellRepository_SaveCellsUpserts(t *testing.T) {
	db := dbtest.Open(t)
	seedGrid(t, db)
	repo := repository.NewCellRepo(db)

	updated := defaultCell(1, 10)
	updated.Status = string(matrix.StatusFutureOverload)
	updated.Comment = "ab 14 Uhr voll"
	updated.SkipAutoFree = true
	updated.UpdatedBy = "leitstelle"
	updated.FutureOverloads = []matrix.OverloadWindow{{Start: stamp.Add(time.Hour), End: stamp.Add(3 * time.Hour)}}
	require.NoError(t, repo.SaveCells(updated))

	cells, err := repo.GetAllCells()
	require.NoError(t, err)
	require.Len(t, cells, 4)

	got := cells[0].ToDomain()
	assert.Equal(t, matrix.StatusFutureOverload, got.Status)
	assert.Equal(t, "ab 14 Uhr voll", got.Comment)
	assert.True(t, got.SkipAutoFree)
	require.Len(t, got.FutureOverloads, 1)
	assert.True(t, got.FutureOverloads[0].End.Equal(stamp.Add(3*time.Hour)))

	assert.NoError(t, repo.SaveCells())
}

func TestPreNotificationRepository_Lifecycle(t *testing.T) {
	db := dbtest.Open(t)
	seedGrid(t, db)
	repo := repository.NewPreNotificationRepo(db)
	key := matrix.CellKey{HospitalID: 1, ItemID: 10}

	pva := matrix.PVA{
		ID:             500,
		TriageCategory: matrix.TriageUrgent,
		PatientInfo:    matrix.PatientInfo{Name: "Max M.", Age: "67", Symptoms: "Dyspnoe"},
		LogisticsInfo:  matrix.LogisticsInfo{TransportMethod: "RTW"},
		ArrivalTime:    stamp,
		CreatedAt:      stamp,
	}
	require.NoError(t, repo.CreatePreNotification(models.PreNotificationFromDomain(key, pva)))

	pva.TriageCategory = matrix.TriageCritical
	pva.Confirmed = true
	require.NoError(t, repo.UpdatePreNotification(models.PreNotificationFromDomain(key, pva)))

	list, err := repo.GetAllPreNotifications()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, key, list[0].Key())
	got := list[0].ToDomain()
	assert.Equal(t, matrix.TriageCritical, got.TriageCategory)
	assert.True(t, got.Confirmed)
	assert.Equal(t, "RTW", got.LogisticsInfo.TransportMethod)

	// wrong cell does not delete
	require.NoError(t, repo.DeletePreNotification(2, 10, 500))
	list, err = repo.GetAllPreNotifications()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.DeletePreNotification(1, 10, 500))
	list, err = repo.GetAllPreNotifications()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSystemSettingsRepository_SaveAndReload(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewSystemSettingsRepo(db)

	got, err := repo.GetSettings()
	require.NoError(t, err)
	assert.Nil(t, got)

	cfg := matrix.DefaultSystemConfig()
	cfg.RefreshInterval = 10
	cfg.EmergencyContacts = []matrix.EmergencyContact{{Name: "Dr. Weber", Phone: "0211 123", Role: "OvD"}}
	require.NoError(t, repo.SaveSettings(models.SystemSettingsFromDomain(cfg)))

	cfg.EnablePushNotifications = false
	require.NoError(t, repo.SaveSettings(models.SystemSettingsFromDomain(cfg)))

	got, err = repo.GetSettings()
	require.NoError(t, err)
	require.NotNil(t, got)
	loaded := got.ToDomain()
	assert.Equal(t, 10, loaded.RefreshInterval)
	assert.False(t, loaded.EnablePushNotifications)
	assert.Equal(t, cfg.AutoFreeTimes, loaded.AutoFreeTimes)
	assert.Equal(t, "Dr. Weber", loaded.EmergencyContacts[0].Name)
}

func TestUserHospitalRepository_Access(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewUserHospitalRepo(db)

	require.NoError(t, repo.AssignUserToHospital(3, 2))
	require.NoError(t, repo.AssignUserToHospital(3, 2))
	require.NoError(t, repo.AssignUserToHospital(3, 1))

	ids, err := repo.GetUserHospitals(3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	ok, err := repo.UserHasAccessToHospital(3, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.RemoveUserFromHospital(3, 2))
	ok, err = repo.UserHasAccessToHospital(3, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuditRepository_Recent(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewAuditRepo(db)
	uid := uint(4)

	require.NoError(t, repo.CreateAuditLog(&uid, "hospital.add", "id=1"))
	require.NoError(t, repo.CreateAuditLog(nil, "cells.auto_free", "count=3"))

	logs, err := repo.GetRecentAuditLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "cells.auto_free", logs[0].Action)
	assert.Nil(t, logs[0].UserID)
}
