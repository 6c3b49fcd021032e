package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-http-service/models"
)

func TestCreateDeviceEnforcesPerCompanyUniqueness(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db, testConfig(), nil)

	companyA := seedCompany(t, db, "GH001")
	companyB := seedCompany(t, db, "GH002")
	admin := seedUser(t, db, companyA.ID, models.RoleAdmin, "admin@platform.test")
	scope := scopeFor(admin)

	first := &models.Device{DeviceNumber: "DEV001", Name: "North wing", CompanyID: companyA.ID}
	require.NoError(t, svc.CreateDevice(scope, first))
	assert.Equal(t, "company/1/device/DEV001", first.TopicName)

	dup := &models.Device{DeviceNumber: "DEV001", Name: "Duplicate", CompanyID: companyA.ID}
	assert.ErrorIs(t, svc.CreateDevice(scope, dup), ErrConflict)

	// The same number under another company is fine.
	other := &models.Device{DeviceNumber: "DEV001", Name: "South wing", CompanyID: companyB.ID}
	require.NoError(t, svc.CreateDevice(scope, other))
}

func TestCreateDeviceRequiresManagedCompany(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db, testConfig(), nil)

	companyA := seedCompany(t, db, "GH001")
	companyB := seedCompany(t, db, "GH002")
	manager := seedUser(t, db, companyA.ID, models.RoleManager, "manager@gh001.test")

	device := &models.Device{DeviceNumber: "DEV001", Name: "Foreign", CompanyID: companyB.ID}
	assert.ErrorIs(t, svc.CreateDevice(scopeFor(manager), device), ErrUnauthorized)
}

func TestGetAllDevicesIsRoleScoped(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db, testConfig(), nil)
	assignments := NewAssignmentService(db, testConfig())

	companyA := seedCompany(t, db, "GH001")
	companyB := seedCompany(t, db, "GH002")
	admin := seedUser(t, db, companyA.ID, models.RoleAdmin, "admin@platform.test")
	manager := seedUser(t, db, companyA.ID, models.RoleManager, "manager@gh001.test")
	alice := seedUser(t, db, companyA.ID, models.RoleUser, "alice@gh001.test")

	devA1 := seedDevice(t, db, companyA.ID, "DEV001")
	seedDevice(t, db, companyA.ID, "DEV002")
	seedDevice(t, db, companyB.ID, "DEV003")

	_, err := assignments.Assign(scopeFor(manager), devA1.ID, alice.ID, models.AccessRead)
	require.NoError(t, err)

	all, total, err := svc.GetAllDevices(scopeFor(admin), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	mine, total, err := svc.GetAllDevices(scopeFor(manager), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	assigned, total, err := svc.GetAllDevices(scopeFor(alice), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, assigned, 1)
	assert.Equal(t, devA1.ID, assigned[0].ID)
}

func TestGetDeviceByIDHidesUnassignedDevicesFromUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db, testConfig(), nil)
	assignments := NewAssignmentService(db, testConfig())

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	alice := seedUser(t, db, company.ID, models.RoleUser, "alice@gh001.test")
	device := seedDevice(t, db, company.ID, "DEV001")

	_, err := svc.GetDeviceByID(scopeFor(alice), device.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = assignments.Assign(scopeFor(manager), device.ID, alice.ID, models.AccessRead)
	require.NoError(t, err)

	got, err := svc.GetDeviceByID(scopeFor(alice), device.ID)
	require.NoError(t, err)
	assert.Equal(t, device.ID, got.ID)
}

func TestUpdateDeviceStripsLivenessFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db, testConfig(), nil)

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	device := seedDevice(t, db, company.ID, "DEV001")

	updated, err := svc.UpdateDevice(scopeFor(manager), device.ID, map[string]interface{}{
		"name":      "Renamed",
		"is_online": true,
		"last_seen": time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.IsOnline)
	assert.Nil(t, updated.LastSeen)
}

func TestUpdateDeviceIgnoresCompanyMove(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db, testConfig(), nil)

	companyA := seedCompany(t, db, "GH001")
	companyB := seedCompany(t, db, "GH002")
	manager := seedUser(t, db, companyA.ID, models.RoleManager, "manager@gh001.test")
	device := seedDevice(t, db, companyA.ID, "DEV001")

	// A manager must not be able to re-parent a device into a company
	// they do not manage; the field is dropped, not written.
	updated, err := svc.UpdateDevice(scopeFor(manager), device.ID, map[string]interface{}{
		"name":       "Renamed",
		"company_id": companyB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, companyA.ID, updated.CompanyID)

	var stored models.Device
	require.NoError(t, db.First(&stored, device.ID).Error)
	assert.Equal(t, companyA.ID, stored.CompanyID)
}

func TestGetDeviceStatusIncludesCachedMetrics(t *testing.T) {
	db := setupTestDB(t)
	cache := newCacheStub()
	svc := NewDeviceService(db, testConfig(), cache)
	ingester := &TelemetryService{
		DB:            db,
		Config:        testConfig(),
		DeviceService: svc,
		Redis:         cache,
	}

	company := seedCompany(t, db, "GH001")
	admin := seedUser(t, db, company.ID, models.RoleAdmin, "admin@platform.test")
	device := seedDevice(t, db, company.ID, "DEV001")

	require.NoError(t, ingester.RecordHeartbeat(company.ID, "DEV001", &DeviceReport{
		Status:    "online",
		Timestamp: time.Now().UnixMilli(),
		Metrics:   map[string]string{"temperature": "24.5"},
	}))

	status, err := svc.GetDeviceStatus(scopeFor(admin), device.ID)
	require.NoError(t, err)
	assert.True(t, status.IsOnline)
	assert.Equal(t, map[string]string{"temperature": "24.5"}, status.Metrics)
}

func TestDeleteDeviceCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db, testConfig(), nil)
	assignments := NewAssignmentService(db, testConfig())

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	alice := seedUser(t, db, company.ID, models.RoleUser, "alice@gh001.test")
	device := seedDevice(t, db, company.ID, "DEV001")
	zone := seedZone(t, db, device.ID, "seedling-bay")
	require.NoError(t, db.Create(&models.Topic{
		ZoneID:    zone.ID,
		TopicPath: "company/1/device/DEV001/seedling-bay/temperature",
		Direction: models.DirectionSubscribe,
		QoS:       1,
		IsActive:  true,
	}).Error)

	scope := scopeFor(manager)
	_, err := assignments.Assign(scope, device.ID, alice.ID, models.AccessRead)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDevice(scope, device.ID))

	for _, model := range []interface{}{
		&models.Device{}, &models.Zone{}, &models.Topic{}, &models.DeviceAssignment{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestHeartbeatAndSweep(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db, testConfig(), nil)

	company := seedCompany(t, db, "GH001")
	admin := seedUser(t, db, company.ID, models.RoleAdmin, "admin@platform.test")
	device := seedDevice(t, db, company.ID, "DEV001")

	past := time.Now().Add(-10 * time.Minute)
	require.NoError(t, svc.MarkHeartbeat(device.ID, past))

	status, err := svc.GetDeviceStatus(scopeFor(admin), device.ID)
	require.NoError(t, err)
	assert.True(t, status.IsOnline)
	require.NotNil(t, status.LastSeen)

	flagged, err := svc.SweepStaleDevices(5 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), flagged)

	status, err = svc.GetDeviceStatus(scopeFor(admin), device.ID)
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
}
