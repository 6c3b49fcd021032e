package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-http-service/models"
)

func TestParseStatusTopic(t *testing.T) {
	companyID, deviceNumber, ok := parseStatusTopic("company/3/device/GH-CTRL-0042/status")
	require.True(t, ok)
	assert.Equal(t, uint(3), companyID)
	assert.Equal(t, "GH-CTRL-0042", deviceNumber)

	for _, topic := range []string{
		"company/3/device/GH-CTRL-0042",
		"zone/3/device/GH-CTRL-0042/status",
		"company/abc/device/GH-CTRL-0042/status",
		"company/3/gateway/GH-CTRL-0042/status",
		"",
	} {
		_, _, ok := parseStatusTopic(topic)
		assert.False(t, ok, "topic %q should not parse", topic)
	}
}

func TestRecordHeartbeat(t *testing.T) {
	db := setupTestDB(t)
	deviceService := NewDeviceService(db, testConfig(), nil)
	svc := &TelemetryService{
		DB:            db,
		Config:        testConfig(),
		DeviceService: deviceService,
	}

	company := seedCompany(t, db, "GH001")
	device := seedDevice(t, db, company.ID, "DEV001")

	at := time.Now().Add(-time.Minute).UnixMilli()
	err := svc.RecordHeartbeat(company.ID, "DEV001", &DeviceReport{
		Status:    "online",
		Timestamp: at,
		Metrics:   map[string]string{"temperature": "24.5", "humidity": "61"},
	})
	require.NoError(t, err)

	var stored models.Device
	require.NoError(t, db.First(&stored, device.ID).Error)
	assert.True(t, stored.IsOnline)
	require.NotNil(t, stored.LastSeen)
	assert.Equal(t, time.UnixMilli(at).Unix(), stored.LastSeen.Unix())

	var readings int64
	require.NoError(t, db.Model(&models.Telemetry{}).Where("device_id = ?", device.ID).Count(&readings).Error)
	assert.Equal(t, int64(2), readings)
}

func TestRecordHeartbeatOffline(t *testing.T) {
	db := setupTestDB(t)
	deviceService := NewDeviceService(db, testConfig(), nil)
	svc := &TelemetryService{
		DB:            db,
		Config:        testConfig(),
		DeviceService: deviceService,
	}

	company := seedCompany(t, db, "GH001")
	device := seedDevice(t, db, company.ID, "DEV001")
	require.NoError(t, deviceService.MarkHeartbeat(device.ID, time.Now()))

	err := svc.RecordHeartbeat(company.ID, "DEV001", &DeviceReport{Status: "offline"})
	require.NoError(t, err)

	var stored models.Device
	require.NoError(t, db.First(&stored, device.ID).Error)
	assert.False(t, stored.IsOnline)
}

func TestRecordHeartbeatUnknownDevice(t *testing.T) {
	db := setupTestDB(t)
	svc := &TelemetryService{
		DB:            db,
		Config:        testConfig(),
		DeviceService: NewDeviceService(db, testConfig(), nil),
	}

	company := seedCompany(t, db, "GH001")

	err := svc.RecordHeartbeat(company.ID, "NOPE", &DeviceReport{Status: "online"})
	assert.Error(t, err)
}
