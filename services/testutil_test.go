package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// setupTestDB opens an in-memory sqlite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A second connection would see an empty :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Device{},
		&models.Zone{},
		&models.Topic{},
		&models.DeviceAssignment{},
		&models.Telemetry{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey: "test-secret",
	}
}

func seedCompany(t *testing.T, db *gorm.DB, code string) *models.Company {
	t.Helper()
	company := &models.Company{
		Name:     "Company " + code,
		Code:     code,
		IsActive: true,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

func seedUser(t *testing.T, db *gorm.DB, companyID uint, role models.Role, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:      "Test " + email,
		Email:     email,
		Password:  "secret123",
		CompanyID: companyID,
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedDevice(t *testing.T, db *gorm.DB, companyID uint, number string) *models.Device {
	t.Helper()
	device := &models.Device{
		DeviceNumber: number,
		Name:         "Device " + number,
		CompanyID:    companyID,
		TopicName:    fmt.Sprintf("company/%d/device/%s", companyID, number),
		IsActive:     true,
	}
	require.NoError(t, db.Create(device).Error)
	return device
}

func seedZone(t *testing.T, db *gorm.DB, deviceID uint, name string) *models.Zone {
	t.Helper()
	zone := &models.Zone{
		Name:      name,
		TopicName: name,
		DeviceID:  deviceID,
	}
	require.NoError(t, db.Create(zone).Error)
	return zone
}

func scopeFor(user *models.User) *models.ActorScope {
	return &models.ActorScope{
		UserID:    user.ID,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}
}

// cacheStub is an in-memory InterfaceRedisService for tests.
type cacheStub struct {
	entries map[string][]byte
}

func newCacheStub() *cacheStub {
	return &cacheStub{entries: make(map[string][]byte)}
}

func (s *cacheStub) Set(key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = b
	return nil
}

func (s *cacheStub) Get(key string, dest interface{}) error {
	b, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("cache miss: %s", key)
	}
	return json.Unmarshal(b, dest)
}

func (s *cacheStub) Delete(key string) error {
	delete(s.entries, key)
	return nil
}

func (s *cacheStub) CacheUserScope(userID uint, scope *models.ActorScope, expiration time.Duration) error {
	return s.Set(fmt.Sprintf("scope:%d", userID), scope, expiration)
}

func (s *cacheStub) GetUserScope(userID uint) (*models.ActorScope, error) {
	var scope models.ActorScope
	if err := s.Get(fmt.Sprintf("scope:%d", userID), &scope); err != nil {
		return nil, err
	}
	return &scope, nil
}

func (s *cacheStub) InvalidateUserScope(userID uint) error {
	return s.Delete(fmt.Sprintf("scope:%d", userID))
}

func (s *cacheStub) CacheDeviceStatus(deviceID uint, status interface{}, expiration time.Duration) error {
	return s.Set(fmt.Sprintf("device_status:%d", deviceID), status, expiration)
}

func (s *cacheStub) GetDeviceStatus(deviceID uint, dest interface{}) error {
	return s.Get(fmt.Sprintf("device_status:%d", deviceID), dest)
}
