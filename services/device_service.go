package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// InterfaceDeviceService defines the device service interface
type InterfaceDeviceService interface {
	GetAllDevices(scope *models.ActorScope, page, pageSize int) ([]models.Device, int64, error)
	GetDeviceByID(scope *models.ActorScope, id uint) (*models.Device, error)
	CreateDevice(scope *models.ActorScope, device *models.Device) error
	UpdateDevice(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.Device, error)
	DeleteDevice(scope *models.ActorScope, id uint) error
	GetDeviceStatus(scope *models.ActorScope, id uint) (*DeviceStatus, error)
	MarkHeartbeat(deviceID uint, at time.Time) error
	MarkOffline(deviceID uint) error
	SweepStaleDevices(olderThan time.Duration) (int64, error)
}

// DeviceStatus is the liveness snapshot returned by GetDeviceStatus.
// Metrics carries the readings from the latest cached heartbeat, when
// one is available.
type DeviceStatus struct {
	ID           uint              `json:"id"`
	DeviceNumber string            `json:"device_number"`
	Name         string            `json:"name"`
	IsOnline     bool              `json:"is_online"`
	LastSeen     *time.Time        `json:"last_seen"`
	Metrics      map[string]string `json:"metrics,omitempty"`
}

// deviceStatusSnapshot is the cache record the telemetry ingester writes
// on every heartbeat and GetDeviceStatus reads back.
type deviceStatusSnapshot struct {
	Status   string            `json:"status"`
	LastSeen time.Time         `json:"last_seen"`
	Metrics  map[string]string `json:"metrics,omitempty"`
}

// DeviceService manages greenhouse controller records. Liveness fields
// (is_online, last_seen) are written only through the heartbeat methods,
// which belong to the telemetry ingester; API writes never touch them.
type DeviceService struct {
	DB     *gorm.DB
	Config *config.Config
	Redis  InterfaceRedisService // optional, latest heartbeat snapshots
}

// NewDeviceService creates a new device service.
func NewDeviceService(db *gorm.DB, cfg *config.Config, redisService InterfaceRedisService) InterfaceDeviceService {
	return &DeviceService{
		DB:     db,
		Config: cfg,
		Redis:  redisService,
	}
}

// GetAllDevices lists devices visible to the caller, paginated and
// ordered by id. Admins see all, managers their company, plain users
// only devices assigned to them.
func (s *DeviceService) GetAllDevices(scope *models.ActorScope, page, pageSize int) ([]models.Device, int64, error) {
	query := s.DB.Model(&models.Device{})
	switch {
	case scope.IsAdmin():
		// unrestricted
	case scope.IsManager():
		query = query.Where("company_id = ?", scope.CompanyID)
	default:
		query = query.
			Joins("JOIN device_assignments ON device_assignments.device_id = devices.id").
			Where("device_assignments.user_id = ?", scope.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var devices []models.Device
	offset := (page - 1) * pageSize
	if err := query.Order("devices.id asc").Limit(pageSize).Offset(offset).Find(&devices).Error; err != nil {
		return nil, 0, err
	}

	return devices, total, nil
}

// GetDeviceByID fetches a device inside the caller's visible scope.
func (s *DeviceService) GetDeviceByID(scope *models.ActorScope, id uint) (*models.Device, error) {
	var device models.Device
	if err := s.DB.First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: device %d", ErrNotFound, id)
		}
		return nil, err
	}

	if !scope.CanViewCompany(device.CompanyID) {
		return nil, fmt.Errorf("%w: device %d", ErrNotFound, id)
	}

	// Plain users additionally need an assignment on the device.
	if scope.Role == models.RoleUser {
		var count int64
		if err := s.DB.Model(&models.DeviceAssignment{}).
			Where("device_id = ? AND user_id = ?", id, scope.UserID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: device %d", ErrNotFound, id)
		}
	}

	return &device, nil
}

// CreateDevice registers a device under a company the caller manages.
// device_number must be unique within that company.
func (s *DeviceService) CreateDevice(scope *models.ActorScope, device *models.Device) error {
	if device.DeviceNumber == "" || device.Name == "" || device.CompanyID == 0 {
		return fmt.Errorf("%w: device_number, name and company_id are required", ErrValidation)
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return fmt.Errorf("%w: company %d is outside your scope", ErrUnauthorized, device.CompanyID)
	}

	var companyCount int64
	if err := s.DB.Model(&models.Company{}).Where("id = ?", device.CompanyID).Count(&companyCount).Error; err != nil {
		return err
	}
	if companyCount == 0 {
		return fmt.Errorf("%w: company %d", ErrNotFound, device.CompanyID)
	}

	var count int64
	if err := s.DB.Model(&models.Device{}).
		Where("company_id = ? AND device_number = ?", device.CompanyID, device.DeviceNumber).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: device number %q already exists in company %d", ErrConflict, device.DeviceNumber, device.CompanyID)
	}

	if device.TopicName == "" {
		device.TopicName = fmt.Sprintf("company/%d/device/%s", device.CompanyID, device.DeviceNumber)
	}
	device.IsActive = true
	device.IsOnline = false

	return s.DB.Create(device).Error
}

// UpdateDevice updates device fields, re-checking per-company uniqueness
// when the device number changes. Liveness fields and company_id are
// stripped: the ingester owns liveness and devices stay with their company.
func (s *DeviceService) UpdateDevice(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.Device, error) {
	device, err := s.GetDeviceByID(scope, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return nil, fmt.Errorf("%w: device %d is outside your scope", ErrUnauthorized, id)
	}

	// Only the heartbeat ingester maintains liveness, and a device
	// never moves between companies.
	delete(updates, "is_online")
	delete(updates, "last_seen")
	delete(updates, "company_id")

	if deviceNumber, ok := updates["device_number"].(string); ok && deviceNumber != device.DeviceNumber {
		var count int64
		if err := s.DB.Model(&models.Device{}).
			Where("company_id = ? AND device_number = ? AND id != ?", device.CompanyID, deviceNumber, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: device number %q already exists in company %d", ErrConflict, deviceNumber, device.CompanyID)
		}
	}

	if err := s.DB.Model(device).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetDeviceByID(scope, id)
}

// DeleteDevice removes a device together with its assignments, zones and
// topics, in one transaction so nothing is orphaned.
func (s *DeviceService) DeleteDevice(scope *models.ActorScope, id uint) error {
	device, err := s.GetDeviceByID(scope, id)
	if err != nil {
		return err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return fmt.Errorf("%w: device %d is outside your scope", ErrUnauthorized, id)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", id).Delete(&models.DeviceAssignment{}).Error; err != nil {
			return err
		}

		var zoneIDs []uint
		if err := tx.Model(&models.Zone{}).Where("device_id = ?", id).Pluck("id", &zoneIDs).Error; err != nil {
			return err
		}
		if len(zoneIDs) > 0 {
			if err := tx.Where("zone_id IN ?", zoneIDs).Delete(&models.Topic{}).Error; err != nil {
				return err
			}
			if err := tx.Where("device_id = ?", id).Delete(&models.Zone{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("device_id = ?", id).Delete(&models.Telemetry{}).Error; err != nil {
			return err
		}

		return tx.Delete(device).Error
	})
}

// GetDeviceStatus returns the liveness snapshot of a device, enriched
// with the metric readings from the latest cached heartbeat.
func (s *DeviceService) GetDeviceStatus(scope *models.ActorScope, id uint) (*DeviceStatus, error) {
	device, err := s.GetDeviceByID(scope, id)
	if err != nil {
		return nil, err
	}

	status := &DeviceStatus{
		ID:           device.ID,
		DeviceNumber: device.DeviceNumber,
		Name:         device.Name,
		IsOnline:     device.IsOnline,
		LastSeen:     device.LastSeen,
	}

	// The device row carries liveness only; the readings live in the
	// ingester's snapshot. A cache miss just leaves Metrics empty.
	if s.Redis != nil {
		var snapshot deviceStatusSnapshot
		if err := s.Redis.GetDeviceStatus(id, &snapshot); err == nil {
			status.Metrics = snapshot.Metrics
		}
	}

	return status, nil
}

// MarkHeartbeat records a heartbeat: the device goes online and last_seen
// advances. Called by the telemetry ingester only.
func (s *DeviceService) MarkHeartbeat(deviceID uint, at time.Time) error {
	result := s.DB.Model(&models.Device{}).Where("id = ?", deviceID).
		Updates(map[string]interface{}{"is_online": true, "last_seen": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: device %d", ErrNotFound, deviceID)
	}
	return nil
}

// MarkOffline flags a device offline without touching last_seen.
func (s *DeviceService) MarkOffline(deviceID uint) error {
	return s.DB.Model(&models.Device{}).Where("id = ?", deviceID).
		Update("is_online", false).Error
}

// SweepStaleDevices flags every online device offline whose last heartbeat
// is older than the given duration. Returns the number of devices flagged.
func (s *DeviceService) SweepStaleDevices(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := s.DB.Model(&models.Device{}).
		Where("is_online = ? AND (last_seen IS NULL OR last_seen < ?)", true, cutoff).
		Update("is_online", false)
	return result.RowsAffected, result.Error
}
