package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// InterfaceZoneService defines the zone service interface
type InterfaceZoneService interface {
	GetZoneByID(scope *models.ActorScope, id uint) (*models.Zone, error)
	CreateZone(scope *models.ActorScope, zone *models.Zone) error
	UpdateZone(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.Zone, error)
	DeleteZone(scope *models.ActorScope, id uint) error
	GetZonesForDevice(scope *models.ActorScope, deviceID uint) ([]models.Zone, error)
}

// ZoneService manages the monitored areas under a device.
type ZoneService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewZoneService creates a new zone service.
func NewZoneService(db *gorm.DB, cfg *config.Config) InterfaceZoneService {
	return &ZoneService{
		DB:     db,
		Config: cfg,
	}
}

// deviceForZoneAccess resolves the owning device of a zone operation and
// checks the caller can see it. Visibility of a zone is visibility of its
// device's company.
func (s *ZoneService) deviceForZoneAccess(scope *models.ActorScope, deviceID uint) (*models.Device, error) {
	var device models.Device
	if err := s.DB.First(&device, deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: device %d", ErrNotFound, deviceID)
		}
		return nil, err
	}
	if !scope.CanViewCompany(device.CompanyID) {
		return nil, fmt.Errorf("%w: device %d", ErrNotFound, deviceID)
	}
	return &device, nil
}

// GetZoneByID fetches a zone inside the caller's visible scope.
func (s *ZoneService) GetZoneByID(scope *models.ActorScope, id uint) (*models.Zone, error) {
	var zone models.Zone
	if err := s.DB.First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: zone %d", ErrNotFound, id)
		}
		return nil, err
	}

	if _, err := s.deviceForZoneAccess(scope, zone.DeviceID); err != nil {
		return nil, fmt.Errorf("%w: zone %d", ErrNotFound, id)
	}
	return &zone, nil
}

// CreateZone creates a zone under a device the caller manages.
func (s *ZoneService) CreateZone(scope *models.ActorScope, zone *models.Zone) error {
	if zone.Name == "" || zone.TopicName == "" || zone.DeviceID == 0 {
		return fmt.Errorf("%w: name, topic_name and device_id are required", ErrValidation)
	}

	device, err := s.deviceForZoneAccess(scope, zone.DeviceID)
	if err != nil {
		return err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return fmt.Errorf("%w: device %d is outside your scope", ErrUnauthorized, zone.DeviceID)
	}

	return s.DB.Create(zone).Error
}

// UpdateZone updates zone fields.
func (s *ZoneService) UpdateZone(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.Zone, error) {
	zone, err := s.GetZoneByID(scope, id)
	if err != nil {
		return nil, err
	}

	device, err := s.deviceForZoneAccess(scope, zone.DeviceID)
	if err != nil {
		return nil, err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return nil, fmt.Errorf("%w: zone %d is outside your scope", ErrUnauthorized, id)
	}

	// A zone never moves between devices.
	delete(updates, "device_id")

	if err := s.DB.Model(zone).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetZoneByID(scope, id)
}

// DeleteZone removes a zone and its topics in one transaction.
func (s *ZoneService) DeleteZone(scope *models.ActorScope, id uint) error {
	zone, err := s.GetZoneByID(scope, id)
	if err != nil {
		return err
	}

	device, err := s.deviceForZoneAccess(scope, zone.DeviceID)
	if err != nil {
		return err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return fmt.Errorf("%w: zone %d is outside your scope", ErrUnauthorized, id)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("zone_id = ?", id).Delete(&models.Topic{}).Error; err != nil {
			return err
		}
		return tx.Delete(zone).Error
	})
}

// GetZonesForDevice lists the zones of a device, ordered by id.
func (s *ZoneService) GetZonesForDevice(scope *models.ActorScope, deviceID uint) ([]models.Zone, error) {
	if _, err := s.deviceForZoneAccess(scope, deviceID); err != nil {
		return nil, err
	}

	var zones []models.Zone
	if err := s.DB.Where("device_id = ?", deviceID).Order("id asc").Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}
