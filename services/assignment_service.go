package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// InterfaceAssignmentService defines the device assignment service interface
type InterfaceAssignmentService interface {
	Assign(scope *models.ActorScope, deviceID, userID uint, level models.AccessLevel) (*models.DeviceAssignment, error)
	Unassign(scope *models.ActorScope, deviceID, userID uint) error
	ListAssignments(scope *models.ActorScope, deviceID uint) ([]models.DeviceAssignment, error)
	GetUsersForDevice(scope *models.ActorScope, deviceID uint) ([]models.DeviceAssignment, error)
}

// AssignmentService maintains the many-to-many link between users and
// devices. One assignment per (device, user) pair; assigning again only
// moves the access level.
type AssignmentService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(db *gorm.DB, cfg *config.Config) InterfaceAssignmentService {
	return &AssignmentService{
		DB:     db,
		Config: cfg,
	}
}

// visibleDevice fetches a device the caller may act on as manager/admin.
func (s *AssignmentService) visibleDevice(scope *models.ActorScope, deviceID uint) (*models.Device, error) {
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

// Assign grants a user tiered access to a device. Both records must be
// active and inside the caller's management scope, and must belong to the
// same company. An existing assignment is updated in place; the unique
// (device_id, user_id) index serializes concurrent upserts so the last
// writer wins on access_level.
func (s *AssignmentService) Assign(scope *models.ActorScope, deviceID, userID uint, level models.AccessLevel) (*models.DeviceAssignment, error) {
	if !models.ValidAccessLevel(level) {
		return nil, fmt.Errorf("%w: unknown access level %q", ErrInvalidAssignment, level)
	}

	device, err := s.visibleDevice(scope, deviceID)
	if err != nil {
		return nil, err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return nil, fmt.Errorf("%w: device %d is outside your scope", ErrUnauthorized, deviceID)
	}
	if !device.IsActive {
		return nil, fmt.Errorf("%w: device %d is inactive", ErrValidation, deviceID)
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	if !scope.CanViewCompany(user.CompanyID) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user %d is inactive", ErrValidation, userID)
	}

	if user.CompanyID != device.CompanyID {
		return nil, fmt.Errorf("%w: user %d and device %d belong to different companies", ErrInvalidAssignment, userID, deviceID)
	}

	assignment := models.DeviceAssignment{
		DeviceID:    deviceID,
		UserID:      userID,
		AccessLevel: level,
		AssignedBy:  scope.UserID,
	}

	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_level", "assigned_by", "updated_at"}),
	}).Create(&assignment).Error; err != nil {
		return nil, err
	}

	var result models.DeviceAssignment
	if err := s.DB.Where("device_id = ? AND user_id = ?", deviceID, userID).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// Unassign revokes a user's access to a device. Revoking an assignment
// that does not exist is a no-op, not an error.
func (s *AssignmentService) Unassign(scope *models.ActorScope, deviceID, userID uint) error {
	device, err := s.visibleDevice(scope, deviceID)
	if err != nil {
		return err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return fmt.Errorf("%w: device %d is outside your scope", ErrUnauthorized, deviceID)
	}

	return s.DB.Where("device_id = ? AND user_id = ?", deviceID, userID).
		Delete(&models.DeviceAssignment{}).Error
}

// ListAssignments returns the assignments of a device visible to the
// caller, ordered by id. Plain users see only their own assignment.
func (s *AssignmentService) ListAssignments(scope *models.ActorScope, deviceID uint) ([]models.DeviceAssignment, error) {
	if _, err := s.visibleDevice(scope, deviceID); err != nil {
		return nil, err
	}

	query := s.DB.Where("device_id = ?", deviceID)
	if scope.Role == models.RoleUser {
		query = query.Where("user_id = ?", scope.UserID)
	}

	var assignments []models.DeviceAssignment
	if err := query.Order("id asc").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetUsersForDevice returns the assignments of a device with the user
// records preloaded, ordered by id. Manager/admin only.
func (s *AssignmentService) GetUsersForDevice(scope *models.ActorScope, deviceID uint) ([]models.DeviceAssignment, error) {
	device, err := s.visibleDevice(scope, deviceID)
	if err != nil {
		return nil, err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return nil, fmt.Errorf("%w: device %d is outside your scope", ErrUnauthorized, deviceID)
	}

	var assignments []models.DeviceAssignment
	if err := s.DB.Preload("User").
		Where("device_id = ?", deviceID).
		Order("id asc").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
