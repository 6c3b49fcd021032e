package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// InterfaceUserService defines the user service interface
type InterfaceUserService interface {
	GetAllUsers(scope *models.ActorScope, page, pageSize int) ([]models.User, int64, error)
	GetUserByID(scope *models.ActorScope, id uint) (*models.User, error)
	CreateUser(scope *models.ActorScope, user *models.User) error
	UpdateUser(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.User, error)
	DeleteUser(scope *models.ActorScope, id uint) error
	GetDevicesForUser(scope *models.ActorScope, userID uint) ([]models.Device, error)
}

// UserService manages accounts inside a company.
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
	Redis  InterfaceRedisService // optional, used to drop cached scopes on change
}

// NewUserService creates a new user service.
func NewUserService(db *gorm.DB, cfg *config.Config, redisService InterfaceRedisService) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
		Redis:  redisService,
	}
}

// GetAllUsers lists users visible to the caller, paginated and ordered by id.
// Admins see all, managers their company, plain users only themselves.
func (s *UserService) GetAllUsers(scope *models.ActorScope, page, pageSize int) ([]models.User, int64, error) {
	query := s.DB.Model(&models.User{})
	switch {
	case scope.IsAdmin():
		// unrestricted
	case scope.IsManager():
		query = query.Where("company_id = ?", scope.CompanyID)
	default:
		query = query.Where("id = ?", scope.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	offset := (page - 1) * pageSize
	if err := query.Order("id asc").Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// GetUserByID fetches a user the caller is allowed to see.
func (s *UserService) GetUserByID(scope *models.ActorScope, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}

	if !scope.CanActOnUser(&user) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return &user, nil
}

// CreateUser creates an account in a company the caller manages.
// Managers cannot hand out the admin role.
func (s *UserService) CreateUser(scope *models.ActorScope, user *models.User) error {
	if user.Name == "" || user.Email == "" || user.Password == "" || user.CompanyID == 0 {
		return fmt.Errorf("%w: name, email, password and company_id are required", ErrValidation)
	}
	if !models.ValidRole(user.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, user.Role)
	}
	if !scope.CanManageCompany(user.CompanyID) {
		return fmt.Errorf("%w: company %d is outside your scope", ErrUnauthorized, user.CompanyID)
	}
	if !scope.CanGrantRole(user.Role) {
		return fmt.Errorf("%w: managers may not grant the admin role", ErrUnauthorized)
	}

	var companyCount int64
	if err := s.DB.Model(&models.Company{}).Where("id = ?", user.CompanyID).Count(&companyCount).Error; err != nil {
		return err
	}
	if companyCount == 0 {
		return fmt.Errorf("%w: company %d", ErrNotFound, user.CompanyID)
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: email %q already registered", ErrConflict, user.Email)
	}

	user.IsActive = true
	return s.DB.Create(user).Error
}

// UpdateUser updates account fields, re-checking email uniqueness, role
// grants and company moves. Cached scopes are dropped so the change
// takes effect.
func (s *UserService) UpdateUser(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.User, error) {
	user, err := s.GetUserByID(scope, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanManageCompany(user.CompanyID) {
		return nil, fmt.Errorf("%w: user %d is outside your scope", ErrUnauthorized, id)
	}

	// Moving a user to another company is allowed only when the caller
	// manages the destination too, and only to a company that exists.
	// All checks run before anything is written.
	if companyVal, ok := updates["company_id"]; ok {
		companyID, okNum := toUint(companyVal)
		if !okNum || companyID == 0 {
			return nil, fmt.Errorf("%w: company_id must be a positive integer", ErrValidation)
		}
		if !scope.CanManageCompany(companyID) {
			return nil, fmt.Errorf("%w: company %d is outside your scope", ErrUnauthorized, companyID)
		}
		var companyCount int64
		if err := s.DB.Model(&models.Company{}).Where("id = ?", companyID).Count(&companyCount).Error; err != nil {
			return nil, err
		}
		if companyCount == 0 {
			return nil, fmt.Errorf("%w: company %d", ErrNotFound, companyID)
		}
		updates["company_id"] = companyID
	}

	if email, ok := updates["email"].(string); ok && email != user.Email {
		var count int64
		if err := s.DB.Model(&models.User{}).Where("email = ? AND id != ?", email, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: email %q already registered", ErrConflict, email)
		}
	}

	if roleVal, ok := updates["role"]; ok {
		role := models.Role(fmt.Sprintf("%v", roleVal))
		if !models.ValidRole(role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
		}
		if !scope.CanGrantRole(role) {
			return nil, fmt.Errorf("%w: managers may not grant the admin role", ErrUnauthorized)
		}
		updates["role"] = role
	}

	if password, ok := updates["password"].(string); ok {
		hashed, err := models.HashPassword(password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}

	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil {
		_ = s.Redis.InvalidateUserScope(id)
	}

	return s.GetUserByID(scope, id)
}

// DeleteUser removes an account. Accounts still referenced by device
// assignments are deactivated instead of hard-deleted.
func (s *UserService) DeleteUser(scope *models.ActorScope, id uint) error {
	user, err := s.GetUserByID(scope, id)
	if err != nil {
		return err
	}
	if !scope.CanManageCompany(user.CompanyID) {
		return fmt.Errorf("%w: user %d is outside your scope", ErrUnauthorized, id)
	}
	if user.ID == scope.UserID {
		return fmt.Errorf("%w: cannot delete your own account", ErrValidation)
	}

	var assignmentCount int64
	if err := s.DB.Model(&models.DeviceAssignment{}).Where("user_id = ?", id).Count(&assignmentCount).Error; err != nil {
		return err
	}

	if assignmentCount > 0 {
		if err := s.DB.Model(user).Update("is_active", false).Error; err != nil {
			return err
		}
	} else if err := s.DB.Delete(user).Error; err != nil {
		return err
	}

	if s.Redis != nil {
		_ = s.Redis.InvalidateUserScope(id)
	}
	return nil
}

// GetDevicesForUser lists the devices a user can reach, ordered by id:
// assigned devices for plain users, every company device for managers,
// all devices for admins. Callers may only ask about themselves unless
// they manage the target user's company.
func (s *UserService) GetDevicesForUser(scope *models.ActorScope, userID uint) ([]models.Device, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	if scope.UserID != userID && !scope.CanManageCompany(user.CompanyID) {
		return nil, fmt.Errorf("%w: cannot list devices of another user", ErrUnauthorized)
	}

	var devices []models.Device
	switch user.Role {
	case models.RoleAdmin:
		if err := s.DB.Order("id asc").Find(&devices).Error; err != nil {
			return nil, err
		}
	case models.RoleManager:
		if err := s.DB.Where("company_id = ?", user.CompanyID).Order("id asc").Find(&devices).Error; err != nil {
			return nil, err
		}
	default:
		if err := s.DB.
			Joins("JOIN device_assignments ON device_assignments.device_id = devices.id").
			Where("device_assignments.user_id = ?", userID).
			Order("devices.id asc").
			Find(&devices).Error; err != nil {
			return nil, err
		}
	}

	return devices, nil
}
