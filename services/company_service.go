package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// InterfaceCompanyService defines the company service interface
type InterfaceCompanyService interface {
	GetAllCompanies(scope *models.ActorScope, page, pageSize int) ([]models.Company, int64, error)
	GetCompanyByID(scope *models.ActorScope, id uint) (*models.Company, error)
	CreateCompany(scope *models.ActorScope, company *models.Company) error
	UpdateCompany(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.Company, error)
	DeleteCompany(scope *models.ActorScope, id uint) error
	GetCompanyDevices(scope *models.ActorScope, companyID uint) ([]models.Device, error)
	GetCompanyUsers(scope *models.ActorScope, companyID uint) ([]models.User, error)
}

// CompanyService manages the tenant root records.
type CompanyService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewCompanyService creates a new company service.
func NewCompanyService(db *gorm.DB, cfg *config.Config) InterfaceCompanyService {
	return &CompanyService{
		DB:     db,
		Config: cfg,
	}
}

// GetAllCompanies lists companies visible to the caller, paginated.
// Admins see every company, everyone else only their own.
func (s *CompanyService) GetAllCompanies(scope *models.ActorScope, page, pageSize int) ([]models.Company, int64, error) {
	query := s.DB.Model(&models.Company{})
	if !scope.IsAdmin() {
		query = query.Where("id = ?", scope.CompanyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []models.Company
	offset := (page - 1) * pageSize
	if err := query.Order("id asc").Limit(pageSize).Offset(offset).Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

// GetCompanyByID fetches a company inside the caller's scope.
func (s *CompanyService) GetCompanyByID(scope *models.ActorScope, id uint) (*models.Company, error) {
	if !scope.CanViewCompany(id) {
		return nil, fmt.Errorf("%w: company %d", ErrNotFound, id)
	}

	var company models.Company
	if err := s.DB.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &company, nil
}

// CreateCompany creates a new tenant. Admin only.
func (s *CompanyService) CreateCompany(scope *models.ActorScope, company *models.Company) error {
	if !scope.IsAdmin() {
		return fmt.Errorf("%w: only admins may create companies", ErrUnauthorized)
	}
	if company.Name == "" || company.Code == "" {
		return fmt.Errorf("%w: name and code are required", ErrValidation)
	}

	var count int64
	if err := s.DB.Model(&models.Company{}).Where("code = ?", company.Code).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: company code %q already exists", ErrConflict, company.Code)
	}

	company.IsActive = true
	return s.DB.Create(company).Error
}

// UpdateCompany updates company fields, re-checking code uniqueness.
func (s *CompanyService) UpdateCompany(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.Company, error) {
	if !scope.CanManageCompany(id) {
		return nil, fmt.Errorf("%w: company %d is outside your scope", ErrUnauthorized, id)
	}

	company, err := s.GetCompanyByID(scope, id)
	if err != nil {
		return nil, err
	}

	if code, ok := updates["code"].(string); ok && code != company.Code {
		var count int64
		if err := s.DB.Model(&models.Company{}).Where("code = ? AND id != ?", code, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: company code %q already exists", ErrConflict, code)
		}
	}

	if err := s.DB.Model(company).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetCompanyByID(scope, id)
}

// DeleteCompany removes a tenant. Refuses while users or devices still
// reference it, so nothing is silently orphaned. Admin only.
func (s *CompanyService) DeleteCompany(scope *models.ActorScope, id uint) error {
	if !scope.IsAdmin() {
		return fmt.Errorf("%w: only admins may delete companies", ErrUnauthorized)
	}

	company, err := s.GetCompanyByID(scope, id)
	if err != nil {
		return err
	}

	var userCount, deviceCount int64
	if err := s.DB.Model(&models.User{}).Where("company_id = ?", id).Count(&userCount).Error; err != nil {
		return err
	}
	if err := s.DB.Model(&models.Device{}).Where("company_id = ?", id).Count(&deviceCount).Error; err != nil {
		return err
	}
	if userCount > 0 || deviceCount > 0 {
		return fmt.Errorf("%w: company still owns %d users and %d devices", ErrConflict, userCount, deviceCount)
	}

	return s.DB.Delete(company).Error
}

// GetCompanyDevices lists the devices owned by a company, ordered by id.
func (s *CompanyService) GetCompanyDevices(scope *models.ActorScope, companyID uint) ([]models.Device, error) {
	if _, err := s.GetCompanyByID(scope, companyID); err != nil {
		return nil, err
	}

	var devices []models.Device
	if err := s.DB.Where("company_id = ?", companyID).Order("id asc").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// GetCompanyUsers lists the users belonging to a company, ordered by id.
func (s *CompanyService) GetCompanyUsers(scope *models.ActorScope, companyID uint) ([]models.User, error) {
	if _, err := s.GetCompanyByID(scope, companyID); err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.DB.Where("company_id = ?", companyID).Order("id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
