package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// scopeCacheTTL bounds how stale a cached scope may be after a role change.
const scopeCacheTTL = 5 * time.Minute

// InterfaceAuthService defines the authorization engine interface
type InterfaceAuthService interface {
	Login(email, password string) (*models.User, error)
	ScopeForUser(userID uint) (*models.ActorScope, error)
}

// AuthService resolves credentials and actor scopes. Every other service
// consumes the scope it produces; no permission logic lives anywhere else.
type AuthService struct {
	DB     *gorm.DB
	Config *config.Config
	Redis  InterfaceRedisService // optional, nil disables scope caching
}

// NewAuthService creates a new authorization service.
func NewAuthService(db *gorm.DB, cfg *config.Config, redisService InterfaceRedisService) InterfaceAuthService {
	return &AuthService{
		DB:     db,
		Config: cfg,
		Redis:  redisService,
	}
}

// Login checks credentials and returns the matching active user.
// The same error is returned for a wrong email and a wrong password.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
		}
		return nil, err
	}

	if !models.CheckPasswordHash(password, user.Password) {
		return nil, fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: user account is inactive", ErrUnauthorized)
	}

	return &user, nil
}

// ScopeForUser resolves the actor scope of a user, read-through cached in
// Redis so the per-request permission lookup stays off the database.
func (s *AuthService) ScopeForUser(userID uint) (*models.ActorScope, error) {
	if s.Redis != nil {
		if scope, err := s.Redis.GetUserScope(userID); err == nil {
			return scope, nil
		}
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: user account is inactive", ErrUnauthorized)
	}

	scope := &models.ActorScope{
		UserID:    user.ID,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}

	if s.Redis != nil {
		if err := s.Redis.CacheUserScope(userID, scope, scopeCacheTTL); err != nil {
			config.Warning("failed to cache scope for user %d: %v", userID, err)
		}
	}

	return scope, nil
}
