package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// InterfaceRedisService defines the cache service interface
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CacheUserScope(userID uint, scope *models.ActorScope, expiration time.Duration) error
	GetUserScope(userID uint) (*models.ActorScope, error)
	InvalidateUserScope(userID uint) error
	CacheDeviceStatus(deviceID uint, status interface{}, expiration time.Duration) error
	GetDeviceStatus(deviceID uint, dest interface{}) error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// CacheUserScope caches a resolved actor scope.
func (s *RedisService) CacheUserScope(userID uint, scope *models.ActorScope, expiration time.Duration) error {
	return s.Set(fmt.Sprintf("scope:%d", userID), scope, expiration)
}

// GetUserScope reads a cached actor scope; returns redis.Nil error on miss.
func (s *RedisService) GetUserScope(userID uint) (*models.ActorScope, error) {
	var scope models.ActorScope
	if err := s.Get(fmt.Sprintf("scope:%d", userID), &scope); err != nil {
		return nil, err
	}
	return &scope, nil
}

// InvalidateUserScope drops a cached scope after a role or company change.
func (s *RedisService) InvalidateUserScope(userID uint) error {
	return s.Delete(fmt.Sprintf("scope:%d", userID))
}

// CacheDeviceStatus caches the latest status snapshot reported by a device.
func (s *RedisService) CacheDeviceStatus(deviceID uint, status interface{}, expiration time.Duration) error {
	return s.Set(fmt.Sprintf("device_status:%d", deviceID), status, expiration)
}

// GetDeviceStatus reads the cached status snapshot of a device.
func (s *RedisService) GetDeviceStatus(deviceID uint, dest interface{}) error {
	return s.Get(fmt.Sprintf("device_status:%d", deviceID), dest)
}
