package container

import (
	"context"
	"sync"
	"time"

	"greenhouse-http-service/config"
	"greenhouse-http-service/services"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer manages dependency injection for all services
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// base services
	jwtService   services.InterfaceJWTService
	redisService services.InterfaceRedisService
	authService  services.InterfaceAuthService

	// telemetry ingester
	telemetryService services.InterfaceTelemetryService

	// business services
	companyService    services.InterfaceCompanyService
	userService       services.InterfaceUserService
	deviceService     services.InterfaceDeviceService
	assignmentService services.InterfaceAssignmentService
	zoneService       services.InterfaceZoneService
	topicService      services.InterfaceTopicService

	mu sync.RWMutex
}

// NewServiceContainer creates a new service container
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("config is nil")
	}

	// Probe the Redis connection; the services degrade to uncached
	// operation when it is unreachable.
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			config.Warning("Redis ping failed: %v, running without cache", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices initializes all services
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// base services
	c.jwtService = services.NewJWTService(c.config)
	c.redisService = services.NewRedisService(c.config)
	c.authService = services.NewAuthService(c.db, c.config, c.redisService)

	// business services
	c.companyService = services.NewCompanyService(c.db, c.config)
	c.userService = services.NewUserService(c.db, c.config, c.redisService)
	c.deviceService = services.NewDeviceService(c.db, c.config, c.redisService)
	c.assignmentService = services.NewAssignmentService(c.db, c.config)
	c.zoneService = services.NewZoneService(c.db, c.config)
	c.topicService = services.NewTopicService(c.db, c.config)

	// telemetry ingester, connected by main after migrations
	c.telemetryService = services.NewTelemetryService(c.db, c.config, c.deviceService, c.redisService)
}

// GetService returns the service registered under the given name
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "auth":
		return c.authService
	case "telemetry":
		return c.telemetryService
	case "company":
		return c.companyService
	case "user":
		return c.userService
	case "device":
		return c.deviceService
	case "assignment":
		return c.assignmentService
	case "zone":
		return c.zoneService
	case "topic":
		return c.topicService
	default:
		return nil
	}
}

// GetDB returns the database connection
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GetConfig returns the application configuration
func (c *ServiceContainer) GetConfig() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}
