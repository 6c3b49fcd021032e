package routes

import (
	"time"

	"greenhouse-http-service/controllers"
	_ "greenhouse-http-service/docs"
	"greenhouse-http-service/internal/app/middleware"
	"greenhouse-http-service/services/container"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter initializes and returns the configured router
func SetupRouter(serviceContainer *container.ServiceContainer) *gin.Engine {
	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	middleware.InitAuthMiddleware(serviceContainer.GetConfig())

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes configures all API routes
func registerRoutes(r *gin.Engine, container *container.ServiceContainer) {
	api := r.Group("/api")
	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes registers routes reachable without a token
func registerPublicRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	healthController := controllers.NewHealthCheckController()
	api.GET("/ping", healthController.Ping)

	// Auth. The limiter key must include the path: login and register
	// carry different budgets, and a bucket keyed on bare IP would be
	// shared between them.
	api.POST("/auth/login", middleware.CombinedRateLimiter(2, 5), controllers.HandleJWTFunc(container, "login"))
	api.POST("/auth/register", middleware.CombinedRateLimiter(1, 3), controllers.HandleJWTFunc(container, "register"))
	api.GET("/auth/validate-token", controllers.HandleJWTFunc(container, "validateToken"))

	// HTTP heartbeat fallback for devices without an MQTT link
	api.POST("/device/status", middleware.IPRateLimiter(5, 10), controllers.HandleDeviceFunc(container, "reportStatus"))
}

// registerAuthenticatedRoutes registers routes behind the auth middleware
func registerAuthenticatedRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	auth := api.Group("/")
	auth.Use(middleware.Authentication())

	// Cached reads stay short-lived: status snapshots move with every
	// heartbeat and company listings change on sign-up.
	statusCache := middleware.Cache(middleware.CacheConfig{Expiration: 10 * time.Second})
	listCache := middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second})

	// Role gates at the route level; the services re-check against the
	// actor scope on every call.
	adminOnly := middleware.RequireAdmin()
	managerOnly := middleware.RequireManager()

	// Companies
	auth.Group("/companies").GET("", listCache, controllers.HandleCompanyFunc(container, "getCompanies"))
	auth.Group("/companies").GET("/:id", controllers.HandleCompanyFunc(container, "getCompany"))
	auth.Group("/companies").POST("", adminOnly, controllers.HandleCompanyFunc(container, "createCompany"))
	auth.Group("/companies").PUT("/:id", managerOnly, controllers.HandleCompanyFunc(container, "updateCompany"))
	auth.Group("/companies").DELETE("/:id", adminOnly, controllers.HandleCompanyFunc(container, "deleteCompany"))
	auth.Group("/companies").GET("/:id/devices", controllers.HandleCompanyFunc(container, "getCompanyDevices"))
	auth.Group("/companies").GET("/:id/users", controllers.HandleCompanyFunc(container, "getCompanyUsers"))

	// Users
	auth.Group("/users").GET("", controllers.HandleUserFunc(container, "getUsers"))
	auth.Group("/users").GET("/:id", controllers.HandleUserFunc(container, "getUser"))
	auth.Group("/users").POST("", managerOnly, controllers.HandleUserFunc(container, "createUser"))
	auth.Group("/users").PUT("/:id", managerOnly, controllers.HandleUserFunc(container, "updateUser"))
	auth.Group("/users").DELETE("/:id", managerOnly, controllers.HandleUserFunc(container, "deleteUser"))
	auth.Group("/users").GET("/:id/devices", controllers.HandleUserFunc(container, "getUserDevices"))

	// Devices and assignments
	auth.Group("/devices").GET("", controllers.HandleDeviceFunc(container, "getDevices"))
	auth.Group("/devices").GET("/:id", controllers.HandleDeviceFunc(container, "getDevice"))
	auth.Group("/devices").POST("", managerOnly, controllers.HandleDeviceFunc(container, "createDevice"))
	auth.Group("/devices").PUT("/:id", managerOnly, controllers.HandleDeviceFunc(container, "updateDevice"))
	auth.Group("/devices").DELETE("/:id", managerOnly, controllers.HandleDeviceFunc(container, "deleteDevice"))
	auth.Group("/devices").GET("/:id/status", statusCache, controllers.HandleDeviceFunc(container, "getDeviceStatus"))
	auth.Group("/devices").GET("/:id/users", controllers.HandleDeviceFunc(container, "getDeviceUsers"))
	auth.Group("/devices").GET("/:id/assignments", controllers.HandleDeviceFunc(container, "getDeviceAssignments"))
	auth.Group("/devices").POST("/:id/assignments", managerOnly, controllers.HandleDeviceFunc(container, "assignUser"))
	auth.Group("/devices").DELETE("/:id/assignments/:user_id", managerOnly, controllers.HandleDeviceFunc(container, "unassignUser"))
	auth.Group("/devices").GET("/:id/zones", controllers.HandleDeviceFunc(container, "getDeviceZones"))

	// Zones
	auth.Group("/zones").GET("/:id", controllers.HandleZoneFunc(container, "getZone"))
	auth.Group("/zones").POST("", managerOnly, controllers.HandleZoneFunc(container, "createZone"))
	auth.Group("/zones").PUT("/:id", managerOnly, controllers.HandleZoneFunc(container, "updateZone"))
	auth.Group("/zones").DELETE("/:id", managerOnly, controllers.HandleZoneFunc(container, "deleteZone"))
	auth.Group("/zones").GET("/:id/topics", controllers.HandleZoneFunc(container, "getZoneTopics"))

	// Topics
	auth.Group("/topics").GET("/:id", controllers.HandleTopicFunc(container, "getTopic"))
	auth.Group("/topics").POST("", managerOnly, controllers.HandleTopicFunc(container, "createTopic"))
	auth.Group("/topics").PUT("/:id", managerOnly, controllers.HandleTopicFunc(container, "updateTopic"))
	auth.Group("/topics").DELETE("/:id", managerOnly, controllers.HandleTopicFunc(container, "deleteTopic"))
	auth.Group("/topics").PUT("/:id/active", managerOnly, controllers.HandleTopicFunc(container, "setTopicActive"))
}
