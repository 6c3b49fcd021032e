package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"greenhouse-http-service/config"
	"greenhouse-http-service/internal/error/code"
	"greenhouse-http-service/internal/error/response"
	"greenhouse-http-service/models"
	"greenhouse-http-service/services"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware wires the token service used by the auth middleware.
func InitAuthMiddleware(cfg *config.Config) {
	jwtService = services.NewJWTService(cfg)
}

// scopeKey is the gin context key the resolved actor scope is stored under.
const scopeKey = "actorScope"

// extractToken strips the "Bearer " prefix from the Authorization header.
func extractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return authHeader
}

// Authentication validates the bearer token and stores the resolved
// actor scope in the request context. Every protected route goes
// through it; authorization itself happens in the services.
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Authorization header is required", nil)
			c.Abort()
			return
		}

		tokenString := extractToken(authHeader)
		if tokenString == "" {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Authorization header format must be Bearer {token}", nil)
			c.Abort()
			return
		}

		scope, err := jwtService.ExtractScope(tokenString)
		if err != nil {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Invalid or expired token", nil)
			c.Abort()
			return
		}

		c.Set(scopeKey, scope)
		c.Set("userID", scope.UserID)
		c.Set("role", string(scope.Role))
		c.Next()
	}
}

// RequireManager rejects callers below manager rank. Admins pass.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := GetScope(c)
		if scope == nil || !(scope.IsAdmin() || scope.IsManager()) {
			response.FailWithMessage(c, code.ErrUnauthorized, "Insufficient permissions: requires manager role", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everyone except platform admins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := GetScope(c)
		if scope == nil || !scope.IsAdmin() {
			response.FailWithMessage(c, code.ErrUnauthorized, "Insufficient permissions: requires admin role", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetScope returns the actor scope stored by Authentication, or nil.
func GetScope(c *gin.Context) *models.ActorScope {
	value, exists := c.Get(scopeKey)
	if !exists {
		return nil
	}
	scope, ok := value.(*models.ActorScope)
	if !ok {
		return nil
	}
	return scope
}
