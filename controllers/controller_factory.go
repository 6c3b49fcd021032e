package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"greenhouse-http-service/internal/error/code"
	"greenhouse-http-service/internal/error/response"
	"greenhouse-http-service/models"
	"greenhouse-http-service/services"
	"greenhouse-http-service/services/container"
)

// BaseController is the interface shared by all controllers
type BaseController interface {
	GetContainer() *container.ServiceContainer
	GetContext() *gin.Context
}

// BaseControllerImpl is the base controller implementation
type BaseControllerImpl struct {
	Container *container.ServiceContainer
	Context   *gin.Context
}

// GetContainer implements BaseController
func (c *BaseControllerImpl) GetContainer() *container.ServiceContainer {
	return c.Container
}

// GetContext implements BaseController
func (c *BaseControllerImpl) GetContext() *gin.Context {
	return c.Context
}

// ControllerFactory creates controllers bound to the service container
type ControllerFactory struct {
	Container *container.ServiceContainer
}

// NewControllerFactory creates a new controller factory
func NewControllerFactory(container *container.ServiceContainer) *ControllerFactory {
	return &ControllerFactory{
		Container: container,
	}
}

// actorScope returns the scope the auth middleware stored on the request.
// When missing the request never passed authentication; the caller should
// reject it.
func actorScope(ctx *gin.Context) *models.ActorScope {
	value, exists := ctx.Get("actorScope")
	if !exists {
		return nil
	}
	scope, ok := value.(*models.ActorScope)
	if !ok {
		return nil
	}
	return scope
}

// requireScope fetches the actor scope or writes a 401 and returns nil.
func requireScope(ctx *gin.Context) *models.ActorScope {
	scope := actorScope(ctx)
	if scope == nil {
		response.FailWithMessage(ctx, code.ErrTokenInvalid, "Authentication required", nil)
	}
	return scope
}

// respondServiceError translates a service-layer error into the numbered
// API code of the calling domain. notFoundCode and conflictCode carry the
// domain-specific codes; the remaining kinds map uniformly.
func respondServiceError(ctx *gin.Context, err error, notFoundCode, conflictCode int) {
	switch {
	case errors.Is(err, services.ErrValidation):
		response.FailWithMessage(ctx, code.ErrValidation, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidAssignment):
		response.FailWithMessage(ctx, code.ErrInvalidAssignment, err.Error(), nil)
	case errors.Is(err, services.ErrUnauthorized):
		response.FailWithMessage(ctx, code.ErrUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		response.FailWithMessage(ctx, notFoundCode, err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		response.FailWithMessage(ctx, conflictCode, err.Error(), nil)
	default:
		response.Fail(ctx, code.ErrDatabase, nil)
	}
}
