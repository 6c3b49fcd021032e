package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"greenhouse-http-service/internal/error/code"
	"greenhouse-http-service/internal/error/response"
	"greenhouse-http-service/models"
	"greenhouse-http-service/services"
	"greenhouse-http-service/services/container"
)

// InterfaceZoneController defines the zone controller interface
type InterfaceZoneController interface {
	GetZone()
	CreateZone()
	UpdateZone()
	DeleteZone()
	GetZoneTopics()
}

// ZoneController handles monitored area requests
type ZoneController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewZoneController creates a new zone controller
func NewZoneController(ctx *gin.Context, container *container.ServiceContainer) *ZoneController {
	return &ZoneController{
		Ctx:       ctx,
		Container: container,
	}
}

// ZoneRequest is the create request body
type ZoneRequest struct {
	Name        string `json:"name" binding:"required" example:"Seedling bay"`
	TopicName   string `json:"topic_name" binding:"required" example:"seedling-bay"`
	Description string `json:"description" example:"Propagation tables, rows 1-4"`
	DeviceID    uint   `json:"device_id" binding:"required" example:"3"`
}

// HandleZoneFunc returns a gin handler dispatching to the zone controller
func HandleZoneFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewZoneController(ctx, container)

		switch method {
		case "getZone":
			controller.GetZone()
		case "createZone":
			controller.CreateZone()
		case "updateZone":
			controller.UpdateZone()
		case "deleteZone":
			controller.DeleteZone()
		case "getZoneTopics":
			controller.GetZoneTopics()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

func (c *ZoneController) service() services.InterfaceZoneService {
	return c.Container.GetService("zone").(services.InterfaceZoneService)
}

func (c *ZoneController) pathID() (uint, bool) {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil || id <= 0 {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "Invalid zone ID", nil)
		return 0, false
	}
	return uint(id), true
}

// GetZone fetches one zone
// @Summary      Get zone
// @Tags         Zone
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Zone ID"
// @Success      200  {object}  response.Response{data=models.Zone}
// @Failure      404  {object}  ErrorResponse
// @Router       /zones/{id} [get]
func (c *ZoneController) GetZone() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	zone, err := c.service().GetZoneByID(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrZoneNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, zone)
}

// CreateZone creates a zone under a managed device
// @Summary      Create zone
// @Tags         Zone
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ZoneRequest true "Zone parameters"
// @Success      200  {object}  response.Response{data=models.Zone}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /zones [post]
func (c *ZoneController) CreateZone() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}

	var req ZoneRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	zone := models.Zone{
		Name:        req.Name,
		TopicName:   req.TopicName,
		Description: req.Description,
		DeviceID:    req.DeviceID,
	}
	if err := c.service().CreateZone(scope, &zone); err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, zone)
}

// UpdateZone updates zone fields
// @Summary      Update zone
// @Description  A zone never moves between devices; device_id updates are ignored
// @Tags         Zone
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Zone ID"
// @Param        request body map[string]interface{} true "Fields to update"
// @Success      200  {object}  response.Response{data=models.Zone}
// @Failure      404  {object}  ErrorResponse
// @Router       /zones/{id} [put]
func (c *ZoneController) UpdateZone() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Ctx.ShouldBindJSON(&updates); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	zone, err := c.service().UpdateZone(scope, id, updates)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrZoneNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, zone)
}

// DeleteZone removes a zone and its topics
// @Summary      Delete zone
// @Tags         Zone
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Zone ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /zones/{id} [delete]
func (c *ZoneController) DeleteZone() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	if err := c.service().DeleteZone(scope, id); err != nil {
		respondServiceError(c.Ctx, err, code.ErrZoneNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, nil)
}

// GetZoneTopics lists the topics of a zone
// @Summary      List zone topics
// @Description  Pass active=true to filter out disabled topics
// @Tags         Zone
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Zone ID"
// @Param        active query bool false "Only active topics"
// @Success      200  {object}  response.Response{data=[]models.Topic}
// @Failure      404  {object}  ErrorResponse
// @Router       /zones/{id}/topics [get]
func (c *ZoneController) GetZoneTopics() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	activeOnly := c.Ctx.Query("active") == "true"

	topicService := c.Container.GetService("topic").(services.InterfaceTopicService)
	topics, err := topicService.GetTopicsForZone(scope, id, activeOnly)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrZoneNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, topics)
}
