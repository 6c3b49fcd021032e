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

// InterfaceTopicController defines the topic controller interface
type InterfaceTopicController interface {
	GetTopic()
	CreateTopic()
	UpdateTopic()
	DeleteTopic()
	SetTopicActive()
}

// TopicController handles MQTT channel requests
type TopicController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewTopicController creates a new topic controller
func NewTopicController(ctx *gin.Context, container *container.ServiceContainer) *TopicController {
	return &TopicController{
		Ctx:       ctx,
		Container: container,
	}
}

// TopicRequest is the create request body
type TopicRequest struct {
	ZoneID      uint   `json:"zone_id" binding:"required" example:"2"`
	TopicPath   string `json:"topic_path" binding:"required" example:"company/1/device/GH-CTRL-0042/seedling-bay/temperature"`
	Direction   string `json:"direction" example:"subscribe"` // publish, subscribe, both
	Description string `json:"description" example:"Ambient temperature readings"`
	QoS         int    `json:"qos" example:"1"`
}

// TopicActiveRequest toggles a topic
type TopicActiveRequest struct {
	Active *bool `json:"active" binding:"required" example:"true"`
}

// HandleTopicFunc returns a gin handler dispatching to the topic controller
func HandleTopicFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewTopicController(ctx, container)

		switch method {
		case "getTopic":
			controller.GetTopic()
		case "createTopic":
			controller.CreateTopic()
		case "updateTopic":
			controller.UpdateTopic()
		case "deleteTopic":
			controller.DeleteTopic()
		case "setTopicActive":
			controller.SetTopicActive()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

func (c *TopicController) service() services.InterfaceTopicService {
	return c.Container.GetService("topic").(services.InterfaceTopicService)
}

func (c *TopicController) pathID() (uint, bool) {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil || id <= 0 {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "Invalid topic ID", nil)
		return 0, false
	}
	return uint(id), true
}

// GetTopic fetches one topic
// @Summary      Get topic
// @Tags         Topic
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Topic ID"
// @Success      200  {object}  response.Response{data=models.Topic}
// @Failure      404  {object}  ErrorResponse
// @Router       /topics/{id} [get]
func (c *TopicController) GetTopic() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	topic, err := c.service().GetTopicByID(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrTopicNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, topic)
}

// CreateTopic registers a channel under a zone
// @Summary      Create topic
// @Description  topic_path must be unique within the zone; direction defaults to subscribe
// @Tags         Topic
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TopicRequest true "Topic parameters"
// @Success      200  {object}  response.Response{data=models.Topic}
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /topics [post]
func (c *TopicController) CreateTopic() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}

	var req TopicRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	topic := models.Topic{
		ZoneID:      req.ZoneID,
		TopicPath:   req.TopicPath,
		Direction:   models.TopicDirection(req.Direction),
		Description: req.Description,
		QoS:         req.QoS,
	}
	if err := c.service().CreateTopic(scope, &topic); err != nil {
		respondServiceError(c.Ctx, err, code.ErrZoneNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, topic)
}

// UpdateTopic updates topic fields
// @Summary      Update topic
// @Description  A topic never moves between zones; zone_id updates are ignored
// @Tags         Topic
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Topic ID"
// @Param        request body map[string]interface{} true "Fields to update"
// @Success      200  {object}  response.Response{data=models.Topic}
// @Failure      404  {object}  ErrorResponse
// @Router       /topics/{id} [put]
func (c *TopicController) UpdateTopic() {
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

	topic, err := c.service().UpdateTopic(scope, id, updates)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrTopicNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, topic)
}

// DeleteTopic removes a topic
// @Summary      Delete topic
// @Tags         Topic
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Topic ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /topics/{id} [delete]
func (c *TopicController) DeleteTopic() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	if err := c.service().DeleteTopic(scope, id); err != nil {
		respondServiceError(c.Ctx, err, code.ErrTopicNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, nil)
}

// SetTopicActive toggles a topic without touching its other fields
// @Summary      Toggle topic
// @Tags         Topic
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Topic ID"
// @Param        request body TopicActiveRequest true "Active flag"
// @Success      200  {object}  response.Response{data=models.Topic}
// @Failure      404  {object}  ErrorResponse
// @Router       /topics/{id}/active [put]
func (c *TopicController) SetTopicActive() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	var req TopicActiveRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil || req.Active == nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	topic, err := c.service().SetTopicActive(scope, id, *req.Active)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrTopicNotFound, code.ErrTopicAlreadyExist)
		return
	}
	response.Success(c.Ctx, topic)
}
