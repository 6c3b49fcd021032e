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

// InterfaceDeviceController defines the device controller interface
type InterfaceDeviceController interface {
	GetDevices()
	GetDevice()
	CreateDevice()
	UpdateDevice()
	DeleteDevice()
	GetDeviceStatus()
	GetDeviceUsers()
	GetDeviceAssignments()
	AssignUser()
	UnassignUser()
	GetDeviceZones()
	ReportStatus()
}

// DeviceController handles greenhouse controller requests
type DeviceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDeviceController creates a new device controller
func NewDeviceController(ctx *gin.Context, container *container.ServiceContainer) *DeviceController {
	return &DeviceController{
		Ctx:       ctx,
		Container: container,
	}
}

// DeviceRequest is the create request body
type DeviceRequest struct {
	DeviceNumber string `json:"device_number" binding:"required" example:"GH-CTRL-0042"`
	Name         string `json:"name" binding:"required" example:"North wing controller"`
	Description  string `json:"description" example:"Controls vents and irrigation in the north wing"`
	CompanyID    uint   `json:"company_id" binding:"required" example:"1"`
}

// AssignmentRequest grants a user access to the device in the path
type AssignmentRequest struct {
	UserID      uint   `json:"user_id" binding:"required" example:"7"`
	AccessLevel string `json:"access_level" binding:"required" example:"write"` // read, write, control
}

// StatusReportRequest is the HTTP heartbeat fallback for devices that
// cannot reach the MQTT broker.
type StatusReportRequest struct {
	CompanyID    uint              `json:"company_id" binding:"required" example:"1"`
	DeviceNumber string            `json:"device_number" binding:"required" example:"GH-CTRL-0042"`
	Status       string            `json:"status" example:"online"`
	Timestamp    int64             `json:"timestamp" example:"1735689600000"`
	Metrics      map[string]string `json:"metrics,omitempty"`
}

// HandleDeviceFunc returns a gin handler dispatching to the device controller
func HandleDeviceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDeviceController(ctx, container)

		switch method {
		case "getDevices":
			controller.GetDevices()
		case "getDevice":
			controller.GetDevice()
		case "createDevice":
			controller.CreateDevice()
		case "updateDevice":
			controller.UpdateDevice()
		case "deleteDevice":
			controller.DeleteDevice()
		case "getDeviceStatus":
			controller.GetDeviceStatus()
		case "getDeviceUsers":
			controller.GetDeviceUsers()
		case "getDeviceAssignments":
			controller.GetDeviceAssignments()
		case "assignUser":
			controller.AssignUser()
		case "unassignUser":
			controller.UnassignUser()
		case "getDeviceZones":
			controller.GetDeviceZones()
		case "reportStatus":
			controller.ReportStatus()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

func (c *DeviceController) service() services.InterfaceDeviceService {
	return c.Container.GetService("device").(services.InterfaceDeviceService)
}

func (c *DeviceController) assignments() services.InterfaceAssignmentService {
	return c.Container.GetService("assignment").(services.InterfaceAssignmentService)
}

func (c *DeviceController) pathID() (uint, bool) {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil || id <= 0 {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "Invalid device ID", nil)
		return 0, false
	}
	return uint(id), true
}

// GetDevices lists devices visible to the caller
// @Summary      List devices
// @Description  Admins see all devices, managers their company, plain users their assignments
// @Tags         Device
// @Produce      json
// @Security     BearerAuth
// @Param        pageNum query int false "Page number"
// @Param        pageSize query int false "Page size"
// @Success      200  {object}  response.Response{data=[]models.Device}
// @Failure      401  {object}  ErrorResponse
// @Router       /devices [get]
func (c *DeviceController) GetDevices() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}

	var query models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&query); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "Invalid pagination parameters", nil)
		return
	}
	query.Normalize()

	devices, total, err := c.service().GetAllDevices(scope, query.PageNum, query.PageSize)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}

	response.Success(c.Ctx, models.NewPaginationResult(total, query.PageNum, query.PageSize, devices))
}

// GetDevice fetches one device
// @Summary      Get device
// @Tags         Device
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Device ID"
// @Success      200  {object}  response.Response{data=models.Device}
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id} [get]
func (c *DeviceController) GetDevice() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	device, err := c.service().GetDeviceByID(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, device)
}

// CreateDevice registers a device under a managed company
// @Summary      Create device
// @Description  device_number must be unique within the company; the MQTT topic name is derived
// @Tags         Device
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body DeviceRequest true "Device parameters"
// @Success      200  {object}  response.Response{data=models.Device}
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /devices [post]
func (c *DeviceController) CreateDevice() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}

	var req DeviceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	device := models.Device{
		DeviceNumber: req.DeviceNumber,
		Name:         req.Name,
		Description:  req.Description,
		CompanyID:    req.CompanyID,
	}
	if err := c.service().CreateDevice(scope, &device); err != nil {
		respondServiceError(c.Ctx, err, code.ErrCompanyNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, device)
}

// UpdateDevice updates device fields
// @Summary      Update device
// @Description  Liveness fields are ignored here; only the telemetry ingester writes them
// @Tags         Device
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Device ID"
// @Param        request body map[string]interface{} true "Fields to update"
// @Success      200  {object}  response.Response{data=models.Device}
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id} [put]
func (c *DeviceController) UpdateDevice() {
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

	device, err := c.service().UpdateDevice(scope, id, updates)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, device)
}

// DeleteDevice removes a device with its assignments, zones and topics
// @Summary      Delete device
// @Tags         Device
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Device ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id} [delete]
func (c *DeviceController) DeleteDevice() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	if err := c.service().DeleteDevice(scope, id); err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, nil)
}

// GetDeviceStatus returns the liveness snapshot of a device
// @Summary      Get device status
// @Tags         Device
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Device ID"
// @Success      200  {object}  response.Response{data=services.DeviceStatus}
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id}/status [get]
func (c *DeviceController) GetDeviceStatus() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	status, err := c.service().GetDeviceStatus(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, status)
}

// GetDeviceUsers lists assignments with user records preloaded
// @Summary      List device users
// @Description  Manager/admin view of who may reach the device, with access levels
// @Tags         Device
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Device ID"
// @Success      200  {object}  response.Response{data=[]models.DeviceAssignment}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id}/users [get]
func (c *DeviceController) GetDeviceUsers() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	assignments, err := c.assignments().GetUsersForDevice(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, assignments)
}

// GetDeviceAssignments lists the assignments of a device
// @Summary      List device assignments
// @Description  Plain users only see their own assignment
// @Tags         Device
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Device ID"
// @Success      200  {object}  response.Response{data=[]models.DeviceAssignment}
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id}/assignments [get]
func (c *DeviceController) GetDeviceAssignments() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	assignments, err := c.assignments().ListAssignments(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, assignments)
}

// AssignUser grants a user tiered access to a device
// @Summary      Assign user to device
// @Description  Idempotent upsert: assigning the same pair again only moves the access level
// @Tags         Device
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Device ID"
// @Param        request body AssignmentRequest true "Assignment parameters"
// @Success      200  {object}  response.Response{data=models.DeviceAssignment}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id}/assignments [post]
func (c *DeviceController) AssignUser() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	var req AssignmentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	assignment, err := c.assignments().Assign(scope, id, req.UserID, models.AccessLevel(req.AccessLevel))
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, assignment)
}

// UnassignUser revokes a user's access to a device
// @Summary      Unassign user from device
// @Description  Revoking an assignment that does not exist is a no-op
// @Tags         Device
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Device ID"
// @Param        user_id path int true "User ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id}/assignments/{user_id} [delete]
func (c *DeviceController) UnassignUser() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	userID, err := strconv.Atoi(c.Ctx.Param("user_id"))
	if err != nil || userID <= 0 {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "Invalid user ID", nil)
		return
	}

	if err := c.assignments().Unassign(scope, id, uint(userID)); err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, nil)
}

// GetDeviceZones lists the zones of a device
// @Summary      List device zones
// @Tags         Device
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Device ID"
// @Success      200  {object}  response.Response{data=[]models.Zone}
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id}/zones [get]
func (c *DeviceController) GetDeviceZones() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	zoneService := c.Container.GetService("zone").(services.InterfaceZoneService)
	zones, err := zoneService.GetZonesForDevice(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrDeviceNotFound, code.ErrDeviceAlreadyExist)
		return
	}
	response.Success(c.Ctx, zones)
}

// ReportStatus ingests an HTTP heartbeat from a device
// @Summary      Report device status
// @Description  Fallback for devices without MQTT; applies the same heartbeat path as the broker
// @Tags         Device
// @Accept       json
// @Produce      json
// @Param        request body StatusReportRequest true "Heartbeat payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /device/status [post]
func (c *DeviceController) ReportStatus() {
	var req StatusReportRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	telemetry := c.Container.GetService("telemetry").(services.InterfaceTelemetryService)
	report := services.DeviceReport{
		Status:    req.Status,
		Timestamp: req.Timestamp,
		Metrics:   req.Metrics,
	}
	if err := telemetry.RecordHeartbeat(req.CompanyID, req.DeviceNumber, &report); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDeviceNotFound, "Unknown device", nil)
		return
	}
	response.Success(c.Ctx, nil)
}
