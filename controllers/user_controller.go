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

// InterfaceUserController defines the user controller interface
type InterfaceUserController interface {
	GetUsers()
	GetUser()
	CreateUser()
	UpdateUser()
	DeleteUser()
	GetUserDevices()
}

// UserController handles user account requests
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController creates a new user controller
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// UserRequest is the create request body
type UserRequest struct {
	Name      string `json:"name" binding:"required" example:"Bob"`
	Email     string `json:"email" binding:"required,email" example:"bob@greenhouse.example"`
	Password  string `json:"password" binding:"required,min=6" example:"secret123"`
	CompanyID uint   `json:"company_id" binding:"required" example:"1"`
	Role      string `json:"role" example:"user"`
}

// HandleUserFunc returns a gin handler dispatching to the user controller
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getUser":
			controller.GetUser()
		case "createUser":
			controller.CreateUser()
		case "updateUser":
			controller.UpdateUser()
		case "deleteUser":
			controller.DeleteUser()
		case "getUserDevices":
			controller.GetUserDevices()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

func (c *UserController) service() services.InterfaceUserService {
	return c.Container.GetService("user").(services.InterfaceUserService)
}

func (c *UserController) pathID() (uint, bool) {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil || id <= 0 {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "Invalid user ID", nil)
		return 0, false
	}
	return uint(id), true
}

// GetUsers lists accounts visible to the caller
// @Summary      List users
// @Description  Admins see all users, managers their company, plain users themselves
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        pageNum query int false "Page number"
// @Param        pageSize query int false "Page size"
// @Success      200  {object}  response.Response{data=[]models.User}
// @Failure      401  {object}  ErrorResponse
// @Router       /users [get]
func (c *UserController) GetUsers() {
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

	users, total, err := c.service().GetAllUsers(scope, query.PageNum, query.PageSize)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrUserNotFound, code.ErrUserAlreadyExist)
		return
	}

	response.Success(c.Ctx, models.NewPaginationResult(total, query.PageNum, query.PageSize, users))
}

// GetUser fetches one account
// @Summary      Get user
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200  {object}  response.Response{data=models.User}
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (c *UserController) GetUser() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	user, err := c.service().GetUserByID(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrUserNotFound, code.ErrUserAlreadyExist)
		return
	}
	response.Success(c.Ctx, user)
}

// CreateUser creates an account inside a managed company
// @Summary      Create user
// @Description  Managers create accounts in their company; only admins may grant the admin role
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UserRequest true "User parameters"
// @Success      200  {object}  response.Response{data=models.User}
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users [post]
func (c *UserController) CreateUser() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}

	var req UserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password, // hashed by the model hook
		CompanyID: req.CompanyID,
		Role:      role,
		IsActive:  true,
	}
	if err := c.service().CreateUser(scope, &user); err != nil {
		respondServiceError(c.Ctx, err, code.ErrUserNotFound, code.ErrUserAlreadyExist)
		return
	}
	response.Success(c.Ctx, user)
}

// UpdateUser updates account fields
// @Summary      Update user
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Param        request body map[string]interface{} true "Fields to update"
// @Success      200  {object}  response.Response{data=models.User}
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [put]
func (c *UserController) UpdateUser() {
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

	user, err := c.service().UpdateUser(scope, id, updates)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrUserNotFound, code.ErrUserAlreadyExist)
		return
	}
	response.Success(c.Ctx, user)
}

// DeleteUser removes or deactivates an account
// @Summary      Delete user
// @Description  Accounts still referenced by assignments are deactivated instead of removed
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (c *UserController) DeleteUser() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	if err := c.service().DeleteUser(scope, id); err != nil {
		respondServiceError(c.Ctx, err, code.ErrUserNotFound, code.ErrUserAlreadyExist)
		return
	}
	response.Success(c.Ctx, nil)
}

// GetUserDevices lists the devices a user can reach
// @Summary      List user devices
// @Description  Role-based: admins get everything, managers their company, plain users their assignments
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200  {object}  response.Response{data=[]models.Device}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/devices [get]
func (c *UserController) GetUserDevices() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	devices, err := c.service().GetDevicesForUser(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrUserNotFound, code.ErrUserAlreadyExist)
		return
	}
	response.Success(c.Ctx, devices)
}
