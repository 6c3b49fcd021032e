package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"greenhouse-http-service/internal/error/code"
	"greenhouse-http-service/internal/error/response"
	"greenhouse-http-service/models"
	"greenhouse-http-service/services"
	"greenhouse-http-service/services/container"
)

// InterfaceJWTController defines the auth controller interface
type InterfaceJWTController interface {
	Login()
	Register()
	ValidateToken()
}

// JWTController handles authentication requests
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController creates a new auth controller
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest is the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"manager@greenhouse.example"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RegisterRequest creates a new company together with its first manager
// account. Used for tenant sign-up; later accounts go through /users.
type RegisterRequest struct {
	CompanyName string `json:"company_name" binding:"required" example:"Greenhouse Ops Ltd"`
	CompanyCode string `json:"company_code" binding:"required" example:"GH001"`
	Name        string `json:"name" binding:"required" example:"Alice"`
	Email       string `json:"email" binding:"required,email" example:"alice@greenhouse.example"`
	Password    string `json:"password" binding:"required,min=6" example:"secret123"`
}

// LoginData is the payload returned on successful login.
type LoginData struct {
	Token     string `json:"token"`
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID uint   `json:"company_id"`
}

// ErrorResponse is the error envelope documented in swagger.
type ErrorResponse struct {
	Code    int         `json:"code" example:"100004"`
	Message string      `json:"message" example:"Invalid or expired token"`
	Data    interface{} `json:"data"`
}

// HandleJWTFunc returns a gin handler dispatching to the auth controller
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "register":
			controller.Register()
		case "validateToken":
			controller.ValidateToken()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

// Login authenticates a user and returns a signed token
// @Summary      User login
// @Description  Validate credentials and return a JWT carrying the user's scope
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request parameters"
// @Success      200  {object}  response.Response{data=LoginData}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)

	user, err := authService.Login(req.Email, req.Password)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrUserPasswordIncorrect, "Incorrect email or password", nil)
		return
	}

	token, err := jwtService.GenerateToken(user)
	if err != nil {
		response.Fail(c.Ctx, code.ErrUnknown, nil)
		return
	}

	response.Success(c.Ctx, LoginData{
		Token:     token,
		UserID:    user.ID,
		Name:      user.Name,
		Role:      string(user.Role),
		CompanyID: user.CompanyID,
	})
}

// Register creates a company and its first manager account
// @Summary      Tenant sign-up
// @Description  Create a new company with its first manager account and return a token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration parameters"
// @Success      200  {object}  response.Response{data=LoginData}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /auth/register [post]
func (c *JWTController) Register() {
	var req RegisterRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	db := c.Container.GetDB()
	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)

	var count int64
	if err := db.Model(&models.Company{}).Where("code = ?", req.CompanyCode).Count(&count).Error; err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	if count > 0 {
		response.FailWithMessage(c.Ctx, code.ErrCompanyAlreadyExist, "Company code already registered", nil)
		return
	}
	if err := db.Model(&models.User{}).Where("email = ?", strings.ToLower(req.Email)).Count(&count).Error; err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	if count > 0 {
		response.FailWithMessage(c.Ctx, code.ErrUserAlreadyExist, "Email already registered", nil)
		return
	}

	company := models.Company{
		Name:     req.CompanyName,
		Code:     req.CompanyCode,
		IsActive: true,
	}
	user := models.User{
		Name:     req.Name,
		Email:    strings.ToLower(req.Email),
		Password: req.Password, // hashed by the model hook
		Role:     models.RoleManager,
		IsActive: true,
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		user.CompanyID = company.ID
		return tx.Create(&user).Error
	}); err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	token, err := jwtService.GenerateToken(&user)
	if err != nil {
		response.Fail(c.Ctx, code.ErrUnknown, nil)
		return
	}

	response.Success(c.Ctx, LoginData{
		Token:     token,
		UserID:    user.ID,
		Name:      user.Name,
		Role:      string(user.Role),
		CompanyID: user.CompanyID,
	})
}

// ValidateToken verifies the bearer token carried by the request
// @Summary      Validate token
// @Description  Check a JWT and return the scope it carries
// @Tags         Auth
// @Produce      json
// @Param        Authorization header string true "Bearer {token}"
// @Success      200  {object}  response.Response{data=models.ActorScope}
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/validate-token [get]
func (c *JWTController) ValidateToken() {
	authHeader := c.Ctx.GetHeader("Authorization")
	if authHeader == "" {
		response.FailWithMessage(c.Ctx, code.ErrTokenInvalid, "Authorization header is required", nil)
		return
	}

	tokenString := authHeader
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		tokenString = parts[1]
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	scope, err := jwtService.ExtractScope(tokenString)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrTokenInvalid, "Invalid or expired token", nil)
		return
	}

	response.Success(c.Ctx, scope)
}
