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

// InterfaceCompanyController defines the company controller interface
type InterfaceCompanyController interface {
	GetCompanies()
	GetCompany()
	CreateCompany()
	UpdateCompany()
	DeleteCompany()
	GetCompanyDevices()
	GetCompanyUsers()
}

// CompanyController handles company requests
type CompanyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCompanyController creates a new company controller
func NewCompanyController(ctx *gin.Context, container *container.ServiceContainer) *CompanyController {
	return &CompanyController{
		Ctx:       ctx,
		Container: container,
	}
}

// CompanyRequest is the create/update request body
type CompanyRequest struct {
	Name       string `json:"name" binding:"required" example:"Greenhouse Ops Ltd"`
	Code       string `json:"code" binding:"required" example:"GH001"`
	Email      string `json:"email" example:"ops@greenhouse.example"`
	Phone      string `json:"phone" example:"+31 20 123 4567"`
	Address    string `json:"address" example:"Polderweg 1, Amsterdam"`
	MaxDevices int    `json:"max_devices" example:"25"`
}

// HandleCompanyFunc returns a gin handler dispatching to the company controller
func HandleCompanyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCompanyController(ctx, container)

		switch method {
		case "getCompanies":
			controller.GetCompanies()
		case "getCompany":
			controller.GetCompany()
		case "createCompany":
			controller.CreateCompany()
		case "updateCompany":
			controller.UpdateCompany()
		case "deleteCompany":
			controller.DeleteCompany()
		case "getCompanyDevices":
			controller.GetCompanyDevices()
		case "getCompanyUsers":
			controller.GetCompanyUsers()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Unknown method", nil)
		}
	}
}

func (c *CompanyController) service() services.InterfaceCompanyService {
	return c.Container.GetService("company").(services.InterfaceCompanyService)
}

func (c *CompanyController) pathID() (uint, bool) {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil || id <= 0 {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "Invalid company ID", nil)
		return 0, false
	}
	return uint(id), true
}

// GetCompanies lists companies visible to the caller
// @Summary      List companies
// @Description  Admins see all companies, managers and users only their own
// @Tags         Company
// @Produce      json
// @Security     BearerAuth
// @Param        pageNum query int false "Page number"
// @Param        pageSize query int false "Page size"
// @Success      200  {object}  response.Response{data=[]models.Company}
// @Failure      401  {object}  ErrorResponse
// @Router       /companies [get]
func (c *CompanyController) GetCompanies() {
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

	companies, total, err := c.service().GetAllCompanies(scope, query.PageNum, query.PageSize)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrCompanyNotFound, code.ErrCompanyAlreadyExist)
		return
	}

	response.Success(c.Ctx, models.NewPaginationResult(total, query.PageNum, query.PageSize, companies))
}

// GetCompany fetches one company
// @Summary      Get company
// @Tags         Company
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Company ID"
// @Success      200  {object}  response.Response{data=models.Company}
// @Failure      404  {object}  ErrorResponse
// @Router       /companies/{id} [get]
func (c *CompanyController) GetCompany() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	company, err := c.service().GetCompanyByID(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrCompanyNotFound, code.ErrCompanyAlreadyExist)
		return
	}
	response.Success(c.Ctx, company)
}

// CreateCompany registers a new company (admin only)
// @Summary      Create company
// @Tags         Company
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CompanyRequest true "Company parameters"
// @Success      200  {object}  response.Response{data=models.Company}
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /companies [post]
func (c *CompanyController) CreateCompany() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}

	var req CompanyRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request parameters", nil)
		return
	}

	company := models.Company{
		Name:       req.Name,
		Code:       req.Code,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		MaxDevices: req.MaxDevices,
		IsActive:   true,
	}
	if err := c.service().CreateCompany(scope, &company); err != nil {
		respondServiceError(c.Ctx, err, code.ErrCompanyNotFound, code.ErrCompanyAlreadyExist)
		return
	}
	response.Success(c.Ctx, company)
}

// UpdateCompany updates company fields
// @Summary      Update company
// @Tags         Company
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Company ID"
// @Param        request body map[string]interface{} true "Fields to update"
// @Success      200  {object}  response.Response{data=models.Company}
// @Failure      404  {object}  ErrorResponse
// @Router       /companies/{id} [put]
func (c *CompanyController) UpdateCompany() {
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

	company, err := c.service().UpdateCompany(scope, id, updates)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrCompanyNotFound, code.ErrCompanyAlreadyExist)
		return
	}
	response.Success(c.Ctx, company)
}

// DeleteCompany removes an empty company (admin only)
// @Summary      Delete company
// @Tags         Company
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Company ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /companies/{id} [delete]
func (c *CompanyController) DeleteCompany() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	if err := c.service().DeleteCompany(scope, id); err != nil {
		respondServiceError(c.Ctx, err, code.ErrCompanyNotFound, code.ErrCompanyNotEmpty)
		return
	}
	response.Success(c.Ctx, nil)
}

// GetCompanyDevices lists the devices owned by a company
// @Summary      List company devices
// @Tags         Company
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Company ID"
// @Success      200  {object}  response.Response{data=[]models.Device}
// @Failure      404  {object}  ErrorResponse
// @Router       /companies/{id}/devices [get]
func (c *CompanyController) GetCompanyDevices() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	devices, err := c.service().GetCompanyDevices(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrCompanyNotFound, code.ErrCompanyAlreadyExist)
		return
	}
	response.Success(c.Ctx, devices)
}

// GetCompanyUsers lists the accounts of a company
// @Summary      List company users
// @Tags         Company
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Company ID"
// @Success      200  {object}  response.Response{data=[]models.User}
// @Failure      404  {object}  ErrorResponse
// @Router       /companies/{id}/users [get]
func (c *CompanyController) GetCompanyUsers() {
	scope := requireScope(c.Ctx)
	if scope == nil {
		return
	}
	id, ok := c.pathID()
	if !ok {
		return
	}

	users, err := c.service().GetCompanyUsers(scope, id)
	if err != nil {
		respondServiceError(c.Ctx, err, code.ErrCompanyNotFound, code.ErrCompanyAlreadyExist)
		return
	}
	response.Success(c.Ctx, users)
}
