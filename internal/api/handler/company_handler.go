package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/service"
	"github.com/blackrosevn/Dev02-Reporting/pkg/response"
)

// CompanyHandler member company endpoints.
type CompanyHandler struct {
	companySvc service.CompanyService
}

// NewCompanyHandler creates a CompanyHandler.
func NewCompanyHandler(companySvc service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companySvc: companySvc}
}

// ListCompanies GET /api/v1/companies
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	var req dto.CompanyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	companies, err := h.companySvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleCompanyError(c, err)
		return
	}

	response.OK(c, gin.H{"list": companies})
}

// CreateCompany POST /api/v1/companies
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	company, err := h.companySvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleCompanyError(c, err)
		return
	}

	response.Created(c, company)
}

// UpdateCompany PUT /api/v1/companies/:id
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	company, err := h.companySvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleCompanyError(c, err)
		return
	}

	response.OK(c, company)
}

func (h *CompanyHandler) handleCompanyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCompanyNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrCompanyCodeTaken):
		response.Conflict(c, 13002, err.Error())
	case errors.Is(err, service.ErrCompanyNameTaken):
		response.Conflict(c, 13003, err.Error())
	default:
		respondError(c, err, 13000)
	}
}
