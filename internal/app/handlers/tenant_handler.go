package handlers

import (
	"github.com/docuflow/docuflow/internal/domain/dto"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantHandler serves company onboarding, plan management and the
// dashboard.
type TenantHandler struct {
	*BaseHandler
	tenantService *services.TenantService
	usageService  *services.UsageService
}

func NewTenantHandler(tenantService *services.TenantService, usageService *services.UsageService) *TenantHandler {
	return &TenantHandler{
		BaseHandler:   NewBaseHandler(),
		tenantService: tenantService,
		usageService:  usageService,
	}
}

// Signup registers a company and its first Owner account
// POST /api/v1/signup
func (h *TenantHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid signup request", err.Error())
		return
	}

	params := services.SignupParams{
		CompanyName:   req.CompanyName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		OwnerName:     req.OwnerName,
		OwnerEmail:    req.OwnerEmail,
		OwnerPassword: req.OwnerPassword,
	}
	if req.PlanID != "" {
		planID, ok := h.ValidateUUID(c, "plan_id", req.PlanID)
		if !ok {
			return
		}
		params.PlanID = &planID
	}

	company, owner, err := h.tenantService.Signup(c.Request.Context(), params)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, gin.H{"company": company, "owner": owner})
}

// GetCompany returns the actor's company profile
// GET /api/v1/company
func (h *TenantHandler) GetCompany(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	company, err := h.tenantService.GetCompany(c.Request.Context(), actor.CompanyID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, company)
}

// Dashboard returns aggregated tenant activity
// GET /api/v1/dashboard
func (h *TenantHandler) Dashboard(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	stats, err := h.usageService.DashboardStats(c.Request.Context(), actor.CompanyID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, stats)
}

// CreatePlan registers a platform plan
// POST /api/v1/plans
func (h *TenantHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid plan request", err.Error())
		return
	}

	plan := &models.Plan{
		ID:            uuid.New(),
		Title:         req.Title,
		PlanRates:     planRatesFromRequest(req.PlanRatesRequest),
		AllowSharing:  true,
		AllowDisputes: true,
	}
	if req.AllowSharing != nil {
		plan.AllowSharing = *req.AllowSharing
	}
	if req.AllowDisputes != nil {
		plan.AllowDisputes = *req.AllowDisputes
	}

	if err := h.tenantService.CreatePlan(c.Request.Context(), plan); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondCreated(c, plan)
}

// ListPlans returns every platform plan
// GET /api/v1/plans
func (h *TenantHandler) ListPlans(c *gin.Context) {
	plans, err := h.tenantService.ListPlans(c.Request.Context())
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, plans)
}

// DeletePlan removes a plan unless companies still reference it
// DELETE /api/v1/plans/:id
func (h *TenantHandler) DeletePlan(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.tenantService.DeletePlan(c.Request.Context(), id); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, gin.H{"deleted": id})
}

// CreateClientPlan registers a client plan for the actor's tenant
// POST /api/v1/client-plans
func (h *TenantHandler) CreateClientPlan(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.CreateClientPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid client plan request", err.Error())
		return
	}

	plan := &models.ClientPlan{
		ID:        uuid.New(),
		CompanyID: actor.CompanyID,
		Title:     req.Title,
		PlanRates: planRatesFromRequest(req.PlanRatesRequest),
	}
	if err := h.tenantService.CreateClientPlan(c.Request.Context(), plan); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondCreated(c, plan)
}

// ListClientPlans returns the tenant's client plans
// GET /api/v1/client-plans
func (h *TenantHandler) ListClientPlans(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	plans, err := h.tenantService.ListClientPlans(c.Request.Context(), actor.CompanyID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, plans)
}

// DeleteClientPlan removes a client plan unless clients still reference it
// DELETE /api/v1/client-plans/:id
func (h *TenantHandler) DeleteClientPlan(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.tenantService.DeleteClientPlan(c.Request.Context(), id); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, gin.H{"deleted": id})
}

func planRatesFromRequest(req dto.PlanRatesRequest) models.PlanRates {
	return models.PlanRates{
		MonthlyPrice:             req.MonthlyPrice,
		UploadPricePerTen:        req.UploadPricePerTen,
		DownloadPricePerThousand: req.DownloadPricePerThousand,
		SharePricePerThousand:    req.SharePricePerThousand,
		UploadCount:              req.UploadCount,
		DownloadCount:            req.DownloadCount,
		ShareCount:               req.ShareCount,
		BillingDuration:          req.BillingDuration,
	}
}
