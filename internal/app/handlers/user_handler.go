package handlers

import (
	"github.com/docuflow/docuflow/internal/domain/dto"
	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// UserHandler serves employee and client management
type UserHandler struct {
	*BaseHandler
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(),
		userService: userService,
	}
}

// CreateUser provisions an employee account
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid user request", err.Error())
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), *actor, services.CreateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondCreated(c, user)
}

// ListUsers pages through the tenant's employees
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	page, pageSize := h.ParsePagination(c)
	users, total, err := h.userService.ListUsers(c.Request.Context(), *actor, repositories.ListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, dto.ListResponse{Items: users, Total: total, Page: page})
}

// GetUser returns one employee
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, user)
}

// UpdateUser persists profile and role changes
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid user request", err.Error())
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = models.Role(req.Role)
	}
	if req.Status != "" {
		user.Status = models.AccountStatus(req.Status)
	}

	if err := h.userService.UpdateUser(c.Request.Context(), *actor, user); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, user)
}

// DeactivateUser retires an employee account
// DELETE /api/v1/users/:id
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.userService.DeactivateUser(c.Request.Context(), *actor, id); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, gin.H{"deactivated": id})
}

// CreateClient provisions a client account
// POST /api/v1/clients
func (h *UserHandler) CreateClient(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid client request", err.Error())
		return
	}

	params := services.CreateClientParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.PlanID != "" {
		planID, ok := h.ValidateUUID(c, "plan_id", req.PlanID)
		if !ok {
			return
		}
		params.PlanID = &planID
	}

	client, err := h.userService.CreateClient(c.Request.Context(), *actor, params)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondCreated(c, client)
}

// ListClients pages through the tenant's clients
// GET /api/v1/clients
func (h *UserHandler) ListClients(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	page, pageSize := h.ParsePagination(c)
	clients, total, err := h.userService.ListClients(c.Request.Context(), *actor, repositories.ListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, dto.ListResponse{Items: clients, Total: total, Page: page})
}

// GetClient returns one client
// GET /api/v1/clients/:id
func (h *UserHandler) GetClient(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	client, err := h.userService.GetClient(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, client)
}

// UpdateClient persists profile and plan changes
// PUT /api/v1/clients/:id
func (h *UserHandler) UpdateClient(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid client request", err.Error())
		return
	}

	client, err := h.userService.GetClient(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	if req.Name != "" {
		client.Name = req.Name
	}
	if req.Email != "" {
		client.Email = req.Email
	}
	if req.Status != "" {
		client.Status = models.AccountStatus(req.Status)
	}
	if req.PlanID != "" {
		planID, ok := h.ValidateUUID(c, "plan_id", req.PlanID)
		if !ok {
			return
		}
		client.PlanID = &planID
	}

	if err := h.userService.UpdateClient(c.Request.Context(), *actor, client); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, client)
}

// DeactivateClient retires a client account
// DELETE /api/v1/clients/:id
func (h *UserHandler) DeactivateClient(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.userService.DeactivateClient(c.Request.Context(), *actor, id); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, gin.H{"deactivated": id})
}
