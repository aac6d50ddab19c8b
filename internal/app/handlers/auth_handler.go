package handlers

import (
	"github.com/docuflow/docuflow/internal/domain/dto"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves login and session introspection
type AuthHandler struct {
	*BaseHandler
	identityService *services.IdentityService
}

func NewAuthHandler(identityService *services.IdentityService) *AuthHandler {
	return &AuthHandler{
		BaseHandler:     NewBaseHandler(),
		identityService: identityService,
	}
}

// Login authenticates an employee or client and issues a session token
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid login request", err.Error())
		return
	}

	result, err := h.identityService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		PersonID:  result.PersonID.String(),
		CompanyID: result.CompanyID.String(),
		Role:      string(result.Role),
		Name:      result.Name,
	})
}

// Me returns the calling actor resolved from the bearer token
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	h.RespondSuccess(c, actor)
}
