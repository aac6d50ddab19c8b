package handlers

import (
	"github.com/docuflow/docuflow/internal/domain/dto"
	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/gin-gonic/gin"
)

// DisputeHandler serves document dispute endpoints
type DisputeHandler struct {
	*BaseHandler
	disputeService *services.DisputeService
}

func NewDisputeHandler(disputeService *services.DisputeService) *DisputeHandler {
	return &DisputeHandler{
		BaseHandler:    NewBaseHandler(),
		disputeService: disputeService,
	}
}

// Raise opens a dispute against a document
// POST /api/v1/disputes
func (h *DisputeHandler) Raise(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.RaiseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid dispute request", err.Error())
		return
	}
	documentID, ok := h.ValidateUUID(c, "document_id", req.DocumentID)
	if !ok {
		return
	}

	dispute, err := h.disputeService.Raise(c.Request.Context(), *actor, documentID, req.Description)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondCreated(c, dispute)
}

// Resolve closes a dispute
// PUT /api/v1/disputes/:id/resolve
func (h *DisputeHandler) Resolve(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	dispute, err := h.disputeService.Resolve(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, dispute)
}

// List pages through the tenant's disputes
// GET /api/v1/disputes
func (h *DisputeHandler) List(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	page, pageSize := h.ParsePagination(c)
	disputes, total, err := h.disputeService.List(c.Request.Context(), *actor, repositories.ListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, dto.ListResponse{Items: disputes, Total: total, Page: page})
}
