package handlers

import (
	"github.com/docuflow/docuflow/internal/domain/dto"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/gin-gonic/gin"
)

// ShareHandler serves password-protected document sharing
type ShareHandler struct {
	*BaseHandler
	sharingService *services.SharingService
}

func NewShareHandler(sharingService *services.SharingService) *ShareHandler {
	return &ShareHandler{
		BaseHandler:    NewBaseHandler(),
		sharingService: sharingService,
	}
}

// CreateLink mints a password-protected share link for a document
// POST /api/v1/shares
func (h *ShareHandler) CreateLink(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid share request", err.Error())
		return
	}
	documentID, ok := h.ValidateUUID(c, "document_id", req.DocumentID)
	if !ok {
		return
	}

	link, err := h.sharingService.CreateLink(c.Request.Context(), *actor, documentID, req.Password)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondCreated(c, link)
}

// ListLinks returns the tenant's share links visible to the actor
// GET /api/v1/shares
func (h *ShareHandler) ListLinks(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	links, err := h.sharingService.ListLinks(c.Request.Context(), *actor)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, links)
}

// RevokeLink disables a share link
// DELETE /api/v1/shares/:id
func (h *ShareHandler) RevokeLink(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.sharingService.RevokeLink(c.Request.Context(), *actor, id); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, gin.H{"revoked": id})
}

// Access resolves a share token to its document. No session is required,
// the link password is the only credential.
// POST /api/v1/shared/:token
func (h *ShareHandler) Access(c *gin.Context) {
	var req dto.AccessShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid access request", err.Error())
		return
	}

	document, err := h.sharingService.Access(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, document)
}
