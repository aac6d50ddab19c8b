package handlers

import (
	"github.com/docuflow/docuflow/internal/domain/dto"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// TagHandler serves document tag management
type TagHandler struct {
	*BaseHandler
	tagService *services.TagService
}

func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{
		BaseHandler: NewBaseHandler(),
		tagService:  tagService,
	}
}

// CreateTag registers a tag with its property schema
// POST /api/v1/tags
func (h *TagHandler) CreateTag(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid tag request", err.Error())
		return
	}

	schema := make(models.PropertySchema, 0, len(req.Properties))
	for _, field := range req.Properties {
		schema = append(schema, models.PropertyField{
			Key:  field.Key,
			Type: field.Type,
		})
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), *actor, req.Title, schema)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondCreated(c, tag)
}

// ListTags returns every tag of the tenant
// GET /api/v1/tags
func (h *TagHandler) ListTags(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	tags, err := h.tagService.ListTags(c.Request.Context(), *actor)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, tags)
}

// GetTag returns one tag
// GET /api/v1/tags/:id
func (h *TagHandler) GetTag(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	tag, err := h.tagService.GetTag(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, tag)
}

// UpdateTag persists schema changes
// PUT /api/v1/tags/:id
func (h *TagHandler) UpdateTag(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid tag request", err.Error())
		return
	}

	tag, err := h.tagService.GetTag(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	tag.Title = req.Title
	schema := make(models.PropertySchema, 0, len(req.Properties))
	for _, field := range req.Properties {
		schema = append(schema, models.PropertyField{
			Key:  field.Key,
			Type: field.Type,
		})
	}
	tag.Properties = schema

	if err := h.tagService.UpdateTag(c.Request.Context(), *actor, tag); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, tag)
}

// DeleteTag removes a tag
// DELETE /api/v1/tags/:id
func (h *TagHandler) DeleteTag(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(c.Request.Context(), *actor, id); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, gin.H{"deleted": id})
}
