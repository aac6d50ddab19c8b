package handlers

import (
	"github.com/docuflow/docuflow/internal/domain/dto"
	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/gin-gonic/gin"
)

// DocumentHandler serves the document pipeline endpoints
type DocumentHandler struct {
	*BaseHandler
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(),
		documentService: documentService,
	}
}

// CreateDocument registers a new document at the first pipeline stage
// POST /api/v1/documents
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid document request", err.Error())
		return
	}
	tagID, ok := h.ValidateUUID(c, "tag_id", req.TagID)
	if !ok {
		return
	}

	document, err := h.documentService.Create(c.Request.Context(), *actor, services.CreateDocumentParams{
		TagID:  tagID,
		Title:  req.Title,
		URL:    req.URL,
		FileID: req.FileID,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondCreated(c, document)
}

// ListDocuments pages through documents visible to the actor's role
// GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	page, pageSize := h.ParsePagination(c)
	filters := repositories.DocumentFilters{
		TagID:     getUUIDParam(c, "tag_id"),
		Published: getBoolParam(c, "published"),
		Stage:     getStageParam(c, "stage"),
		DateFrom:  getTimeParam(c, "date_from"),
		DateTo:    getTimeParam(c, "date_to"),
	}
	filters.Page = page
	filters.PageSize = pageSize
	filters.Search = c.Query("search")

	views, total, err := h.documentService.List(c.Request.Context(), *actor, filters)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, dto.ListResponse{Items: views, Total: total, Page: page})
}

// GetDocument returns one document enriched with resolved people
// GET /api/v1/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	view, err := h.documentService.Get(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, view)
}

// Assign hands a document to the next role in the pipeline
// POST /api/v1/documents/post-assignee
func (h *DocumentHandler) Assign(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid assignment request", err.Error())
		return
	}
	documentID, ok := h.ValidateUUID(c, "document_id", req.DocumentID)
	if !ok {
		return
	}
	assigneeID, ok := h.ValidateUUID(c, "assignee_id", req.AssigneeID)
	if !ok {
		return
	}

	document, err := h.documentService.Assign(c.Request.Context(), *actor, documentID, assigneeID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, document)
}

// Assignees lists the employees the actor may hand documents to
// GET /api/v1/documents/assignees
func (h *DocumentHandler) Assignees(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	users, err := h.documentService.Assignees(c.Request.Context(), *actor)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, users)
}

// SaveDraft marks a document reviewed without publishing it
// POST /api/v1/documents/save-draft
func (h *DocumentHandler) SaveDraft(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid stage request", err.Error())
		return
	}
	documentID, ok := h.ValidateUUID(c, "document_id", req.DocumentID)
	if !ok {
		return
	}

	document, err := h.documentService.SaveDraft(c.Request.Context(), *actor, documentID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, document)
}

// Publish completes the pipeline for a document
// POST /api/v1/documents/publish
func (h *DocumentHandler) Publish(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid stage request", err.Error())
		return
	}
	documentID, ok := h.ValidateUUID(c, "document_id", req.DocumentID)
	if !ok {
		return
	}

	document, err := h.documentService.Publish(c.Request.Context(), *actor, documentID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, document)
}

// AddComment appends an audit comment to a document
// PUT /api/v1/documents/:id/add-comment
func (h *DocumentHandler) AddComment(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid comment request", err.Error())
		return
	}

	document, err := h.documentService.AddComment(c.Request.Context(), *actor, id, req.Text)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, document)
}

// History lists a document's edit history entries
// GET /api/v1/documents/:id/history
func (h *DocumentHandler) History(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	entries, err := h.documentService.History(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, entries)
}
