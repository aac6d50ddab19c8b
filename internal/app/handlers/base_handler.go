package handlers

import (
	"errors"
	"net/http"

	"github.com/docuflow/docuflow/internal/app/middleware"
	"github.com/docuflow/docuflow/internal/domain/dto"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	config *HandlerConfig
}

// NewBaseHandler creates a new base handler
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{
		config: NewHandlerConfig(),
	}
}

// AuthenticateActor extracts the authenticated actor or fails the request
func (b *BaseHandler) AuthenticateActor(c *gin.Context) (*services.Actor, bool) {
	actor := middleware.GetActor(c)
	if actor == nil {
		b.RespondUnauthorized(c, "Authentication required")
		return nil, false
	}
	return actor, true
}

// RespondError sends a standardized error response
func (b *BaseHandler) RespondError(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	response := dto.ErrorResponse{
		Error:   errorCode,
		Message: message,
		Status:  statusCode,
	}

	// Include details based on environment
	if len(details) > 0 && b.config.EnableDebugErrors {
		response.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// RespondUnauthorized sends a standardized unauthorized response
func (b *BaseHandler) RespondUnauthorized(c *gin.Context, message string) {
	b.RespondError(c, http.StatusUnauthorized, "unauthorized", message)
}

// RespondForbidden sends a standardized forbidden response
func (b *BaseHandler) RespondForbidden(c *gin.Context, message string) {
	b.RespondError(c, http.StatusForbidden, "forbidden", message)
}

// RespondBadRequest sends a standardized bad request response
func (b *BaseHandler) RespondBadRequest(c *gin.Context, message string, details ...string) {
	b.RespondError(c, http.StatusBadRequest, "invalid_request", message, details...)
}

// RespondNotFound sends a standardized not found response
func (b *BaseHandler) RespondNotFound(c *gin.Context, message string) {
	b.RespondError(c, http.StatusNotFound, "not_found", message)
}

// RespondConflict sends a standardized conflict response
func (b *BaseHandler) RespondConflict(c *gin.Context, message string) {
	b.RespondError(c, http.StatusConflict, "conflict", message)
}

// RespondInternalError sends a standardized internal server error response
func (b *BaseHandler) RespondInternalError(c *gin.Context, message string, details ...string) {
	b.RespondError(c, http.StatusInternalServerError, "internal_error", message, details...)
}

// RespondSuccess sends a standardized success response
func (b *BaseHandler) RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a standardized created response
func (b *BaseHandler) RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondServiceError maps domain sentinel errors onto the HTTP taxonomy
func (b *BaseHandler) RespondServiceError(c *gin.Context, err error) {
	var planInUse *services.PlanInUseError
	switch {
	case errors.As(err, &planInUse):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "dependency_in_use",
			"message":   planInUse.Error(),
			"companies": planInUse.Companies,
			"clients":   planInUse.Clients,
		})
	case errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrTagNotFound),
		errors.Is(err, services.ErrInvoiceNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrCompanyNotFound),
		errors.Is(err, services.ErrPlanNotFound),
		errors.Is(err, services.ErrDisputeNotFound),
		errors.Is(err, services.ErrShareNotFound):
		b.RespondNotFound(c, err.Error())
	case errors.Is(err, services.ErrRoleNotPermitted),
		errors.Is(err, services.ErrAccountInactive),
		errors.Is(err, services.ErrCompanyInactive),
		errors.Is(err, services.ErrSharingDisabled),
		errors.Is(err, services.ErrSharePasswordWrong):
		b.RespondForbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidSession):
		b.RespondUnauthorized(c, err.Error())
	case errors.Is(err, services.ErrCompanyEmailTaken),
		errors.Is(err, services.ErrCommentConflict):
		b.RespondConflict(c, err.Error())
	case errors.Is(err, services.ErrMustBeSubmittedFirst),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrEmptyComment),
		errors.Is(err, services.ErrDocumentTitleEmpty):
		b.RespondBadRequest(c, err.Error())
	default:
		b.RespondInternalError(c, "Operation failed", err.Error())
	}
}

// ParsePagination extracts and validates pagination parameters
func (b *BaseHandler) ParsePagination(c *gin.Context) (page, pageSize int) {
	page = getIntParam(c, "page", 1)
	pageSize = getIntParam(c, "per_page", b.config.DefaultPageSize)

	if page < 1 {
		page = 1
	}
	pageSize = b.config.ValidatePageSize(pageSize)

	return page, pageSize
}

// ValidateUUID validates UUID parameter and responds with error if invalid
func (b *BaseHandler) ValidateUUID(c *gin.Context, paramName, uuidStr string) (uuid.UUID, bool) {
	id, err := uuid.Parse(uuidStr)
	if err != nil {
		b.RespondBadRequest(c, "Invalid "+paramName+" format")
		return uuid.Nil, false
	}
	return id, true
}
