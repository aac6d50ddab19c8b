package handlers

import (
	"time"

	"github.com/docuflow/docuflow/internal/domain/dto"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler serves invoice generation, adjustment and submission
type InvoiceHandler struct {
	*BaseHandler
	invoiceService *services.InvoiceService
}

func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler:    NewBaseHandler(),
		invoiceService: invoiceService,
	}
}

// GenerateCompanyInvoices runs the company billing cycle for the current
// period
// POST /api/v1/invoices/generate
func (h *InvoiceHandler) GenerateCompanyInvoices(c *gin.Context) {
	if _, ok := h.AuthenticateActor(c); !ok {
		return
	}

	result, err := h.invoiceService.GenerateCompanyInvoices(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, result)
}

// GenerateClientInvoices runs the client billing cycle for the actor's
// tenant
// POST /api/v1/invoices/generate-clients
func (h *InvoiceHandler) GenerateClientInvoices(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	result, err := h.invoiceService.GenerateClientInvoices(c.Request.Context(), actor.CompanyID, time.Now().UTC())
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, result)
}

// ApplyOtherInvoices replaces an invoice's manual line items and
// recomputes its total
// PUT /api/v1/invoices/:id/other-invoices
func (h *InvoiceHandler) ApplyOtherInvoices(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req dto.OtherInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid line items request", err.Error())
		return
	}

	items := make(models.LineItemList, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.LineItem{
			Description: item.Description,
			Amount:      item.Amount,
		})
	}

	record, err := h.invoiceService.ApplyOtherInvoices(c.Request.Context(), *actor, id, items)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, record)
}

// Submit advances an invoice through its submission handshake
// PUT /api/v1/invoices/:id/submit
func (h *InvoiceHandler) Submit(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}
	id, ok := h.ValidateUUID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	record, err := h.invoiceService.Submit(c.Request.Context(), *actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, record)
}

// Remind emails every payer that has not submitted the current period's
// invoice
// POST /api/v1/invoices/remind
func (h *InvoiceHandler) Remind(c *gin.Context) {
	if _, ok := h.AuthenticateActor(c); !ok {
		return
	}

	sent, failures, err := h.invoiceService.RemindUnpaid(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, gin.H{"sent": sent, "failures": failures})
}

// CreateCustomInvoice records a manually composed invoice
// POST /api/v1/invoices/custom
func (h *InvoiceHandler) CreateCustomInvoice(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	var req dto.CreateCustomInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid invoice request", err.Error())
		return
	}

	params := services.CreateCustomInvoiceParams{
		CompanyID:   actor.CompanyID,
		IsClient:    req.IsClient,
		Description: req.Description,
		Value:       req.Value,
	}
	if req.ClientID != "" {
		clientID, ok := h.ValidateUUID(c, "client_id", req.ClientID)
		if !ok {
			return
		}
		params.ClientID = &clientID
	}

	invoice, err := h.invoiceService.CreateCustomInvoice(c.Request.Context(), params)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondCreated(c, invoice)
}

// ListCompanyInvoices returns the tenant's subscription invoices
// GET /api/v1/invoices
func (h *InvoiceHandler) ListCompanyInvoices(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListCompanyInvoices(c.Request.Context(), actor.CompanyID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, invoices)
}

// ListClientInvoices returns the tenant's client-level invoices
// GET /api/v1/invoices/clients
func (h *InvoiceHandler) ListClientInvoices(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListClientInvoices(c.Request.Context(), actor.CompanyID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, invoices)
}

// ListCustomInvoices returns the tenant's manual invoices
// GET /api/v1/invoices/custom
func (h *InvoiceHandler) ListCustomInvoices(c *gin.Context) {
	actor, ok := h.AuthenticateActor(c)
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListCustomInvoices(c.Request.Context(), actor.CompanyID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondSuccess(c, invoices)
}
