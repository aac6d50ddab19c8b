package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrMustBeSubmittedFirst = errors.New("invoice must be submitted first")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrClientNotFound       = errors.New("client not found")
)

// invoiceDueDays is how long a payer has before reminders start.
const invoiceDueDays = 15

// InvoiceService computes periodic invoices from usage counters and plan
// rates, and drives the two-stage submit/approve workflow across the
// three invoice kinds.
type InvoiceService struct {
	invoiceRepo    repositories.InvoiceRepository
	companyRepo    repositories.CompanyRepository
	clientRepo     repositories.ClientRepository
	planRepo       repositories.PlanRepository
	clientPlanRepo repositories.ClientPlanRepository

	usageService *UsageService
	email        EmailSender
	cache        CacheService
	logger       *slog.Logger
}

func NewInvoiceService(
	invoiceRepo repositories.InvoiceRepository,
	companyRepo repositories.CompanyRepository,
	clientRepo repositories.ClientRepository,
	planRepo repositories.PlanRepository,
	clientPlanRepo repositories.ClientPlanRepository,
	usageService *UsageService,
	email EmailSender,
	cache CacheService,
	logger *slog.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		companyRepo:    companyRepo,
		clientRepo:     clientRepo,
		planRepo:       planRepo,
		clientPlanRepo: clientPlanRepo,
		usageService:   usageService,
		email:          email,
		cache:          cache,
		logger:         logger,
	}
}

// GenerationResult summarizes one generation pass.
type GenerationResult struct {
	Period    string `json:"period"`
	Generated int    `json:"generated"`
	Skipped   int    `json:"skipped"`
}

// GenerateCompanyInvoices bills every active company that is due for the
// current period. The run is idempotent: a best-effort redis lock keeps
// concurrent passes from doing duplicate work, and the unique
// (company, period) constraint catches whatever slips through.
func (s *InvoiceService) GenerateCompanyInvoices(ctx context.Context, now time.Time) (*GenerationResult, error) {
	period := PeriodLabel(now)
	result := &GenerationResult{Period: period}

	lockKey := fmt.Sprintf(InvoiceRunLockKeyPattern, "companies", period)
	if acquired, err := s.cache.SetNX(ctx, lockKey, now.Unix(), InvoiceRunLockTTL); err == nil && acquired {
		defer func() {
			if err := s.cache.Delete(ctx, lockKey); err != nil {
				s.logger.Debug("invoice run lock release failed", "key", lockKey, "error", err)
			}
		}()
	}

	companies, err := s.companyRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active companies: %w", err)
	}

	for _, company := range companies {
		if company.PlanID == nil {
			result.Skipped++
			continue
		}

		exists, err := s.invoiceRepo.ExistsForPeriod(ctx, company.ID, period)
		if err != nil {
			return nil, fmt.Errorf("failed to check period for company %s: %w", company.ID, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		plan, err := s.planRepo.GetByID(ctx, *company.PlanID)
		if err != nil {
			s.logger.Warn("company references missing plan",
				"company_id", company.ID, "plan_id", *company.PlanID)
			result.Skipped++
			continue
		}

		anchor := company.CreatedAt
		if company.LastInvoicePaid != nil {
			anchor = *company.LastInvoicePaid
		}
		if !billingDue(now, anchor, plan.BillingDuration) {
			result.Skipped++
			continue
		}

		invoice := &models.Invoice{
			ID:          uuid.New(),
			CompanyID:   company.ID,
			PeriodLabel: period,
			InvoiceBreakdown: ComputeBreakdown(UsageCounters{
				Shared:     company.DocumentsShared,
				Downloaded: company.DocumentsDownloaded,
				Uploaded:   company.DocumentsUploaded,
			}, plan.PlanRates),
			OtherInvoices: models.LineItemList{},
			DueDate:       now.AddDate(0, 0, invoiceDueDays),
		}

		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to create invoice for company %s: %w", company.ID, err)
		}
		result.Generated++
	}

	return result, nil
}

// GenerateClientInvoices mirrors the company pass for one tenant's
// clients, priced by each client's own plan and counters.
func (s *InvoiceService) GenerateClientInvoices(ctx context.Context, companyID uuid.UUID, now time.Time) (*GenerationResult, error) {
	period := PeriodLabel(now)
	result := &GenerationResult{Period: period}

	lockKey := fmt.Sprintf(InvoiceRunLockKeyPattern, companyID.String(), period)
	if acquired, err := s.cache.SetNX(ctx, lockKey, now.Unix(), InvoiceRunLockTTL); err == nil && acquired {
		defer func() {
			if err := s.cache.Delete(ctx, lockKey); err != nil {
				s.logger.Debug("invoice run lock release failed", "key", lockKey, "error", err)
			}
		}()
	}

	clients, _, err := s.clientRepo.ListByCompany(ctx, companyID, repositories.ListParams{Page: 1, PageSize: 10000})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	for _, client := range clients {
		if client.PlanID == nil || client.Status != models.StatusActive {
			result.Skipped++
			continue
		}

		exists, err := s.invoiceRepo.ClientInvoiceExistsForPeriod(ctx, companyID, client.Email, period)
		if err != nil {
			return nil, fmt.Errorf("failed to check period for client %s: %w", client.ID, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		plan, err := s.clientPlanRepo.GetByID(ctx, *client.PlanID)
		if err != nil {
			s.logger.Warn("client references missing plan",
				"client_id", client.ID, "plan_id", *client.PlanID)
			result.Skipped++
			continue
		}

		anchor := client.CreatedAt
		if client.LastInvoicePaid != nil {
			anchor = *client.LastInvoicePaid
		}
		if !billingDue(now, anchor, plan.BillingDuration) {
			result.Skipped++
			continue
		}

		invoice := &models.ClientInvoice{
			ID:          uuid.New(),
			CompanyID:   companyID,
			ClientID:    client.ID,
			ClientEmail: client.Email,
			PeriodLabel: period,
			InvoiceBreakdown: ComputeBreakdown(UsageCounters{
				Shared:     client.DocumentsShared,
				Downloaded: client.DocumentsDownloaded,
				Uploaded:   client.DocumentsUploaded,
			}, plan.PlanRates),
			OtherInvoices: models.LineItemList{},
			DueDate:       now.AddDate(0, 0, invoiceDueDays),
		}

		if err := s.invoiceRepo.CreateClientInvoice(ctx, invoice); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to create invoice for client %s: %w", client.ID, err)
		}
		result.Generated++
	}

	return result, nil
}

// findScoped resolves an invoice the actor is allowed to touch. Admins
// act platform-wide; everyone else stays inside their own tenant, and a
// client only reaches invoices addressed to them.
func (s *InvoiceService) findScoped(ctx context.Context, actor Actor, invoiceID uuid.UUID) (*repositories.InvoiceRecord, error) {
	record, err := s.invoiceRepo.FindAnyByID(ctx, invoiceID)
	if err != nil {
		return nil, ErrInvoiceNotFound
	}

	var companyID uuid.UUID
	switch record.Kind {
	case repositories.KindCompanyInvoice:
		companyID = record.Company.CompanyID
	case repositories.KindClientInvoice:
		companyID = record.Client.CompanyID
	case repositories.KindCustomInvoice:
		companyID = record.Custom.CompanyID
	}
	if !actor.Role.Is(models.RoleAdmin) && companyID != actor.CompanyID {
		return nil, ErrInvoiceNotFound
	}

	if actor.Role.Is(models.RoleClient) {
		switch record.Kind {
		case repositories.KindCompanyInvoice:
			return nil, ErrInvoiceNotFound
		case repositories.KindClientInvoice:
			if record.Client.ClientID != actor.ID {
				return nil, ErrInvoiceNotFound
			}
		case repositories.KindCustomInvoice:
			if record.Custom.ClientID == nil || *record.Custom.ClientID != actor.ID {
				return nil, ErrInvoiceNotFound
			}
		}
	}

	return record, nil
}

// ApplyOtherInvoices replaces an invoice's adjustment line items and
// recomputes the total: value - sum(old) + sum(new), rounded. The
// read-modify-write is last-write-wins; concurrent edits to the same
// invoice are not merged.
func (s *InvoiceService) ApplyOtherInvoices(ctx context.Context, actor Actor, invoiceID uuid.UUID, items models.LineItemList) (*repositories.InvoiceRecord, error) {
	record, err := s.findScoped(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}

	adjust := func(value decimal.Decimal, old models.LineItemList) decimal.Decimal {
		return round4(value.Sub(old.Total()).Add(items.Total()))
	}

	switch record.Kind {
	case repositories.KindCompanyInvoice:
		record.Company.Value = adjust(record.Company.Value, record.Company.OtherInvoices)
		record.Company.OtherInvoices = items
		err = s.invoiceRepo.Update(ctx, record.Company)
	case repositories.KindClientInvoice:
		record.Client.Value = adjust(record.Client.Value, record.Client.OtherInvoices)
		record.Client.OtherInvoices = items
		err = s.invoiceRepo.UpdateClientInvoice(ctx, record.Client)
	case repositories.KindCustomInvoice:
		record.Custom.Value = adjust(record.Custom.Value, record.Custom.OtherInvoices)
		record.Custom.OtherInvoices = items
		err = s.invoiceRepo.UpdateCustomInvoice(ctx, record.Custom)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply adjustments: %w", err)
	}
	return record, nil
}

// Submit drives the two-stage settlement. The payer submits first, which
// also resets the usage counters that fed the invoice; the approver may
// only confirm an already submitted invoice.
func (s *InvoiceService) Submit(ctx context.Context, actor Actor, invoiceID uuid.UUID) (*repositories.InvoiceRecord, error) {
	record, err := s.findScoped(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	switch record.Kind {
	case repositories.KindCompanyInvoice:
		invoice := record.Company
		if actor.Role.Is(models.RoleAdmin) {
			if !invoice.InvoiceSubmitted {
				return nil, ErrMustBeSubmittedFirst
			}
			invoice.InvoiceSubmittedAdmin = true
		} else {
			invoice.InvoiceSubmitted = true
		}
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return nil, fmt.Errorf("failed to submit invoice: %w", err)
		}
		if !actor.Role.Is(models.RoleAdmin) {
			if err := s.usageService.ResetCompanyUsage(ctx, invoice.CompanyID, now); err != nil {
				s.logger.Warn("usage reset failed after submit",
					"company_id", invoice.CompanyID, "error", err)
			}
		}

	case repositories.KindClientInvoice:
		invoice := record.Client
		if actor.Role.Is(models.RoleClient) {
			invoice.InvoiceSubmitted = true
		} else if actor.Role.IsAny(models.RoleOwner, models.RoleManager) {
			if !invoice.InvoiceSubmitted {
				return nil, ErrMustBeSubmittedFirst
			}
			invoice.InvoiceSubmittedAdmin = true
		} else {
			return nil, ErrRoleNotPermitted
		}
		if err := s.invoiceRepo.UpdateClientInvoice(ctx, invoice); err != nil {
			return nil, fmt.Errorf("failed to submit client invoice: %w", err)
		}
		if actor.Role.Is(models.RoleClient) {
			if err := s.usageService.ResetClientUsage(ctx, invoice.ClientID, now); err != nil {
				s.logger.Warn("usage reset failed after submit",
					"client_id", invoice.ClientID, "error", err)
			}
		}

	case repositories.KindCustomInvoice:
		invoice := record.Custom
		payerSubmitting := (invoice.IsClient && actor.Role.Is(models.RoleClient)) ||
			(!invoice.IsClient && !actor.Role.Is(models.RoleAdmin))
		if payerSubmitting {
			invoice.InvoiceSubmitted = true
		} else {
			if !invoice.InvoiceSubmitted {
				return nil, ErrMustBeSubmittedFirst
			}
			invoice.InvoiceSubmittedAdmin = true
		}
		if err := s.invoiceRepo.UpdateCustomInvoice(ctx, invoice); err != nil {
			return nil, fmt.Errorf("failed to submit custom invoice: %w", err)
		}
	}

	return record, nil
}

// CreateCustomInvoiceParams contains parameters for a manual invoice.
type CreateCustomInvoiceParams struct {
	CompanyID   uuid.UUID       `json:"company_id"`
	ClientID    *uuid.UUID      `json:"client_id,omitempty"`
	IsClient    bool            `json:"is_client"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
}

// CreateCustomInvoice records a manually composed invoice outside the
// periodic generator.
func (s *InvoiceService) CreateCustomInvoice(ctx context.Context, params CreateCustomInvoiceParams) (*models.CustomInvoice, error) {
	if _, err := s.companyRepo.GetByID(ctx, params.CompanyID); err != nil {
		return nil, ErrCompanyNotFound
	}
	if params.IsClient {
		if params.ClientID == nil {
			return nil, ErrClientNotFound
		}
		if _, err := s.clientRepo.GetByID(ctx, *params.ClientID); err != nil {
			return nil, ErrClientNotFound
		}
	}

	now := time.Now().UTC()
	invoice := &models.CustomInvoice{
		ID:            uuid.New(),
		CompanyID:     params.CompanyID,
		ClientID:      params.ClientID,
		IsClient:      params.IsClient,
		Description:   params.Description,
		PeriodLabel:   PeriodLabel(now),
		Value:         round4(params.Value),
		OtherInvoices: models.LineItemList{},
		DueDate:       now.AddDate(0, 0, invoiceDueDays),
	}
	if err := s.invoiceRepo.CreateCustomInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create custom invoice: %w", err)
	}
	return invoice, nil
}

// ReminderFailure is one undeliverable reminder; failures are collected
// per recipient and never abort the run.
type ReminderFailure struct {
	Recipient string `json:"recipient"`
	InvoiceID string `json:"invoice_id"`
	Reason    string `json:"reason"`
}

// RemindUnpaid emails every payer that has not submitted the current
// period's invoice. Returns how many reminders were sent, plus the
// individual failures.
func (s *InvoiceService) RemindUnpaid(ctx context.Context, now time.Time) (int, []ReminderFailure, error) {
	period := PeriodLabel(now)
	sent := 0
	var failures []ReminderFailure

	invoices, err := s.invoiceRepo.ListUnpaidForPeriod(ctx, period)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list unpaid invoices: %w", err)
	}
	for _, invoice := range invoices {
		company, err := s.companyRepo.GetByID(ctx, invoice.CompanyID)
		if err != nil {
			failures = append(failures, ReminderFailure{
				InvoiceID: invoice.ID.String(), Reason: "company lookup failed",
			})
			continue
		}
		if err := s.sendReminder(ctx, company.ContactEmail, company.Name, invoice.PeriodLabel, invoice.Value, invoice.DueDate); err != nil {
			failures = append(failures, ReminderFailure{
				Recipient: company.ContactEmail, InvoiceID: invoice.ID.String(), Reason: err.Error(),
			})
			continue
		}
		sent++
	}

	clientInvoices, err := s.invoiceRepo.ListUnpaidClientInvoicesForPeriod(ctx, period)
	if err != nil {
		return sent, failures, fmt.Errorf("failed to list unpaid client invoices: %w", err)
	}
	for _, invoice := range clientInvoices {
		client, err := s.clientRepo.GetByID(ctx, invoice.ClientID)
		if err != nil {
			failures = append(failures, ReminderFailure{
				Recipient: invoice.ClientEmail, InvoiceID: invoice.ID.String(), Reason: "client lookup failed",
			})
			continue
		}
		if err := s.sendReminder(ctx, invoice.ClientEmail, client.Name, invoice.PeriodLabel, invoice.Value, invoice.DueDate); err != nil {
			failures = append(failures, ReminderFailure{
				Recipient: invoice.ClientEmail, InvoiceID: invoice.ID.String(), Reason: err.Error(),
			})
			continue
		}
		sent++
	}

	// Manual invoices carry the same submit flag and period, so they get
	// the same reminders. The payer side decides the recipient.
	customInvoices, err := s.invoiceRepo.ListUnpaidCustomInvoicesForPeriod(ctx, period)
	if err != nil {
		return sent, failures, fmt.Errorf("failed to list unpaid custom invoices: %w", err)
	}
	for _, invoice := range customInvoices {
		to, name, err := s.customRecipient(ctx, &invoice)
		if err != nil {
			failures = append(failures, ReminderFailure{
				InvoiceID: invoice.ID.String(), Reason: err.Error(),
			})
			continue
		}
		if err := s.sendReminder(ctx, to, name, invoice.PeriodLabel, invoice.Value, invoice.DueDate); err != nil {
			failures = append(failures, ReminderFailure{
				Recipient: to, InvoiceID: invoice.ID.String(), Reason: err.Error(),
			})
			continue
		}
		sent++
	}

	return sent, failures, nil
}

func (s *InvoiceService) customRecipient(ctx context.Context, invoice *models.CustomInvoice) (string, string, error) {
	if invoice.IsClient && invoice.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *invoice.ClientID)
		if err != nil {
			return "", "", errors.New("client lookup failed")
		}
		return client.Email, client.Name, nil
	}
	company, err := s.companyRepo.GetByID(ctx, invoice.CompanyID)
	if err != nil {
		return "", "", errors.New("company lookup failed")
	}
	return company.ContactEmail, company.Name, nil
}

func (s *InvoiceService) sendReminder(ctx context.Context, to, name, period string, value decimal.Decimal, due time.Time) error {
	return s.email.Send(ctx, EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Invoice reminder for %s", period),
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour invoice for %s of %s is still unpaid. Payment is due by %s.\n",
			name, period, value.StringFixed(2), due.Format("January 2, 2006")),
	})
}

// ListCompanyInvoices returns the tenant-level invoices for a company.
func (s *InvoiceService) ListCompanyInvoices(ctx context.Context, companyID uuid.UUID) ([]models.Invoice, error) {
	return s.invoiceRepo.ListByCompany(ctx, companyID)
}

// ListClientInvoices returns the client-level invoices for a company.
func (s *InvoiceService) ListClientInvoices(ctx context.Context, companyID uuid.UUID) ([]models.ClientInvoice, error) {
	return s.invoiceRepo.ListClientInvoices(ctx, companyID)
}

// ListCustomInvoices returns the manual invoices for a company.
func (s *InvoiceService) ListCustomInvoices(ctx context.Context, companyID uuid.UUID) ([]models.CustomInvoice, error) {
	return s.invoiceRepo.ListCustomInvoices(ctx, companyID)
}
