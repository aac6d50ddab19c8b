package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceRepository covers the three invoice tables behind one interface so
// the billing service can treat a period run as a single unit of work.
type InvoiceRepository struct {
	db *database.DB
}

func NewInvoiceRepository(db *database.DB) repositories.InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("invoice for company %s period %q: %w",
				invoice.CompanyID, invoice.PeriodLabel, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invoice not found")
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	result := r.db.WithContext(ctx).Save(invoice)
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("invoice not found")
	}
	return nil
}

func (r *InvoiceRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).
		Order("created_at DESC").Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) ExistsForPeriod(ctx context.Context, companyID uuid.UUID, period string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("company_id = ? AND period_label = ?", companyID, period).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check invoice period: %w", err)
	}
	return count > 0, nil
}

func (r *InvoiceRepository) ListUnpaidForPeriod(ctx context.Context, period string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).Where("period_label = ? AND invoice_submitted = ?", period, false).
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid invoices: %w", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) CreateClientInvoice(ctx context.Context, invoice *models.ClientInvoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("client invoice for %q period %q: %w",
				invoice.ClientEmail, invoice.PeriodLabel, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create client invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) GetClientInvoiceByID(ctx context.Context, id uuid.UUID) (*models.ClientInvoice, error) {
	var invoice models.ClientInvoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client invoice not found")
		}
		return nil, fmt.Errorf("failed to get client invoice: %w", err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) UpdateClientInvoice(ctx context.Context, invoice *models.ClientInvoice) error {
	result := r.db.WithContext(ctx).Save(invoice)
	if result.Error != nil {
		return fmt.Errorf("failed to update client invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client invoice not found")
	}
	return nil
}

func (r *InvoiceRepository) ListClientInvoices(ctx context.Context, companyID uuid.UUID) ([]models.ClientInvoice, error) {
	var invoices []models.ClientInvoice
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).
		Order("created_at DESC").Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list client invoices: %w", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) ClientInvoiceExistsForPeriod(ctx context.Context, companyID uuid.UUID, clientEmail, period string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClientInvoice{}).
		Where("company_id = ? AND client_email = ? AND period_label = ?", companyID, clientEmail, period).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check client invoice period: %w", err)
	}
	return count > 0, nil
}

func (r *InvoiceRepository) ListUnpaidClientInvoicesForPeriod(ctx context.Context, period string) ([]models.ClientInvoice, error) {
	var invoices []models.ClientInvoice
	err := r.db.WithContext(ctx).Where("period_label = ? AND invoice_submitted = ?", period, false).
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid client invoices: %w", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) CreateCustomInvoice(ctx context.Context, invoice *models.CustomInvoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return fmt.Errorf("failed to create custom invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) GetCustomInvoiceByID(ctx context.Context, id uuid.UUID) (*models.CustomInvoice, error) {
	var invoice models.CustomInvoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("custom invoice not found")
		}
		return nil, fmt.Errorf("failed to get custom invoice: %w", err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) UpdateCustomInvoice(ctx context.Context, invoice *models.CustomInvoice) error {
	result := r.db.WithContext(ctx).Save(invoice)
	if result.Error != nil {
		return fmt.Errorf("failed to update custom invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("custom invoice not found")
	}
	return nil
}

func (r *InvoiceRepository) ListUnpaidCustomInvoicesForPeriod(ctx context.Context, period string) ([]models.CustomInvoice, error) {
	var invoices []models.CustomInvoice
	err := r.db.WithContext(ctx).Where("period_label = ? AND invoice_submitted = ?", period, false).
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid custom invoices: %w", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) ListCustomInvoices(ctx context.Context, companyID uuid.UUID) ([]models.CustomInvoice, error) {
	var invoices []models.CustomInvoice
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).
		Order("created_at DESC").Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list custom invoices: %w", err)
	}
	return invoices, nil
}

// FindAnyByID checks the company table first, then client, then custom. The
// payment endpoint accepts an id without knowing which ledger issued it.
func (r *InvoiceRepository) FindAnyByID(ctx context.Context, id uuid.UUID) (*repositories.InvoiceRecord, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err == nil {
		return &repositories.InvoiceRecord{Kind: repositories.KindCompanyInvoice, Company: &invoice}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve invoice: %w", err)
	}

	var clientInvoice models.ClientInvoice
	err = r.db.WithContext(ctx).Where("id = ?", id).First(&clientInvoice).Error
	if err == nil {
		return &repositories.InvoiceRecord{Kind: repositories.KindClientInvoice, Client: &clientInvoice}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve invoice: %w", err)
	}

	var customInvoice models.CustomInvoice
	err = r.db.WithContext(ctx).Where("id = ?", id).First(&customInvoice).Error
	if err == nil {
		return &repositories.InvoiceRecord{Kind: repositories.KindCustomInvoice, Custom: &customInvoice}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve invoice: %w", err)
	}
	return nil, fmt.Errorf("invoice not found")
}
