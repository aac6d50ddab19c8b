package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) repositories.CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("company with email '%s': %w", company.ContactEmail, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).Preload("Plan").Where("id = ?", id).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("company not found")
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

func (r *CompanyRepository) GetByEmail(ctx context.Context, email string) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).Where("contact_email = ?", email).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("company not found")
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	result := r.db.WithContext(ctx).Save(company)
	if result.Error != nil {
		return fmt.Errorf("failed to update company: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("company not found")
	}
	return nil
}

func (r *CompanyRepository) List(ctx context.Context, params repositories.ListParams) ([]models.Company, int64, error) {
	var companies []models.Company
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Company{})
	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR contact_email LIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(params.PageSize).Find(&companies).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, total, nil
}

func (r *CompanyRepository) ListActive(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("status = ?", models.StatusActive).
		Order("created_at").Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active companies: %w", err)
	}
	return companies, nil
}

func (r *CompanyRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.WithContext(ctx).Where("plan_id = ?", planID).Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list companies by plan: %w", err)
	}
	return companies, nil
}

// IncrementUsage bumps the usage counters atomically at the database level;
// handlers must never read-then-write these fields.
func (r *CompanyRepository) IncrementUsage(ctx context.Context, id uuid.UUID, shared, downloaded, uploaded int64) error {
	result := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"documents_shared":     gorm.Expr("documents_shared + ?", shared),
			"documents_downloaded": gorm.Expr("documents_downloaded + ?", downloaded),
			"documents_uploaded":   gorm.Expr("documents_uploaded + ?", uploaded),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update company usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("company not found")
	}
	return nil
}

func (r *CompanyRepository) ResetUsage(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"documents_shared":     0,
			"documents_downloaded": 0,
			"documents_uploaded":   0,
			"last_invoice_paid":    paidAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to reset company usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("company not found")
	}
	return nil
}

func (r *CompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Company{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete company: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("company not found")
	}
	return nil
}

// isDuplicateKeyError detects uniqueness violations across postgres and
// sqlite error strings.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return containsString(msg, "duplicate key") ||
		containsString(msg, "unique constraint") ||
		containsString(msg, "UNIQUE constraint failed")
}

func containsString(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
