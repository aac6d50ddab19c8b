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

type DisputeRepository struct {
	db *database.DB
}

func NewDisputeRepository(db *database.DB) repositories.DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) Create(ctx context.Context, dispute *models.Dispute) error {
	if dispute.ID == uuid.Nil {
		dispute.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(dispute).Error; err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}
	return nil
}

func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dispute).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dispute not found")
		}
		return nil, fmt.Errorf("failed to get dispute: %w", err)
	}
	return &dispute, nil
}

func (r *DisputeRepository) Update(ctx context.Context, dispute *models.Dispute) error {
	result := r.db.WithContext(ctx).Save(dispute)
	if result.Error != nil {
		return fmt.Errorf("failed to update dispute: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("dispute not found")
	}
	return nil
}

func (r *DisputeRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, params repositories.ListParams) ([]models.Dispute, int64, error) {
	var disputes []models.Dispute
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Dispute{}).Where("company_id = ?", companyID)
	if params.Search != "" {
		query = query.Where("description LIKE ?", "%"+params.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count disputes: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&disputes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list disputes: %w", err)
	}
	return disputes, total, nil
}
