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

type ClientPlanRepository struct {
	db *database.DB
}

func NewClientPlanRepository(db *database.DB) repositories.ClientPlanRepository {
	return &ClientPlanRepository{db: db}
}

func (r *ClientPlanRepository) Create(ctx context.Context, plan *models.ClientPlan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("failed to create client plan: %w", err)
	}
	return nil
}

func (r *ClientPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ClientPlan, error) {
	var plan models.ClientPlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client plan not found")
		}
		return nil, fmt.Errorf("failed to get client plan: %w", err)
	}
	return &plan, nil
}

func (r *ClientPlanRepository) Update(ctx context.Context, plan *models.ClientPlan) error {
	result := r.db.WithContext(ctx).Save(plan)
	if result.Error != nil {
		return fmt.Errorf("failed to update client plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client plan not found")
	}
	return nil
}

func (r *ClientPlanRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.ClientPlan, error) {
	var plans []models.ClientPlan
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at ASC").Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list client plans: %w", err)
	}
	return plans, nil
}

func (r *ClientPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ClientPlan{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete client plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client plan not found")
	}
	return nil
}
