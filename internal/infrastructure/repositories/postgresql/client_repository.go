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

type ClientRepository struct {
	db *database.DB
}

func NewClientRepository(db *database.DB) repositories.ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Preload("Plan").Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client not found")
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client not found")
		}
		return nil, fmt.Errorf("failed to get client by email: %w", err)
	}
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	result := r.db.WithContext(ctx).Save(client)
	if result.Error != nil {
		return fmt.Errorf("failed to update client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client not found")
	}
	return nil
}

func (r *ClientRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, params repositories.ListParams) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Client{}).Where("company_id = ?", companyID)
	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	if err := query.Preload("Plan").Order("created_at DESC").Offset(offset).Limit(params.PageSize).Find(&clients).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

func (r *ClientRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.WithContext(ctx).Where("plan_id = ?", planID).Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clients by plan: %w", err)
	}
	return clients, nil
}

func (r *ClientRepository) IncrementUsage(ctx context.Context, id uuid.UUID, shared, downloaded, uploaded int64) error {
	result := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"documents_shared":     gorm.Expr("documents_shared + ?", shared),
			"documents_downloaded": gorm.Expr("documents_downloaded + ?", downloaded),
			"documents_uploaded":   gorm.Expr("documents_uploaded + ?", uploaded),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update client usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client not found")
	}
	return nil
}

func (r *ClientRepository) ResetUsage(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"documents_shared":     0,
			"documents_downloaded": 0,
			"documents_uploaded":   0,
			"last_invoice_paid":    paidAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to reset client usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client not found")
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client not found")
	}
	return nil
}
