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

type DocumentTagRepository struct {
	db *database.DB
}

func NewDocumentTagRepository(db *database.DB) repositories.DocumentTagRepository {
	return &DocumentTagRepository{db: db}
}

func (r *DocumentTagRepository) Create(ctx context.Context, tag *models.DocumentTag) error {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return fmt.Errorf("failed to create document tag: %w", err)
	}
	return nil
}

func (r *DocumentTagRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DocumentTag, error) {
	var tag models.DocumentTag
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document tag not found")
		}
		return nil, fmt.Errorf("failed to get document tag: %w", err)
	}
	return &tag, nil
}

func (r *DocumentTagRepository) Update(ctx context.Context, tag *models.DocumentTag) error {
	result := r.db.WithContext(ctx).Save(tag)
	if result.Error != nil {
		return fmt.Errorf("failed to update document tag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document tag not found")
	}
	return nil
}

func (r *DocumentTagRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.DocumentTag, error) {
	var tags []models.DocumentTag
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("title ASC").Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list document tags: %w", err)
	}
	return tags, nil
}

func (r *DocumentTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DocumentTag{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document tag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document tag not found")
	}
	return nil
}
