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

type SharedLinkRepository struct {
	db *database.DB
}

func NewSharedLinkRepository(db *database.DB) repositories.SharedLinkRepository {
	return &SharedLinkRepository{db: db}
}

func (r *SharedLinkRepository) Create(ctx context.Context, link *models.SharedLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("shared link %q: %w", link.Link, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create shared link: %w", err)
	}
	return nil
}

func (r *SharedLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SharedLink, error) {
	var link models.SharedLink
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shared link not found")
		}
		return nil, fmt.Errorf("failed to get shared link: %w", err)
	}
	return &link, nil
}

func (r *SharedLinkRepository) GetByLink(ctx context.Context, token string) (*models.SharedLink, error) {
	var link models.SharedLink
	err := r.db.WithContext(ctx).Where("link = ?", token).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shared link not found")
		}
		return nil, fmt.Errorf("failed to get shared link: %w", err)
	}
	return &link, nil
}

func (r *SharedLinkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.SharedLink, error) {
	var links []models.SharedLink
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shared links: %w", err)
	}
	return links, nil
}

func (r *SharedLinkRepository) IncrementAccess(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.SharedLink{}).
		Where("id = ?", id).
		Update("access_count", gorm.Expr("access_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment access count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("shared link not found")
	}
	return nil
}

func (r *SharedLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SharedLink{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete shared link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("shared link not found")
	}
	return nil
}
