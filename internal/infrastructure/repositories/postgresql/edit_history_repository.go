package postgresql

import (
	"context"
	"fmt"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

type EditHistoryRepository struct {
	db *database.DB
}

func NewEditHistoryRepository(db *database.DB) repositories.EditHistoryRepository {
	return &EditHistoryRepository{db: db}
}

func (r *EditHistoryRepository) Create(ctx context.Context, entry *models.DocumentEditHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create edit history entry: %w", err)
	}
	return nil
}

func (r *EditHistoryRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]models.DocumentEditHistory, error) {
	var entries []models.DocumentEditHistory
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).
		Order("created_at DESC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list edit history: %w", err)
	}
	return entries, nil
}
