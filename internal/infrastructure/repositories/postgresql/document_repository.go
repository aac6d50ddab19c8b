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

type DocumentRepository struct {
	db *database.DB
}

func NewDocumentRepository(db *database.DB) repositories.DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	if document.ID == uuid.Nil {
		document.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var document models.Document
	err := r.db.WithContext(ctx).Preload("Tag").Where("id = ?", id).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document not found")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &document, nil
}

func (r *DocumentRepository) Update(ctx context.Context, document *models.Document) error {
	result := r.db.WithContext(ctx).Save(document)
	if result.Error != nil {
		return fmt.Errorf("failed to update document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document not found")
	}
	return nil
}

func (r *DocumentRepository) List(ctx context.Context, companyID uuid.UUID, filters repositories.DocumentFilters) ([]models.Document, int64, error) {
	var documents []models.Document
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Document{}).Where("company_id = ?", companyID)

	if filters.AddedByID != nil {
		query = query.Where("added_by_id = ?", *filters.AddedByID)
	}
	if filters.IndexerPassedID != nil {
		query = query.Where("indexer_passed_id = ?", *filters.IndexerPassedID)
	}
	if filters.QAPassedID != nil {
		query = query.Where("qa_passed_id = ?", *filters.QAPassedID)
	}
	if filters.TagID != nil {
		query = query.Where("tag_id = ?", *filters.TagID)
	}
	if filters.Published != nil {
		query = query.Where("is_published = ?", *filters.Published)
	}
	if filters.Stage != nil {
		query = query.Where("progress_number = ?", *filters.Stage)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if filters.Search != "" {
		query = query.Where("title LIKE ?", "%"+filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	order := "created_at DESC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		order = filters.SortBy + " " + direction
	}

	if err := query.Preload("Tag").Order(order).Offset(offset).Limit(pageSize).Find(&documents).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, total, nil
}

func (r *DocumentRepository) AppendComment(ctx context.Context, id uuid.UUID, revision int, comments models.CommentList) error {
	result := r.db.WithContext(ctx).Model(&models.Document{}).
		Where("id = ? AND revision = ?", id, revision).
		Updates(map[string]interface{}{
			"comments": comments,
			"revision": gorm.Expr("revision + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to append comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrStaleRevision
	}
	return nil
}

func (r *DocumentRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Document{}).
		Where("company_id = ?", companyID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func (r *DocumentRepository) CountByStage(ctx context.Context, companyID uuid.UUID, stage int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Document{}).
		Where("company_id = ? AND progress_number = ?", companyID, stage).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count documents by stage: %w", err)
	}
	return count, nil
}

func (r *DocumentRepository) CountPublished(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Document{}).
		Where("company_id = ? AND is_published = ?", companyID, true).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count published documents: %w", err)
	}
	return count, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document not found")
	}
	return nil
}
