package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// TagService manages the document tags whose property schemas seed new
// documents.
type TagService struct {
	tagRepo repositories.DocumentTagRepository
	logger  *slog.Logger
}

func NewTagService(tagRepo repositories.DocumentTagRepository, logger *slog.Logger) *TagService {
	return &TagService{tagRepo: tagRepo, logger: logger}
}

// CreateTag registers a tag with its property schema.
func (s *TagService) CreateTag(ctx context.Context, actor Actor, title string, schema models.PropertySchema) (*models.DocumentTag, error) {
	tag := &models.DocumentTag{
		ID:         uuid.New(),
		CompanyID:  actor.CompanyID,
		Title:      title,
		Properties: schema,
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// GetTag returns one tag, scoped to the actor's tenant.
func (s *TagService) GetTag(ctx context.Context, actor Actor, id uuid.UUID) (*models.DocumentTag, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil || tag.CompanyID != actor.CompanyID {
		return nil, ErrTagNotFound
	}
	return tag, nil
}

// UpdateTag persists schema changes. Existing documents keep the
// properties they were created with.
func (s *TagService) UpdateTag(ctx context.Context, actor Actor, tag *models.DocumentTag) error {
	existing, err := s.GetTag(ctx, actor, tag.ID)
	if err != nil {
		return err
	}
	tag.CompanyID = existing.CompanyID
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}
	return nil
}

// ListTags returns every tag of the actor's tenant.
func (s *TagService) ListTags(ctx context.Context, actor Actor) ([]models.DocumentTag, error) {
	return s.tagRepo.ListByCompany(ctx, actor.CompanyID)
}

// DeleteTag removes a tag.
func (s *TagService) DeleteTag(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.GetTag(ctx, actor, id); err != nil {
		return err
	}
	return s.tagRepo.Delete(ctx, id)
}
