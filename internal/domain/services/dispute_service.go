package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

var ErrDisputeNotFound = errors.New("dispute not found")

// DisputeService records complaints against documents. Anyone in the
// tenant may raise one; resolution is reserved for privileged roles.
type DisputeService struct {
	disputeRepo repositories.DisputeRepository
	docRepo     repositories.DocumentRepository
	logger      *slog.Logger
}

func NewDisputeService(
	disputeRepo repositories.DisputeRepository,
	docRepo repositories.DocumentRepository,
	logger *slog.Logger,
) *DisputeService {
	return &DisputeService{
		disputeRepo: disputeRepo,
		docRepo:     docRepo,
		logger:      logger,
	}
}

// Raise files a dispute against a document in the actor's tenant.
func (s *DisputeService) Raise(ctx context.Context, actor Actor, documentID uuid.UUID, description string) (*models.Dispute, error) {
	document, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil || document.CompanyID != actor.CompanyID {
		return nil, ErrDocumentNotFound
	}

	dispute := &models.Dispute{
		ID:          uuid.New(),
		CompanyID:   actor.CompanyID,
		DocumentID:  document.ID,
		RaiserID:    actor.ID,
		RaiserRole:  actor.Role,
		Description: description,
	}
	if err := s.disputeRepo.Create(ctx, dispute); err != nil {
		return nil, fmt.Errorf("failed to raise dispute: %w", err)
	}
	return dispute, nil
}

// Resolve closes a dispute. Owner, Manager and Admin only.
func (s *DisputeService) Resolve(ctx context.Context, actor Actor, disputeID uuid.UUID) (*models.Dispute, error) {
	if !actor.Role.IsAny(models.RoleOwner, models.RoleManager, models.RoleAdmin) {
		return nil, ErrRoleNotPermitted
	}

	dispute, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil || dispute.CompanyID != actor.CompanyID {
		return nil, ErrDisputeNotFound
	}

	dispute.Resolved = true
	if err := s.disputeRepo.Update(ctx, dispute); err != nil {
		return nil, fmt.Errorf("failed to resolve dispute: %w", err)
	}
	return dispute, nil
}

// List pages through the tenant's disputes.
func (s *DisputeService) List(ctx context.Context, actor Actor, params repositories.ListParams) ([]models.Dispute, int64, error) {
	return s.disputeRepo.ListByCompany(ctx, actor.CompanyID, params)
}
