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

var (
	ErrShareNotFound      = errors.New("shared link not found")
	ErrSharePasswordWrong = errors.New("incorrect share password")
	ErrSharingDisabled    = errors.New("sharing is not enabled on this plan")
)

// SharingService creates password-protected document links and serves
// anonymous access through them. Every successful access bumps the
// owner's shared/downloaded counters.
type SharingService struct {
	shareRepo   repositories.SharedLinkRepository
	docRepo     repositories.DocumentRepository
	companyRepo repositories.CompanyRepository
	planRepo    repositories.PlanRepository

	usageService *UsageService
	logger       *slog.Logger
}

func NewSharingService(
	shareRepo repositories.SharedLinkRepository,
	docRepo repositories.DocumentRepository,
	companyRepo repositories.CompanyRepository,
	planRepo repositories.PlanRepository,
	usageService *UsageService,
	logger *slog.Logger,
) *SharingService {
	return &SharingService{
		shareRepo:    shareRepo,
		docRepo:      docRepo,
		companyRepo:  companyRepo,
		planRepo:     planRepo,
		usageService: usageService,
		logger:       logger,
	}
}

// CreateLink shares a document behind a password. The link token is a
// random UUID; the password is stored hashed.
func (s *SharingService) CreateLink(ctx context.Context, actor Actor, documentID uuid.UUID, password string) (*models.SharedLink, error) {
	document, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil || document.CompanyID != actor.CompanyID {
		return nil, ErrDocumentNotFound
	}

	if err := s.requireSharingAllowed(ctx, actor.CompanyID); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	link := &models.SharedLink{
		ID:         uuid.New(),
		CompanyID:  actor.CompanyID,
		DocumentID: document.ID,
		OwnerID:    actor.ID,
		OwnerRole:  actor.Role,
		Link:       uuid.New().String(),
		Password:   hash,
	}
	if err := s.shareRepo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create shared link: %w", err)
	}

	if err := s.usageService.RecordShare(ctx, actor); err != nil {
		s.logger.Warn("share counter bump failed", "link_id", link.ID, "error", err)
	}

	return link, nil
}

// Access serves an anonymous visit to a shared link. The password must
// match; a successful visit counts as a download against the owner.
func (s *SharingService) Access(ctx context.Context, token, password string) (*models.Document, error) {
	link, err := s.shareRepo.GetByLink(ctx, token)
	if err != nil {
		return nil, ErrShareNotFound
	}
	if !checkPassword(link.Password, password) {
		return nil, ErrSharePasswordWrong
	}

	document, err := s.docRepo.GetByID(ctx, link.DocumentID)
	if err != nil {
		return nil, ErrDocumentNotFound
	}

	if err := s.shareRepo.IncrementAccess(ctx, link.ID); err != nil {
		s.logger.Warn("access counter bump failed", "link_id", link.ID, "error", err)
	}
	owner := Actor{ID: link.OwnerID, CompanyID: link.CompanyID, Role: link.OwnerRole}
	if err := s.usageService.RecordDownload(ctx, owner); err != nil {
		s.logger.Warn("download counter bump failed", "link_id", link.ID, "error", err)
	}

	return document, nil
}

// ListLinks returns the actor's own shared links.
func (s *SharingService) ListLinks(ctx context.Context, actor Actor) ([]models.SharedLink, error) {
	return s.shareRepo.ListByOwner(ctx, actor.ID)
}

// RevokeLink deletes one of the actor's links.
func (s *SharingService) RevokeLink(ctx context.Context, actor Actor, id uuid.UUID) error {
	link, err := s.shareRepo.GetByID(ctx, id)
	if err != nil || link.CompanyID != actor.CompanyID {
		return ErrShareNotFound
	}
	if link.OwnerID != actor.ID && !actor.Role.IsAny(models.RoleOwner, models.RoleManager) {
		return ErrRoleNotPermitted
	}
	return s.shareRepo.Delete(ctx, id)
}

func (s *SharingService) requireSharingAllowed(ctx context.Context, companyID uuid.UUID) error {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return ErrCompanyNotFound
	}
	if company.PlanID == nil {
		return nil
	}
	plan, err := s.planRepo.GetByID(ctx, *company.PlanID)
	if err != nil {
		return nil
	}
	if !plan.AllowSharing {
		return ErrSharingDisabled
	}
	return nil
}
