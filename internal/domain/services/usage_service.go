package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// UsageService owns the running usage counters on companies and clients.
// All increments go through atomic datastore updates; the invoice engine
// reads the counters at generation time and resets them on settlement.
type UsageService struct {
	companyRepo repositories.CompanyRepository
	clientRepo  repositories.ClientRepository
	userRepo    repositories.UserRepository
	docRepo     repositories.DocumentRepository

	cache  CacheService
	logger *slog.Logger
}

func NewUsageService(
	companyRepo repositories.CompanyRepository,
	clientRepo repositories.ClientRepository,
	userRepo repositories.UserRepository,
	docRepo repositories.DocumentRepository,
	cache CacheService,
	logger *slog.Logger,
) *UsageService {
	return &UsageService{
		companyRepo: companyRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		docRepo:     docRepo,
		cache:       cache,
		logger:      logger,
	}
}

// RecordUpload bumps the uploaded counter for the actor: clients carry
// their own counters, employees bill against their company.
func (s *UsageService) RecordUpload(ctx context.Context, actor Actor) error {
	return s.increment(ctx, actor, 0, 0, 1)
}

// RecordShare bumps the shared counter.
func (s *UsageService) RecordShare(ctx context.Context, actor Actor) error {
	return s.increment(ctx, actor, 1, 0, 0)
}

// RecordDownload bumps the downloaded counter.
func (s *UsageService) RecordDownload(ctx context.Context, actor Actor) error {
	return s.increment(ctx, actor, 0, 1, 0)
}

func (s *UsageService) increment(ctx context.Context, actor Actor, shared, downloaded, uploaded int64) error {
	if actor.IsClient() {
		return s.clientRepo.IncrementUsage(ctx, actor.ID, shared, downloaded, uploaded)
	}
	return s.companyRepo.IncrementUsage(ctx, actor.CompanyID, shared, downloaded, uploaded)
}

// RecordReview bumps an employee's reviewed tally.
func (s *UsageService) RecordReview(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.IncrementReviewed(ctx, userID)
}

// ResetCompanyUsage zeroes a company's counters and stamps the
// settlement time. Called by the invoice engine on payer submit.
func (s *UsageService) ResetCompanyUsage(ctx context.Context, companyID uuid.UUID, paidAt time.Time) error {
	return s.companyRepo.ResetUsage(ctx, companyID, paidAt)
}

// ResetClientUsage is the client-level counterpart.
func (s *UsageService) ResetClientUsage(ctx context.Context, clientID uuid.UUID, paidAt time.Time) error {
	return s.clientRepo.ResetUsage(ctx, clientID, paidAt)
}

// DashboardStats aggregates tenant activity, cached briefly since the
// dashboard polls.
func (s *UsageService) DashboardStats(ctx context.Context, companyID uuid.UUID) (*repositories.DashboardStats, error) {
	cacheKey := fmt.Sprintf(DashboardCacheKeyPattern, companyID)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var stats repositories.DashboardStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	stats := &repositories.DashboardStats{
		DocumentsShared:   company.DocumentsShared,
		DocumentsDownload: company.DocumentsDownloaded,
		DocumentsUploaded: company.DocumentsUploaded,
	}

	if stats.TotalDocuments, err = s.docRepo.CountByCompany(ctx, companyID); err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if stats.DocumentsCreated, err = s.docRepo.CountByStage(ctx, companyID, models.StageCreated); err != nil {
		return nil, fmt.Errorf("failed to count created documents: %w", err)
	}
	if stats.DocumentsIndexed, err = s.docRepo.CountByStage(ctx, companyID, models.StageIndexed); err != nil {
		return nil, fmt.Errorf("failed to count indexed documents: %w", err)
	}
	if stats.DocumentsReviewed, err = s.docRepo.CountByStage(ctx, companyID, models.StageReviewed); err != nil {
		return nil, fmt.Errorf("failed to count reviewed documents: %w", err)
	}
	if stats.DocumentsPublished, err = s.docRepo.CountPublished(ctx, companyID); err != nil {
		return nil, fmt.Errorf("failed to count published documents: %w", err)
	}

	if _, users, err := s.listCount(ctx, companyID); err == nil {
		stats.TotalUsers = users
	}
	if _, clients, err := s.clientRepo.ListByCompany(ctx, companyID, repositories.ListParams{Page: 1, PageSize: 1}); err == nil {
		stats.TotalClients = clients
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(payload), CacheShortTerm); err != nil {
			s.logger.Debug("dashboard cache write failed", "company_id", companyID, "error", err)
		}
	}
	return stats, nil
}

func (s *UsageService) listCount(ctx context.Context, companyID uuid.UUID) ([]models.User, int64, error) {
	return s.userRepo.ListByCompany(ctx, companyID, repositories.ListParams{Page: 1, PageSize: 1})
}
