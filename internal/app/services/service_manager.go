package services

import (
	"context"
	"fmt"

	"github.com/docuflow/docuflow/internal/app/config"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/auth"
	"github.com/docuflow/docuflow/internal/infrastructure/cache"
	"github.com/docuflow/docuflow/internal/infrastructure/database"
	"github.com/docuflow/docuflow/internal/infrastructure/email"
	"github.com/docuflow/docuflow/internal/infrastructure/repositories/postgresql"
	"github.com/docuflow/docuflow/pkg/logger"
)

// ServiceManager manages all application services
type ServiceManager struct {
	Config *config.Config

	// Infrastructure
	DB           *database.DB
	Repositories *postgresql.Repositories
	CacheService services.CacheService
	JWTService   *auth.JWTService
	EmailSender  services.EmailSender

	// Domain services
	IdentityService *services.IdentityService
	TenantService   *services.TenantService
	UserService     *services.UserService
	TagService      *services.TagService
	UsageService    *services.UsageService
	DocumentService *services.DocumentService
	InvoiceService  *services.InvoiceService
	SharingService  *services.SharingService
	DisputeService  *services.DisputeService
}

// NewServiceManager creates a new service manager
func NewServiceManager(cfg *config.Config, db *database.DB, log *logger.Logger) (*ServiceManager, error) {
	// Initialize repositories
	repos := postgresql.NewRepositories(db)

	// Initialize cache service with Redis
	cacheService, err := cache.CreateCacheService(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache service: %w", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	emailSender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)

	baseLog := log.Logger

	usageService := services.NewUsageService(
		repos.CompanyRepo, repos.ClientRepo, repos.UserRepo, repos.DocumentRepo,
		cacheService, baseLog,
	)

	sm := &ServiceManager{
		Config:       cfg,
		DB:           db,
		Repositories: repos,
		CacheService: cacheService,
		JWTService:   jwtService,
		EmailSender:  emailSender,

		UsageService: usageService,
		IdentityService: services.NewIdentityService(
			repos.UserRepo, repos.ClientRepo, repos.CompanyRepo, jwtService, baseLog,
		),
		TenantService: services.NewTenantService(
			repos.CompanyRepo, repos.UserRepo, repos.ClientRepo,
			repos.PlanRepo, repos.ClientPlanRepo, emailSender, baseLog,
		),
		UserService: services.NewUserService(repos.UserRepo, repos.ClientRepo, baseLog),
		TagService:  services.NewTagService(repos.TagRepo, baseLog),
		DocumentService: services.NewDocumentService(
			repos.DocumentRepo, repos.TagRepo, repos.UserRepo, repos.ClientRepo,
			repos.EditHistoryRepo, usageService, baseLog,
		),
		InvoiceService: services.NewInvoiceService(
			repos.InvoiceRepo, repos.CompanyRepo, repos.ClientRepo,
			repos.PlanRepo, repos.ClientPlanRepo, usageService,
			emailSender, cacheService, baseLog,
		),
		SharingService: services.NewSharingService(
			repos.SharedLinkRepo, repos.DocumentRepo, repos.CompanyRepo,
			repos.PlanRepo, usageService, baseLog,
		),
		DisputeService: services.NewDisputeService(repos.DisputeRepo, repos.DocumentRepo, baseLog),
	}

	return sm, nil
}

// Health check for all services
func (sm *ServiceManager) HealthCheck() error {
	// Check database
	if err := sm.Repositories.HealthCheck(context.Background()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check Redis cache
	if err := sm.CacheService.Ping(context.Background()); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	return nil
}

// Close gracefully shuts down all services
func (sm *ServiceManager) Close() error {
	// Close cache service
	if err := sm.CacheService.Close(); err != nil {
		return fmt.Errorf("failed to close cache service: %w", err)
	}

	// Close database connection
	if err := sm.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
