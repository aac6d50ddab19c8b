package postgresql

import (
	"context"
	"fmt"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	CompanyRepo     repositories.CompanyRepository
	UserRepo        repositories.UserRepository
	ClientRepo      repositories.ClientRepository
	PlanRepo        repositories.PlanRepository
	ClientPlanRepo  repositories.ClientPlanRepository
	TagRepo         repositories.DocumentTagRepository
	DocumentRepo    repositories.DocumentRepository
	EditHistoryRepo repositories.EditHistoryRepository
	InvoiceRepo     repositories.InvoiceRepository
	DisputeRepo     repositories.DisputeRepository
	SharedLinkRepo  repositories.SharedLinkRepository

	// Internal reference to database for health checks
	db *database.DB
}

// NewRepositories creates a new repositories container
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		CompanyRepo:     NewCompanyRepository(db),
		UserRepo:        NewUserRepository(db),
		ClientRepo:      NewClientRepository(db),
		PlanRepo:        NewPlanRepository(db),
		ClientPlanRepo:  NewClientPlanRepository(db),
		TagRepo:         NewDocumentTagRepository(db),
		DocumentRepo:    NewDocumentRepository(db),
		EditHistoryRepo: NewEditHistoryRepository(db),
		InvoiceRepo:     NewInvoiceRepository(db),
		DisputeRepo:     NewDisputeRepository(db),
		SharedLinkRepo:  NewSharedLinkRepository(db),
		db:              db,
	}
}

// HealthCheck verifies database connectivity
func (r *Repositories) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
