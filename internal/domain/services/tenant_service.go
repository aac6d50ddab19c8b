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
	ErrCompanyEmailTaken = errors.New("company contact email already registered")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanInUse         = errors.New("plan is referenced by existing accounts")
)

// PlanInUseError lists the entities blocking a plan deletion.
type PlanInUseError struct {
	Companies []models.Company
	Clients   []models.Client
}

func (e *PlanInUseError) Error() string {
	return fmt.Sprintf("plan is in use by %d companies and %d clients",
		len(e.Companies), len(e.Clients))
}

func (e *PlanInUseError) Unwrap() error { return ErrPlanInUse }

// TenantService handles company onboarding and plan management.
type TenantService struct {
	companyRepo    repositories.CompanyRepository
	userRepo       repositories.UserRepository
	clientRepo     repositories.ClientRepository
	planRepo       repositories.PlanRepository
	clientPlanRepo repositories.ClientPlanRepository

	email  EmailSender
	logger *slog.Logger
}

func NewTenantService(
	companyRepo repositories.CompanyRepository,
	userRepo repositories.UserRepository,
	clientRepo repositories.ClientRepository,
	planRepo repositories.PlanRepository,
	clientPlanRepo repositories.ClientPlanRepository,
	email EmailSender,
	logger *slog.Logger,
) *TenantService {
	return &TenantService{
		companyRepo:    companyRepo,
		userRepo:       userRepo,
		clientRepo:     clientRepo,
		planRepo:       planRepo,
		clientPlanRepo: clientPlanRepo,
		email:          email,
		logger:         logger,
	}
}

// SignupParams contains parameters for company registration.
type SignupParams struct {
	CompanyName  string     `json:"company_name"`
	ContactEmail string     `json:"contact_email"`
	ContactPhone string     `json:"contact_phone"`
	PlanID       *uuid.UUID `json:"plan_id,omitempty"`

	OwnerName     string `json:"owner_name"`
	OwnerEmail    string `json:"owner_email"`
	OwnerPassword string `json:"owner_password"`
}

// Signup registers a company and provisions its first Owner account. The
// welcome email is best-effort.
func (s *TenantService) Signup(ctx context.Context, params SignupParams) (*models.Company, *models.User, error) {
	if params.PlanID != nil {
		if _, err := s.planRepo.GetByID(ctx, *params.PlanID); err != nil {
			return nil, nil, ErrPlanNotFound
		}
	}

	company := &models.Company{
		ID:           uuid.New(),
		Name:         params.CompanyName,
		ContactEmail: params.ContactEmail,
		ContactPhone: params.ContactPhone,
		Status:       models.StatusActive,
		PlanID:       params.PlanID,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, ErrCompanyEmailTaken
		}
		return nil, nil, fmt.Errorf("failed to register company: %w", err)
	}

	hash, err := HashPassword(params.OwnerPassword)
	if err != nil {
		return nil, nil, err
	}
	owner := &models.User{
		ID:           uuid.New(),
		CompanyID:    company.ID,
		Name:         params.OwnerName,
		Email:        params.OwnerEmail,
		PasswordHash: hash,
		Role:         models.RoleOwner,
		Status:       models.StatusActive,
	}
	if err := s.userRepo.Create(ctx, owner); err != nil {
		return nil, nil, fmt.Errorf("failed to provision owner account: %w", err)
	}

	if err := s.email.Send(ctx, EmailMessage{
		To:      params.ContactEmail,
		Subject: "Welcome to DocuFlow",
		Body:    fmt.Sprintf("Hello %s,\n\nYour company %s has been registered.\n", params.OwnerName, company.Name),
	}); err != nil {
		s.logger.Warn("welcome email failed", "company_id", company.ID, "error", err)
	}

	return company, owner, nil
}

// GetCompany returns one company.
func (s *TenantService) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

// UpdateCompany persists profile changes.
func (s *TenantService) UpdateCompany(ctx context.Context, company *models.Company) error {
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}

// CreatePlan registers a platform-level plan.
func (s *TenantService) CreatePlan(ctx context.Context, plan *models.Plan) error {
	if err := s.planRepo.Create(ctx, plan); err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

// UpdatePlan persists rate changes.
func (s *TenantService) UpdatePlan(ctx context.Context, plan *models.Plan) error {
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	return nil
}

// ListPlans returns every platform plan.
func (s *TenantService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	return s.planRepo.List(ctx)
}

// DeletePlan removes a plan unless companies still reference it; the
// blocking companies are returned to the caller inside the error.
func (s *TenantService) DeletePlan(ctx context.Context, id uuid.UUID) error {
	if _, err := s.planRepo.GetByID(ctx, id); err != nil {
		return ErrPlanNotFound
	}

	companies, err := s.companyRepo.ListByPlan(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check plan references: %w", err)
	}
	if len(companies) > 0 {
		return &PlanInUseError{Companies: companies}
	}

	return s.planRepo.Delete(ctx, id)
}

// CreateClientPlan registers a client plan for a tenant.
func (s *TenantService) CreateClientPlan(ctx context.Context, plan *models.ClientPlan) error {
	if err := s.clientPlanRepo.Create(ctx, plan); err != nil {
		return fmt.Errorf("failed to create client plan: %w", err)
	}
	return nil
}

// UpdateClientPlan persists rate changes on a tenant's client plan.
func (s *TenantService) UpdateClientPlan(ctx context.Context, plan *models.ClientPlan) error {
	if err := s.clientPlanRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to update client plan: %w", err)
	}
	return nil
}

// ListClientPlans returns a tenant's client plans.
func (s *TenantService) ListClientPlans(ctx context.Context, companyID uuid.UUID) ([]models.ClientPlan, error) {
	return s.clientPlanRepo.ListByCompany(ctx, companyID)
}

// DeleteClientPlan removes a client plan unless clients still reference it.
func (s *TenantService) DeleteClientPlan(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clientPlanRepo.GetByID(ctx, id); err != nil {
		return ErrPlanNotFound
	}

	clients, err := s.clientRepo.ListByPlan(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check plan references: %w", err)
	}
	if len(clients) > 0 {
		return &PlanInUseError{Clients: clients}
	}

	return s.clientPlanRepo.Delete(ctx, id)
}
