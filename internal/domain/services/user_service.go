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
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
)

// employeeRoles are the roles assignable to company staff.
var employeeRoles = []models.Role{
	models.RoleOwner, models.RoleManager, models.RoleScanner,
	models.RoleIndexer, models.RoleQA, models.RoleAdmin,
}

// UserService manages a tenant's employees and clients.
type UserService struct {
	userRepo   repositories.UserRepository
	clientRepo repositories.ClientRepository
	logger     *slog.Logger
}

func NewUserService(
	userRepo repositories.UserRepository,
	clientRepo repositories.ClientRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// CreateUserParams contains parameters for employee creation.
type CreateUserParams struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// CreateUser provisions an employee account within the actor's tenant.
func (s *UserService) CreateUser(ctx context.Context, actor Actor, params CreateUserParams) (*models.User, error) {
	if !params.Role.IsAny(employeeRoles...) {
		return nil, ErrInvalidRole
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		CompanyID:    actor.CompanyID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         params.Role,
		Status:       models.StatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUser returns one employee, scoped to the actor's tenant.
func (s *UserService) GetUser(ctx context.Context, actor Actor, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil || user.CompanyID != actor.CompanyID {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateUser persists profile and role changes within the tenant.
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, user *models.User) error {
	existing, err := s.GetUser(ctx, actor, user.ID)
	if err != nil {
		return err
	}
	user.CompanyID = existing.CompanyID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// ListUsers pages through the tenant's employees.
func (s *UserService) ListUsers(ctx context.Context, actor Actor, params repositories.ListParams) ([]models.User, int64, error) {
	return s.userRepo.ListByCompany(ctx, actor.CompanyID, params)
}

// DeactivateUser retires an employee account without deleting audit
// references.
func (s *UserService) DeactivateUser(ctx context.Context, actor Actor, id uuid.UUID) error {
	user, err := s.GetUser(ctx, actor, id)
	if err != nil {
		return err
	}
	user.Status = models.StatusInactive
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

// CreateClientParams contains parameters for client creation.
type CreateClientParams struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	PlanID   *uuid.UUID `json:"plan_id,omitempty"`
}

// CreateClient provisions a client account within the actor's tenant.
func (s *UserService) CreateClient(ctx context.Context, actor Actor, params CreateClientParams) (*models.Client, error) {
	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		ID:           uuid.New(),
		CompanyID:    actor.CompanyID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Status:       models.StatusActive,
		PlanID:       params.PlanID,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// GetClient returns one client, scoped to the actor's tenant.
func (s *UserService) GetClient(ctx context.Context, actor Actor, id uuid.UUID) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil || client.CompanyID != actor.CompanyID {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// UpdateClient persists profile and plan changes within the tenant.
func (s *UserService) UpdateClient(ctx context.Context, actor Actor, client *models.Client) error {
	existing, err := s.GetClient(ctx, actor, client.ID)
	if err != nil {
		return err
	}
	client.CompanyID = existing.CompanyID
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// ListClients pages through the tenant's clients.
func (s *UserService) ListClients(ctx context.Context, actor Actor, params repositories.ListParams) ([]models.Client, int64, error) {
	return s.clientRepo.ListByCompany(ctx, actor.CompanyID, params)
}

// DeactivateClient retires a client account.
func (s *UserService) DeactivateClient(ctx context.Context, actor Actor, id uuid.UUID) error {
	client, err := s.GetClient(ctx, actor, id)
	if err != nil {
		return err
	}
	client.Status = models.StatusInactive
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return fmt.Errorf("failed to deactivate client: %w", err)
	}
	return nil
}
