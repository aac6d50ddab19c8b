package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/auth"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrCompanyInactive    = errors.New("company is inactive")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// IdentityService authenticates people against the two person tables and
// issues session tokens. Lookup order is employees first, then clients;
// a client match implies role Client. Note that nothing stops an employee
// and a client from sharing an email, in which case the employee wins.
type IdentityService struct {
	userRepo    repositories.UserRepository
	clientRepo  repositories.ClientRepository
	companyRepo repositories.CompanyRepository
	jwtService  *auth.JWTService
	logger      *slog.Logger
}

func NewIdentityService(
	userRepo repositories.UserRepository,
	clientRepo repositories.ClientRepository,
	companyRepo repositories.CompanyRepository,
	jwtService *auth.JWTService,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		companyRepo: companyRepo,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// LoginResult carries the issued session.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	PersonID  uuid.UUID   `json:"person_id"`
	CompanyID uuid.UUID   `json:"company_id"`
	Role      models.Role `json:"role"`
	Name      string      `json:"name"`
}

// Login validates credentials and issues a signed session token.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if user, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		if checkPassword(user.PasswordHash, password) {
			if user.Status != models.StatusActive {
				return nil, ErrAccountInactive
			}
			if err := s.requireActiveCompany(ctx, user.CompanyID); err != nil {
				return nil, err
			}
			return s.issue(user.CompanyID, user.ID, user.Role, user.Name)
		}
	}

	client, err := s.clientRepo.GetByEmail(ctx, email)
	if err != nil || !checkPassword(client.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if client.Status != models.StatusActive {
		return nil, ErrAccountInactive
	}
	if err := s.requireActiveCompany(ctx, client.CompanyID); err != nil {
		return nil, err
	}
	return s.issue(client.CompanyID, client.ID, models.RoleClient, client.Name)
}

// Verify parses a session token into the calling actor.
func (s *IdentityService) Verify(token string) (*Actor, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	personID, err := claims.GetPersonUUID()
	if err != nil {
		return nil, ErrInvalidSession
	}
	companyID, err := claims.GetCompanyUUID()
	if err != nil {
		return nil, ErrInvalidSession
	}
	return &Actor{
		ID:        personID,
		CompanyID: companyID,
		Role:      claims.Role,
		Name:      claims.Name,
	}, nil
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *IdentityService) requireActiveCompany(ctx context.Context, companyID uuid.UUID) error {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return ErrCompanyInactive
	}
	if company.Status != models.StatusActive {
		return ErrCompanyInactive
	}
	return nil
}

func (s *IdentityService) issue(companyID, personID uuid.UUID, role models.Role, name string) (*LoginResult, error) {
	token, expiresAt, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		CompanyID: companyID,
		PersonID:  personID,
		Name:      name,
		Role:      role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		PersonID:  personID,
		CompanyID: companyID,
		Role:      role,
		Name:      name,
	}, nil
}
