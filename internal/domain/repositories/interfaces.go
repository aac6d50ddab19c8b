package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// Core repository interfaces for clean architecture

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
// Invoice generation relies on it to treat "period already billed" as a
// benign outcome rather than a failure.
var ErrDuplicate = errors.New("duplicate record")

// ErrStaleRevision is returned when an optimistic write lost the race.
var ErrStaleRevision = errors.New("stale revision")

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetByEmail(ctx context.Context, email string) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	List(ctx context.Context, params ListParams) ([]models.Company, int64, error)
	ListActive(ctx context.Context) ([]models.Company, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]models.Company, error)
	IncrementUsage(ctx context.Context, id uuid.UUID, shared, downloaded, uploaded int64) error
	ResetUsage(ctx context.Context, id uuid.UUID, paidAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, params ListParams) ([]models.User, int64, error)
	ListByRole(ctx context.Context, companyID uuid.UUID, role models.Role) ([]models.User, error)
	IncrementReviewed(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, params ListParams) ([]models.Client, int64, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]models.Client, error)
	IncrementUsage(ctx context.Context, id uuid.UUID, shared, downloaded, uploaded int64) error
	ResetUsage(ctx context.Context, id uuid.UUID, paidAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) error
	List(ctx context.Context) ([]models.Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClientPlanRepository interface {
	Create(ctx context.Context, plan *models.ClientPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ClientPlan, error)
	Update(ctx context.Context, plan *models.ClientPlan) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.ClientPlan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentTagRepository interface {
	Create(ctx context.Context, tag *models.DocumentTag) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DocumentTag, error)
	Update(ctx context.Context, tag *models.DocumentTag) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.DocumentTag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Update(ctx context.Context, document *models.Document) error
	List(ctx context.Context, companyID uuid.UUID, filters DocumentFilters) ([]models.Document, int64, error)
	// AppendComment replaces the comment blob only when the stored revision
	// still matches; returns ErrStaleRevision otherwise.
	AppendComment(ctx context.Context, id uuid.UUID, revision int, comments models.CommentList) error
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
	CountByStage(ctx context.Context, companyID uuid.UUID, stage int) (int64, error)
	CountPublished(ctx context.Context, companyID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type EditHistoryRepository interface {
	Create(ctx context.Context, entry *models.DocumentEditHistory) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]models.DocumentEditHistory, error)
}

// InvoiceKind identifies which invoice table a row was resolved from.
type InvoiceKind int

const (
	KindCompanyInvoice InvoiceKind = iota + 1
	KindClientInvoice
	KindCustomInvoice
)

// InvoiceRecord is the tagged union produced by FindAnyByID. Exactly one of
// the pointers is set, matching Kind.
type InvoiceRecord struct {
	Kind    InvoiceKind
	Company *models.Invoice
	Client  *models.ClientInvoice
	Custom  *models.CustomInvoice
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Invoice, error)
	ExistsForPeriod(ctx context.Context, companyID uuid.UUID, period string) (bool, error)
	ListUnpaidForPeriod(ctx context.Context, period string) ([]models.Invoice, error)

	CreateClientInvoice(ctx context.Context, invoice *models.ClientInvoice) error
	GetClientInvoiceByID(ctx context.Context, id uuid.UUID) (*models.ClientInvoice, error)
	UpdateClientInvoice(ctx context.Context, invoice *models.ClientInvoice) error
	ListClientInvoices(ctx context.Context, companyID uuid.UUID) ([]models.ClientInvoice, error)
	ClientInvoiceExistsForPeriod(ctx context.Context, companyID uuid.UUID, clientEmail, period string) (bool, error)
	ListUnpaidClientInvoicesForPeriod(ctx context.Context, period string) ([]models.ClientInvoice, error)

	CreateCustomInvoice(ctx context.Context, invoice *models.CustomInvoice) error
	GetCustomInvoiceByID(ctx context.Context, id uuid.UUID) (*models.CustomInvoice, error)
	UpdateCustomInvoice(ctx context.Context, invoice *models.CustomInvoice) error
	ListCustomInvoices(ctx context.Context, companyID uuid.UUID) ([]models.CustomInvoice, error)
	ListUnpaidCustomInvoicesForPeriod(ctx context.Context, period string) ([]models.CustomInvoice, error)

	// FindAnyByID resolves an id across the three invoice tables in priority
	// order: company invoice, client invoice, custom invoice.
	FindAnyByID(ctx context.Context, id uuid.UUID) (*InvoiceRecord, error)
}

type DisputeRepository interface {
	Create(ctx context.Context, dispute *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	Update(ctx context.Context, dispute *models.Dispute) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, params ListParams) ([]models.Dispute, int64, error)
}

type SharedLinkRepository interface {
	Create(ctx context.Context, link *models.SharedLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SharedLink, error)
	GetByLink(ctx context.Context, link string) (*models.SharedLink, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.SharedLink, error)
	IncrementAccess(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Supporting types for repository operations

type ListParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	SortBy   string `json:"sort_by"`
	SortDesc bool   `json:"sort_desc"`
	Search   string `json:"search"`
}

// DocumentFilters narrows a listing to the documents a role may see. The
// service sets exactly the fields the caller's role permits.
type DocumentFilters struct {
	AddedByID       *uuid.UUID `json:"added_by_id"`
	IndexerPassedID *uuid.UUID `json:"indexer_passed_id"`
	QAPassedID      *uuid.UUID `json:"qa_passed_id"`
	TagID           *uuid.UUID `json:"tag_id"`
	Published       *bool      `json:"published"`
	Stage           *int       `json:"stage"`
	DateFrom        *time.Time `json:"date_from"`
	DateTo          *time.Time `json:"date_to"`
	ListParams
}

// DashboardStats aggregates tenant activity for the dashboard endpoint.
type DashboardStats struct {
	TotalDocuments     int64 `json:"total_documents"`
	DocumentsCreated   int64 `json:"documents_created"`
	DocumentsIndexed   int64 `json:"documents_indexed"`
	DocumentsReviewed  int64 `json:"documents_reviewed"`
	DocumentsPublished int64 `json:"documents_published"`
	TotalUsers         int64 `json:"total_users"`
	TotalClients       int64 `json:"total_clients"`
	DocumentsShared    int64 `json:"documents_shared"`
	DocumentsDownload  int64 `json:"documents_downloaded"`
	DocumentsUploaded  int64 `json:"documents_uploaded"`
}
