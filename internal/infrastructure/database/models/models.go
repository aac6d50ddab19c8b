package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Custom types
type Role string
type AccountStatus string
type Progress string

const (
	// Employee roles. RoleClient is implied for anyone resolved through the
	// clients table and is never stored on a User row.
	RoleOwner   Role = "Owner"
	RoleManager Role = "Manager"
	RoleScanner Role = "Scanner"
	RoleIndexer Role = "Indexer"
	RoleQA      Role = "QA"
	RoleAdmin   Role = "Admin"
	RoleClient  Role = "Client"

	// Account status
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"

	// Document progress labels, mirrored by ProgressNumber
	ProgressIncomplete Progress = "Incomplete"
	ProgressComplete   Progress = "Complete"

	// Pipeline stages encoded in Document.ProgressNumber
	StageCreated  = 1
	StageIndexed  = 2
	StageReviewed = 3
)

// Is compares roles case-insensitively; role strings arrive from tokens and
// request bodies with inconsistent casing.
func (r Role) Is(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

// IsAny reports whether r matches any of the given roles.
func (r Role) IsAny(others ...Role) bool {
	for _, o := range others {
		if r.Is(o) {
			return true
		}
	}
	return false
}

// Property is one key/value entry of a document's indexed metadata. Order is
// significant and must survive serialization exactly.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PropertyField is one entry of a tag's property schema.
type PropertyField struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

// Comment is one audit entry on a document.
type Comment struct {
	Text       string    `json:"text"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorRole Role      `json:"author_role"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// LineItem is one manual adjustment entry on an invoice.
type LineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Ordered JSON list types for jsonb/text columns.
type PropertyList []Property
type PropertySchema []PropertyField
type CommentList []Comment
type LineItemList []LineItem

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(dst interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch b := value.(type) {
	case []byte:
		return json.Unmarshal(b, dst)
	case string:
		return json.Unmarshal([]byte(b), dst)
	default:
		return errors.New("unsupported type for JSON column")
	}
}

func (l PropertyList) Value() (driver.Value, error)   { return jsonValue(l) }
func (l *PropertyList) Scan(value interface{}) error  { return jsonScan(l, value) }
func (l PropertySchema) Value() (driver.Value, error) { return jsonValue(l) }
func (l *PropertySchema) Scan(value interface{}) error {
	return jsonScan(l, value)
}
func (l CommentList) Value() (driver.Value, error)   { return jsonValue(l) }
func (l *CommentList) Scan(value interface{}) error  { return jsonScan(l, value) }
func (l LineItemList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *LineItemList) Scan(value interface{}) error { return jsonScan(l, value) }

// Total sums the adjustment amounts.
func (l LineItemList) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range l {
		sum = sum.Add(item.Amount)
	}
	return sum
}

// Company is the tenant: the unit of billing and data isolation.
type Company struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	Name         string        `json:"name" gorm:"type:varchar(255);not null"`
	ContactEmail string        `json:"contact_email" gorm:"type:varchar(320);unique;not null"`
	ContactPhone string        `json:"contact_phone" gorm:"type:varchar(50)"`
	Status       AccountStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	PlanID       *uuid.UUID    `json:"plan_id" gorm:"type:uuid;index"`

	// Usage counters consumed by invoice generation; reset to zero when the
	// company submits its invoice.
	DocumentsShared     int64 `json:"documents_shared" gorm:"not null;default:0"`
	DocumentsDownloaded int64 `json:"documents_downloaded" gorm:"not null;default:0"`
	DocumentsUploaded   int64 `json:"documents_uploaded" gorm:"not null;default:0"`

	LastInvoicePaid *time.Time `json:"last_invoice_paid"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Plan *Plan `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
}

// User is a company employee. Clients live in their own table.
type User struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID    uuid.UUID     `json:"company_id" gorm:"type:uuid;not null;index"`
	Name         string        `json:"name" gorm:"type:varchar(255);not null"`
	Email        string        `json:"email" gorm:"type:varchar(320);not null;index"`
	PasswordHash string        `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role          `json:"role" gorm:"type:varchar(20);not null"`
	Status       AccountStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`

	DocumentsReviewed int64 `json:"documents_reviewed" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// Client is an external customer of a company, billed on its own plan.
type Client struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID    uuid.UUID     `json:"company_id" gorm:"type:uuid;not null;index"`
	Name         string        `json:"name" gorm:"type:varchar(255);not null"`
	Email        string        `json:"email" gorm:"type:varchar(320);not null;index"`
	PasswordHash string        `json:"-" gorm:"type:varchar(255);not null"`
	Status       AccountStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	PlanID       *uuid.UUID    `json:"plan_id" gorm:"type:uuid;index"`

	DocumentsShared     int64 `json:"documents_shared" gorm:"not null;default:0"`
	DocumentsDownloaded int64 `json:"documents_downloaded" gorm:"not null;default:0"`
	DocumentsUploaded   int64 `json:"documents_uploaded" gorm:"not null;default:0"`

	LastInvoicePaid *time.Time `json:"last_invoice_paid"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company Company     `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Plan    *ClientPlan `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
}

// PlanRates are the billing knobs shared by company and client plans.
// Count fields are divisors for proration; zero means "treat as 1".
type PlanRates struct {
	MonthlyPrice             decimal.Decimal `json:"monthly_price" gorm:"type:decimal(20,4);not null;default:0"`
	UploadPricePerTen        decimal.Decimal `json:"upload_price_per_ten" gorm:"type:decimal(20,4);not null;default:0"`
	DownloadPricePerThousand decimal.Decimal `json:"download_price_per_thousand" gorm:"type:decimal(20,4);not null;default:0"`
	SharePricePerThousand    decimal.Decimal `json:"share_price_per_thousand" gorm:"type:decimal(20,4);not null;default:0"`
	UploadCount              int64           `json:"upload_count" gorm:"not null;default:10"`
	DownloadCount            int64           `json:"download_count" gorm:"not null;default:1000"`
	ShareCount               int64           `json:"share_count" gorm:"not null;default:1000"`
	BillingDuration          int             `json:"billing_duration" gorm:"not null;default:1"`
}

// Plan is a company-level subscription plan, owned by the platform.
type Plan struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Title string    `json:"title" gorm:"type:varchar(255);not null"`
	PlanRates

	AllowSharing  bool `json:"allow_sharing" gorm:"not null;default:true"`
	AllowDisputes bool `json:"allow_disputes" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

// ClientPlan is a client-level plan scoped to one company.
type ClientPlan struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	PlanRates

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// DocumentTag defines the property schema every new document of that tag
// starts from.
type DocumentTag struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID  uuid.UUID      `json:"company_id" gorm:"type:uuid;not null;index"`
	Title      string         `json:"title" gorm:"type:varchar(255);not null"`
	Properties PropertySchema `json:"properties" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// Document is the unit of the review pipeline. ProgressNumber encodes the
// stage (1 created/with indexer, 2 indexed/with QA, 3 reviewed), with
// IsPublished marking the terminal published state.
type Document struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	TagID     uuid.UUID `json:"tag_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	URL       string    `json:"url" gorm:"type:varchar(500)"`
	FileID    string    `json:"file_id" gorm:"type:varchar(255)"`

	Properties PropertyList `json:"properties" gorm:"type:text"`

	Progress       Progress `json:"progress" gorm:"type:varchar(20);not null;default:'Incomplete'"`
	ProgressNumber int      `json:"progress_number" gorm:"not null;default:1"`
	IsPublished    bool     `json:"is_published" gorm:"not null;default:false"`

	AddedByID   uuid.UUID `json:"added_by_id" gorm:"type:uuid;not null;index"`
	AddedByRole Role      `json:"added_by_role" gorm:"type:varchar(20);not null"`

	IndexerPassedID *uuid.UUID `json:"indexer_passed_id" gorm:"type:uuid;index"`
	QAPassedID      *uuid.UUID `json:"qa_passed_id" gorm:"type:uuid;index"`
	PassedTo        *uuid.UUID `json:"passed_to" gorm:"type:uuid;index"`

	Comments CommentList `json:"comments" gorm:"type:text"`

	// Bumped on every comment append; guards the read-modify-write of the
	// comment blob.
	Revision int `json:"revision" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company Company     `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Tag     DocumentTag `json:"tag,omitempty" gorm:"foreignKey:TagID"`
}

// DocumentEditHistory records every mutation of a document for auditing.
type DocumentEditHistory struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID  uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	DocumentID uuid.UUID `json:"document_id" gorm:"type:uuid;not null;index"`
	EditorID   uuid.UUID `json:"editor_id" gorm:"type:uuid;not null"`
	EditorRole Role      `json:"editor_role" gorm:"type:varchar(20);not null"`
	Action     string    `json:"action" gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`
}

// InvoiceBreakdown carries the computed billing components shared by all
// invoice kinds. Value is the rounded total including adjustments.
type InvoiceBreakdown struct {
	Value          decimal.Decimal `json:"value" gorm:"type:decimal(20,4);not null;default:0"`
	MonthlyAmount  decimal.Decimal `json:"monthly_amount" gorm:"type:decimal(20,4);not null;default:0"`
	SharedAmount   decimal.Decimal `json:"shared_amount" gorm:"type:decimal(20,4);not null;default:0"`
	DownloadAmount decimal.Decimal `json:"download_amount" gorm:"type:decimal(20,4);not null;default:0"`
	UploadAmount   decimal.Decimal `json:"upload_amount" gorm:"type:decimal(20,4);not null;default:0"`
}

// Invoice is a platform-to-company invoice, generated at most once per
// (company, period).
type Invoice struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_invoice_company_period"`
	PeriodLabel string    `json:"period_label" gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_company_period"`
	InvoiceBreakdown

	OtherInvoices LineItemList `json:"other_invoices" gorm:"type:text"`

	InvoiceSubmitted      bool `json:"invoice_submitted" gorm:"not null;default:false"`
	InvoiceSubmittedAdmin bool `json:"invoice_submitted_admin" gorm:"not null;default:false"`

	DueDate   time.Time `json:"due_date" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// ClientInvoice is a company-to-client invoice. The period key includes the
// client's email, matching the generation idempotency rule.
type ClientInvoice struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_client_invoice_period"`
	ClientID    uuid.UUID `json:"client_id" gorm:"type:uuid;not null;index"`
	ClientEmail string    `json:"client_email" gorm:"type:varchar(320);not null;uniqueIndex:idx_client_invoice_period"`
	PeriodLabel string    `json:"period_label" gorm:"type:varchar(50);not null;uniqueIndex:idx_client_invoice_period"`
	InvoiceBreakdown

	OtherInvoices LineItemList `json:"other_invoices" gorm:"type:text"`

	InvoiceSubmitted      bool `json:"invoice_submitted" gorm:"not null;default:false"`
	InvoiceSubmittedAdmin bool `json:"invoice_submitted_admin" gorm:"not null;default:false"`

	DueDate   time.Time `json:"due_date" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Client  Client  `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

// CustomInvoice is a manually composed invoice outside the periodic
// generator. IsClient distinguishes client-directed from company-directed.
type CustomInvoice struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	ClientID    *uuid.UUID `json:"client_id" gorm:"type:uuid;index"`
	IsClient    bool      `json:"is_client" gorm:"not null;default:false"`
	Description string    `json:"description" gorm:"type:text"`
	PeriodLabel string    `json:"period_label" gorm:"type:varchar(50)"`

	Value decimal.Decimal `json:"value" gorm:"type:decimal(20,4);not null;default:0"`

	OtherInvoices LineItemList `json:"other_invoices" gorm:"type:text"`

	InvoiceSubmitted      bool `json:"invoice_submitted" gorm:"not null;default:false"`
	InvoiceSubmittedAdmin bool `json:"invoice_submitted_admin" gorm:"not null;default:false"`

	DueDate   time.Time `json:"due_date" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// Dispute is a complaint raised against a document.
type Dispute struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	DocumentID  uuid.UUID `json:"document_id" gorm:"type:uuid;not null;index"`
	RaiserID    uuid.UUID `json:"raiser_id" gorm:"type:uuid;not null"`
	RaiserRole  Role      `json:"raiser_role" gorm:"type:varchar(20);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Resolved    bool      `json:"resolved" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company  Company  `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Document Document `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
}

// SharedLink grants anonymous, password-gated access to one document.
type SharedLink struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID  uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	DocumentID uuid.UUID `json:"document_id" gorm:"type:uuid;not null;index"`
	OwnerID    uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	OwnerRole  Role      `json:"owner_role" gorm:"type:varchar(20);not null"`
	Link       string    `json:"link" gorm:"type:varchar(255);unique;not null"`
	Password   string    `json:"-" gorm:"type:varchar(255);not null"`

	AccessCount int64 `json:"access_count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Company  Company  `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Document Document `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
}

// GetAllModels returns all models for migration
func GetAllModels() []interface{} {
	return []interface{}{
		&Company{},
		&User{},
		&Client{},
		&Plan{},
		&ClientPlan{},
		&DocumentTag{},
		&Document{},
		&DocumentEditHistory{},
		&Invoice{},
		&ClientInvoice{},
		&CustomInvoice{},
		&Dispute{},
		&SharedLink{},
	}
}
