package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Authentication DTOs
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	PersonID  string    `json:"person_id"`
	CompanyID string    `json:"company_id"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
}

// Tenant DTOs
type SignupRequest struct {
	CompanyName   string `json:"company_name" binding:"required,max=255"`
	ContactEmail  string `json:"contact_email" binding:"required,email"`
	ContactPhone  string `json:"contact_phone" binding:"omitempty,max=50"`
	PlanID        string `json:"plan_id" binding:"omitempty,uuid"`
	OwnerName     string `json:"owner_name" binding:"required,max=255"`
	OwnerEmail    string `json:"owner_email" binding:"required,email"`
	OwnerPassword string `json:"owner_password" binding:"required,min=8"`
}

// User DTOs
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Name   string `json:"name" binding:"omitempty,max=255"`
	Email  string `json:"email" binding:"omitempty,email"`
	Role   string `json:"role" binding:"omitempty"`
	Status string `json:"status" binding:"omitempty,oneof=active inactive"`
}

type CreateClientRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	PlanID   string `json:"plan_id" binding:"omitempty,uuid"`
}

type UpdateClientRequest struct {
	Name   string `json:"name" binding:"omitempty,max=255"`
	Email  string `json:"email" binding:"omitempty,email"`
	PlanID string `json:"plan_id" binding:"omitempty,uuid"`
	Status string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// Plan DTOs
type PlanRatesRequest struct {
	MonthlyPrice             decimal.Decimal `json:"monthly_price"`
	UploadPricePerTen        decimal.Decimal `json:"upload_price_per_ten"`
	DownloadPricePerThousand decimal.Decimal `json:"download_price_per_thousand"`
	SharePricePerThousand    decimal.Decimal `json:"share_price_per_thousand"`
	UploadCount              int64           `json:"upload_count"`
	DownloadCount            int64           `json:"download_count"`
	ShareCount               int64           `json:"share_count"`
	BillingDuration          int             `json:"billing_duration"`
}

type CreatePlanRequest struct {
	Title string `json:"title" binding:"required,max=255"`
	PlanRatesRequest
	AllowSharing  *bool `json:"allow_sharing"`
	AllowDisputes *bool `json:"allow_disputes"`
}

type CreateClientPlanRequest struct {
	Title string `json:"title" binding:"required,max=255"`
	PlanRatesRequest
}

// Tag DTOs
type PropertyFieldRequest struct {
	Key  string `json:"key" binding:"required"`
	Type string `json:"type" binding:"required"`
}

type CreateTagRequest struct {
	Title      string                 `json:"title" binding:"required,max=255"`
	Properties []PropertyFieldRequest `json:"properties"`
}

// Document DTOs
type CreateDocumentRequest struct {
	TagID  string `json:"tag_id" binding:"required,uuid"`
	Title  string `json:"title" binding:"required,max=255"`
	URL    string `json:"url" binding:"omitempty,max=500"`
	FileID string `json:"file_id" binding:"omitempty,max=255"`
}

type AssignRequest struct {
	DocumentID string `json:"document_id" binding:"required,uuid"`
	AssigneeID string `json:"assignee_id" binding:"required,uuid"`
}

type StageRequest struct {
	DocumentID string `json:"document_id" binding:"required,uuid"`
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Invoice DTOs
type LineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

type OtherInvoicesRequest struct {
	Items []LineItemRequest `json:"items" binding:"required"`
}

type CreateCustomInvoiceRequest struct {
	ClientID    string          `json:"client_id" binding:"omitempty,uuid"`
	IsClient    bool            `json:"is_client"`
	Description string          `json:"description" binding:"required"`
	Value       decimal.Decimal `json:"value"`
}

// Dispute DTOs
type RaiseDisputeRequest struct {
	DocumentID  string `json:"document_id" binding:"required,uuid"`
	Description string `json:"description" binding:"required"`
}

// Sharing DTOs
type CreateShareRequest struct {
	DocumentID string `json:"document_id" binding:"required,uuid"`
	Password   string `json:"password" binding:"required,min=4"`
}

type AccessShareRequest struct {
	Password string `json:"password" binding:"required"`
}

// Shared response envelopes
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
}
