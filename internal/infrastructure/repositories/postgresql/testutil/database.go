package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docuflow/docuflow/internal/infrastructure/database"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestDB wraps the database for testing
type TestDB struct {
	*database.DB
}

// NewTestDB creates a new test database connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Use DATABASE_URL_TEST if available (for Docker), otherwise SQLite
	databaseURL := os.Getenv("DATABASE_URL_TEST")
	if databaseURL == "" {
		databaseURL = "file::memory:?cache=shared"
	}

	db, err := database.New(databaseURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDB{DB: db}
}

// Cleanup closes the test database
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("Failed to close test database: %v", err)
	}
}

// CreateTestCompany creates an active company on no plan.
func (db *TestDB) CreateTestCompany(t *testing.T) *models.Company {
	t.Helper()

	company := &models.Company{
		ID:           uuid.New(),
		Name:         fmt.Sprintf("Test Company %s", uuid.New().String()[:8]),
		ContactEmail: fmt.Sprintf("company-%s@example.com", uuid.New().String()[:8]),
		Status:       models.StatusActive,
	}

	if err := db.Create(company).Error; err != nil {
		t.Fatalf("Failed to create test company: %v", err)
	}

	return company
}

// CreateTestUser creates an active employee with the given role.
func (db *TestDB) CreateTestUser(t *testing.T, company *models.Company, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		CompanyID:    company.ID,
		Name:         fmt.Sprintf("Test %s", role),
		Email:        fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8]),
		PasswordHash: "hashedpassword",
		Role:         role,
		Status:       models.StatusActive,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestClient creates an active client for the company.
func (db *TestDB) CreateTestClient(t *testing.T, company *models.Company) *models.Client {
	t.Helper()

	client := &models.Client{
		ID:           uuid.New(),
		CompanyID:    company.ID,
		Name:         fmt.Sprintf("Test Client %s", uuid.New().String()[:8]),
		Email:        fmt.Sprintf("client-%s@example.com", uuid.New().String()[:8]),
		PasswordHash: "hashedpassword",
		Status:       models.StatusActive,
	}

	if err := db.Create(client).Error; err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}

	return client
}

// CreateTestPlan creates a company plan with simple round-number rates.
func (db *TestDB) CreateTestPlan(t *testing.T) *models.Plan {
	t.Helper()

	plan := &models.Plan{
		ID:    uuid.New(),
		Title: fmt.Sprintf("Test Plan %s", uuid.New().String()[:8]),
		PlanRates: models.PlanRates{
			MonthlyPrice:             decimal.NewFromInt(100),
			UploadPricePerTen:        decimal.NewFromInt(2),
			DownloadPricePerThousand: decimal.NewFromInt(3),
			SharePricePerThousand:    decimal.NewFromInt(5),
			UploadCount:              10,
			DownloadCount:            1000,
			ShareCount:               1000,
			BillingDuration:          1,
		},
		AllowSharing:  true,
		AllowDisputes: true,
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	return plan
}

// CreateTestClientPlan creates a client plan scoped to the company.
func (db *TestDB) CreateTestClientPlan(t *testing.T, company *models.Company) *models.ClientPlan {
	t.Helper()

	plan := &models.ClientPlan{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Title:     fmt.Sprintf("Test Client Plan %s", uuid.New().String()[:8]),
		PlanRates: models.PlanRates{
			MonthlyPrice:             decimal.NewFromInt(50),
			UploadPricePerTen:        decimal.NewFromInt(1),
			DownloadPricePerThousand: decimal.NewFromInt(2),
			SharePricePerThousand:    decimal.NewFromInt(4),
			UploadCount:              10,
			DownloadCount:            1000,
			ShareCount:               1000,
			BillingDuration:          1,
		},
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test client plan: %v", err)
	}

	return plan
}

// CreateTestTag creates a document tag with a two-field property schema.
func (db *TestDB) CreateTestTag(t *testing.T, company *models.Company) *models.DocumentTag {
	t.Helper()

	tag := &models.DocumentTag{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Title:     fmt.Sprintf("Test Tag %s", uuid.New().String()[:8]),
		Properties: models.PropertySchema{
			{Key: "invoice_number", Type: "string"},
			{Key: "amount", Type: "number"},
		},
	}

	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("Failed to create test tag: %v", err)
	}

	return tag
}

// CreateTestDocument creates a freshly scanned document at stage one.
func (db *TestDB) CreateTestDocument(t *testing.T, company *models.Company, tag *models.DocumentTag, addedBy *models.User) *models.Document {
	t.Helper()

	document := &models.Document{
		ID:             uuid.New(),
		CompanyID:      company.ID,
		TagID:          tag.ID,
		Title:          fmt.Sprintf("test-doc-%s.pdf", uuid.New().String()[:8]),
		URL:            "/test/path/document.pdf",
		FileID:         fmt.Sprintf("file-%s", uuid.New().String()[:16]),
		Progress:       models.ProgressIncomplete,
		ProgressNumber: models.StageCreated,
		AddedByID:      addedBy.ID,
		AddedByRole:    addedBy.Role,
		CreatedAt:      time.Now().UTC(),
	}

	if err := db.Create(document).Error; err != nil {
		t.Fatalf("Failed to create test document: %v", err)
	}

	return document
}
