package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/docuflow/docuflow/internal/infrastructure/repositories/postgresql"
	"github.com/docuflow/docuflow/internal/infrastructure/repositories/postgresql/testutil"
)

func newCompanyInvoice(company *models.Company, period string) *models.Invoice {
	return &models.Invoice{
		CompanyID:   company.ID,
		PeriodLabel: period,
		InvoiceBreakdown: models.InvoiceBreakdown{
			Value:         decimal.NewFromInt(100),
			MonthlyAmount: decimal.NewFromInt(100),
		},
		DueDate: time.Now().UTC().AddDate(0, 0, 15),
	}
}

func TestInvoiceRepository_CreateDuplicatePeriod(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := postgresql.NewInvoiceRepository(db.DB)
	ctx := context.Background()

	company := db.CreateTestCompany(t)

	require.NoError(t, repo.Create(ctx, newCompanyInvoice(company, "August 2026")))

	err := repo.Create(ctx, newCompanyInvoice(company, "August 2026"))
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	// A different period or company is fine
	require.NoError(t, repo.Create(ctx, newCompanyInvoice(company, "September 2026")))
	other := db.CreateTestCompany(t)
	require.NoError(t, repo.Create(ctx, newCompanyInvoice(other, "August 2026")))
}

func TestInvoiceRepository_ExistsForPeriod(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := postgresql.NewInvoiceRepository(db.DB)
	ctx := context.Background()

	company := db.CreateTestCompany(t)

	exists, err := repo.ExistsForPeriod(ctx, company.ID, "August 2026")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, newCompanyInvoice(company, "August 2026")))

	exists, err = repo.ExistsForPeriod(ctx, company.ID, "August 2026")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInvoiceRepository_ListUnpaidForPeriod(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := postgresql.NewInvoiceRepository(db.DB)
	ctx := context.Background()

	unpaidCompany := db.CreateTestCompany(t)
	paidCompany := db.CreateTestCompany(t)

	require.NoError(t, repo.Create(ctx, newCompanyInvoice(unpaidCompany, "August 2026")))

	paid := newCompanyInvoice(paidCompany, "August 2026")
	paid.InvoiceSubmitted = true
	require.NoError(t, repo.Create(ctx, paid))

	unpaid, err := repo.ListUnpaidForPeriod(ctx, "August 2026")
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, unpaidCompany.ID, unpaid[0].CompanyID)
}

func TestInvoiceRepository_FindAnyByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := postgresql.NewInvoiceRepository(db.DB)
	ctx := context.Background()

	company := db.CreateTestCompany(t)
	client := db.CreateTestClient(t, company)

	companyInvoice := newCompanyInvoice(company, "August 2026")
	require.NoError(t, repo.Create(ctx, companyInvoice))

	clientInvoice := &models.ClientInvoice{
		CompanyID:   company.ID,
		ClientID:    client.ID,
		ClientEmail: client.Email,
		PeriodLabel: "August 2026",
		InvoiceBreakdown: models.InvoiceBreakdown{
			Value:         decimal.NewFromInt(50),
			MonthlyAmount: decimal.NewFromInt(50),
		},
		DueDate: time.Now().UTC().AddDate(0, 0, 15),
	}
	require.NoError(t, repo.CreateClientInvoice(ctx, clientInvoice))

	customInvoice := &models.CustomInvoice{
		CompanyID:   company.ID,
		Description: "onboarding fee",
		Value:       decimal.NewFromInt(25),
		DueDate:     time.Now().UTC().AddDate(0, 0, 15),
	}
	require.NoError(t, repo.CreateCustomInvoice(ctx, customInvoice))

	record, err := repo.FindAnyByID(ctx, companyInvoice.ID)
	require.NoError(t, err)
	assert.Equal(t, repositories.KindCompanyInvoice, record.Kind)
	require.NotNil(t, record.Company)

	record, err = repo.FindAnyByID(ctx, clientInvoice.ID)
	require.NoError(t, err)
	assert.Equal(t, repositories.KindClientInvoice, record.Kind)
	require.NotNil(t, record.Client)
	assert.Equal(t, client.Email, record.Client.ClientEmail)

	record, err = repo.FindAnyByID(ctx, customInvoice.ID)
	require.NoError(t, err)
	assert.Equal(t, repositories.KindCustomInvoice, record.Kind)
	require.NotNil(t, record.Custom)
}

func TestInvoiceRepository_ClientInvoiceDuplicatePeriod(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := postgresql.NewInvoiceRepository(db.DB)
	ctx := context.Background()

	company := db.CreateTestCompany(t)
	client := db.CreateTestClient(t, company)

	invoice := func() *models.ClientInvoice {
		return &models.ClientInvoice{
			CompanyID:   company.ID,
			ClientID:    client.ID,
			ClientEmail: client.Email,
			PeriodLabel: "August 2026",
			DueDate:     time.Now().UTC().AddDate(0, 0, 15),
		}
	}

	require.NoError(t, repo.CreateClientInvoice(ctx, invoice()))
	assert.ErrorIs(t, repo.CreateClientInvoice(ctx, invoice()), repositories.ErrDuplicate)
}
