package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
)

// putOnPlan subscribes a company with usage counters and an anchor far
// enough back that the next generation pass considers it due.
func putOnPlan(t *testing.T, env *testEnv, company *models.Company, plan *models.Plan) {
	t.Helper()
	created := time.Now().UTC().AddDate(0, -2, 0)
	err := env.db.Model(company).Updates(map[string]interface{}{
		"plan_id":              plan.ID,
		"created_at":           created,
		"documents_shared":     2000,
		"documents_downloaded": 500,
		"documents_uploaded":   50,
	}).Error
	require.NoError(t, err)
}

func TestGenerateCompanyInvoices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)

	plan := env.db.CreateTestPlan(t)
	company := env.db.CreateTestCompany(t)
	putOnPlan(t, env, company, plan)

	// A company without a plan is skipped
	env.db.CreateTestCompany(t)

	result, err := env.Invoices.GenerateCompanyInvoices(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "August 2026", result.Period)
	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 1, result.Skipped)

	invoices, err := env.Invoices.ListCompanyInvoices(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	invoice := invoices[0]
	assert.Equal(t, "August 2026", invoice.PeriodLabel)
	assert.True(t, invoice.Value.Equal(decimal.NewFromFloat(121.5)),
		"total: got %s", invoice.Value)
	assert.True(t, invoice.SharedAmount.Equal(decimal.NewFromInt(10)))
	assert.True(t, invoice.DownloadAmount.Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, invoice.UploadAmount.Equal(decimal.NewFromInt(10)))
	assert.False(t, invoice.InvoiceSubmitted)
	assert.Equal(t, now.AddDate(0, 0, 15), invoice.DueDate)

	t.Run("second pass generates nothing", func(t *testing.T) {
		result, err := env.Invoices.GenerateCompanyInvoices(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Generated)

		invoices, err := env.Invoices.ListCompanyInvoices(ctx, company.ID)
		require.NoError(t, err)
		assert.Len(t, invoices, 1)
	})
}

func TestGenerateClientInvoices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)

	company := env.db.CreateTestCompany(t)
	clientPlan := env.db.CreateTestClientPlan(t, company)

	client := env.db.CreateTestClient(t, company)
	created := now.AddDate(0, -2, 0)
	require.NoError(t, env.db.Model(client).Updates(map[string]interface{}{
		"plan_id":              clientPlan.ID,
		"created_at":           created,
		"documents_downloaded": 1000,
	}).Error)

	// Inactive client is skipped even on a plan
	inactive := env.db.CreateTestClient(t, company)
	require.NoError(t, env.db.Model(inactive).Updates(map[string]interface{}{
		"plan_id":    clientPlan.ID,
		"created_at": created,
		"status":     models.StatusInactive,
	}).Error)

	result, err := env.Invoices.GenerateClientInvoices(ctx, company.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 1, result.Skipped)

	invoices, err := env.Invoices.ListClientInvoices(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, client.Email, invoices[0].ClientEmail)
	// 50 monthly + 1000/1000*2 download
	assert.True(t, invoices[0].Value.Equal(decimal.NewFromInt(52)),
		"total: got %s", invoices[0].Value)
}

func TestSubmitCompanyInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)

	plan := env.db.CreateTestPlan(t)
	company := env.db.CreateTestCompany(t)
	putOnPlan(t, env, company, plan)
	owner := env.db.CreateTestUser(t, company, models.RoleOwner)
	admin := env.db.CreateTestUser(t, company, models.RoleAdmin)

	_, err := env.Invoices.GenerateCompanyInvoices(ctx, now)
	require.NoError(t, err)
	invoices, err := env.Invoices.ListCompanyInvoices(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	invoiceID := invoices[0].ID

	t.Run("admin cannot approve before submission", func(t *testing.T) {
		_, err := env.Invoices.Submit(ctx, actorFor(admin), invoiceID)
		assert.ErrorIs(t, err, services.ErrMustBeSubmittedFirst)
	})

	record, err := env.Invoices.Submit(ctx, actorFor(owner), invoiceID)
	require.NoError(t, err)
	assert.True(t, record.Company.InvoiceSubmitted)
	assert.False(t, record.Company.InvoiceSubmittedAdmin)

	t.Run("payer submission resets usage counters", func(t *testing.T) {
		refreshed, err := env.repos.CompanyRepo.GetByID(ctx, company.ID)
		require.NoError(t, err)
		assert.Zero(t, refreshed.DocumentsShared)
		assert.Zero(t, refreshed.DocumentsDownloaded)
		assert.Zero(t, refreshed.DocumentsUploaded)
		require.NotNil(t, refreshed.LastInvoicePaid)
	})

	record, err = env.Invoices.Submit(ctx, actorFor(admin), invoiceID)
	require.NoError(t, err)
	assert.True(t, record.Company.InvoiceSubmittedAdmin)
}

func TestSubmitClientInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)

	company := env.db.CreateTestCompany(t)
	clientPlan := env.db.CreateTestClientPlan(t, company)
	owner := env.db.CreateTestUser(t, company, models.RoleOwner)
	scanner := env.db.CreateTestUser(t, company, models.RoleScanner)

	client := env.db.CreateTestClient(t, company)
	require.NoError(t, env.db.Model(client).Updates(map[string]interface{}{
		"plan_id":          clientPlan.ID,
		"created_at":       now.AddDate(0, -1, 0),
		"documents_shared": 100,
	}).Error)

	_, err := env.Invoices.GenerateClientInvoices(ctx, company.ID, now)
	require.NoError(t, err)
	invoices, err := env.Invoices.ListClientInvoices(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	invoiceID := invoices[0].ID

	t.Run("owner cannot approve before client submits", func(t *testing.T) {
		_, err := env.Invoices.Submit(ctx, actorFor(owner), invoiceID)
		assert.ErrorIs(t, err, services.ErrMustBeSubmittedFirst)
	})

	t.Run("scanner may not touch the handshake", func(t *testing.T) {
		_, err := env.Invoices.Submit(ctx, actorFor(scanner), invoiceID)
		assert.ErrorIs(t, err, services.ErrRoleNotPermitted)
	})

	record, err := env.Invoices.Submit(ctx, clientActor(client), invoiceID)
	require.NoError(t, err)
	assert.True(t, record.Client.InvoiceSubmitted)

	refreshed, err := env.repos.ClientRepo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Zero(t, refreshed.DocumentsShared)

	record, err = env.Invoices.Submit(ctx, actorFor(owner), invoiceID)
	require.NoError(t, err)
	assert.True(t, record.Client.InvoiceSubmittedAdmin)
}

func TestApplyOtherInvoices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)

	plan := env.db.CreateTestPlan(t)
	company := env.db.CreateTestCompany(t)
	putOnPlan(t, env, company, plan)
	owner := env.db.CreateTestUser(t, company, models.RoleOwner)

	_, err := env.Invoices.GenerateCompanyInvoices(ctx, now)
	require.NoError(t, err)
	invoices, err := env.Invoices.ListCompanyInvoices(ctx, company.ID)
	require.NoError(t, err)
	invoiceID := invoices[0].ID

	record, err := env.Invoices.ApplyOtherInvoices(ctx, actorFor(owner), invoiceID, models.LineItemList{
		{Description: "rush processing", Amount: decimal.NewFromInt(20)},
		{Description: "goodwill credit", Amount: decimal.NewFromInt(-5)},
	})
	require.NoError(t, err)
	// 121.5 + 20 - 5
	assert.True(t, record.Company.Value.Equal(decimal.NewFromFloat(136.5)),
		"total: got %s", record.Company.Value)

	t.Run("replacing items backs out the previous adjustment", func(t *testing.T) {
		record, err := env.Invoices.ApplyOtherInvoices(ctx, actorFor(owner), invoiceID, models.LineItemList{
			{Description: "rush processing", Amount: decimal.NewFromInt(10)},
		})
		require.NoError(t, err)
		assert.True(t, record.Company.Value.Equal(decimal.NewFromFloat(131.5)),
			"total: got %s", record.Company.Value)
	})
}

func TestInvoiceTenantScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)

	plan := env.db.CreateTestPlan(t)
	victim := env.db.CreateTestCompany(t)
	putOnPlan(t, env, victim, plan)
	clientPlan := env.db.CreateTestClientPlan(t, victim)
	victimClient := env.db.CreateTestClient(t, victim)
	require.NoError(t, env.db.Model(victimClient).Updates(map[string]interface{}{
		"plan_id":    clientPlan.ID,
		"created_at": now.AddDate(0, -1, 0),
	}).Error)

	intruderCompany := env.db.CreateTestCompany(t)
	intruder := env.db.CreateTestUser(t, intruderCompany, models.RoleScanner)
	intruderOwner := env.db.CreateTestUser(t, intruderCompany, models.RoleOwner)

	_, err := env.Invoices.GenerateCompanyInvoices(ctx, now)
	require.NoError(t, err)
	_, err = env.Invoices.GenerateClientInvoices(ctx, victim.ID, now)
	require.NoError(t, err)

	companyInvoices, err := env.Invoices.ListCompanyInvoices(ctx, victim.ID)
	require.NoError(t, err)
	require.Len(t, companyInvoices, 1)
	clientInvoices, err := env.Invoices.ListClientInvoices(ctx, victim.ID)
	require.NoError(t, err)
	require.Len(t, clientInvoices, 1)

	t.Run("foreign submit rejected", func(t *testing.T) {
		_, err := env.Invoices.Submit(ctx, actorFor(intruder), companyInvoices[0].ID)
		assert.ErrorIs(t, err, services.ErrInvoiceNotFound)

		refreshed, err := env.repos.CompanyRepo.GetByID(ctx, victim.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2000, refreshed.DocumentsShared)
	})

	t.Run("foreign adjustment rejected", func(t *testing.T) {
		_, err := env.Invoices.ApplyOtherInvoices(ctx, actorFor(intruderOwner), companyInvoices[0].ID, models.LineItemList{
			{Description: "bogus", Amount: decimal.NewFromInt(999)},
		})
		assert.ErrorIs(t, err, services.ErrInvoiceNotFound)
	})

	t.Run("client cannot submit a sibling's invoice", func(t *testing.T) {
		otherClient := env.db.CreateTestClient(t, victim)
		_, err := env.Invoices.Submit(ctx, clientActor(otherClient), clientInvoices[0].ID)
		assert.ErrorIs(t, err, services.ErrInvoiceNotFound)
	})

	t.Run("client cannot touch the company invoice", func(t *testing.T) {
		_, err := env.Invoices.Submit(ctx, clientActor(victimClient), companyInvoices[0].ID)
		assert.ErrorIs(t, err, services.ErrInvoiceNotFound)
	})
}

func TestCreateCustomInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	client := env.db.CreateTestClient(t, company)

	invoice, err := env.Invoices.CreateCustomInvoice(ctx, services.CreateCustomInvoiceParams{
		CompanyID:   company.ID,
		ClientID:    &client.ID,
		IsClient:    true,
		Description: "onboarding fee",
		Value:       decimal.NewFromInt(250),
	})
	require.NoError(t, err)
	assert.True(t, invoice.IsClient)
	assert.True(t, invoice.Value.Equal(decimal.NewFromInt(250)))

	t.Run("unknown client rejected", func(t *testing.T) {
		_, err := env.Invoices.CreateCustomInvoice(ctx, services.CreateCustomInvoiceParams{
			CompanyID: company.ID,
			IsClient:  true,
		})
		assert.ErrorIs(t, err, services.ErrClientNotFound)
	})
}

func TestRemindUnpaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)

	plan := env.db.CreateTestPlan(t)
	unpaid := env.db.CreateTestCompany(t)
	putOnPlan(t, env, unpaid, plan)
	paid := env.db.CreateTestCompany(t)
	putOnPlan(t, env, paid, plan)
	owner := env.db.CreateTestUser(t, paid, models.RoleOwner)

	_, err := env.Invoices.GenerateCompanyInvoices(ctx, now)
	require.NoError(t, err)

	paidInvoices, err := env.Invoices.ListCompanyInvoices(ctx, paid.ID)
	require.NoError(t, err)
	require.Len(t, paidInvoices, 1)
	_, err = env.Invoices.Submit(ctx, actorFor(owner), paidInvoices[0].ID)
	require.NoError(t, err)

	sent, failures, err := env.Invoices.RemindUnpaid(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, 1, sent)

	messages := env.email.sent()
	require.Len(t, messages, 1)
	assert.Equal(t, unpaid.ContactEmail, messages[0].To)
	assert.Contains(t, messages[0].Subject, "August 2026")

	t.Run("delivery failures are collected", func(t *testing.T) {
		env.email.fail = true
		sent, failures, err := env.Invoices.RemindUnpaid(ctx, now)
		require.NoError(t, err)
		assert.Zero(t, sent)
		require.Len(t, failures, 1)
		assert.Equal(t, unpaid.ContactEmail, failures[0].Recipient)
		assert.Equal(t, "smtp unavailable", failures[0].Reason)
	})
}

func TestRemindUnpaidCustomInvoices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	client := env.db.CreateTestClient(t, company)

	_, err := env.Invoices.CreateCustomInvoice(ctx, services.CreateCustomInvoiceParams{
		CompanyID:   company.ID,
		Description: "setup fee",
		Value:       decimal.NewFromInt(75),
	})
	require.NoError(t, err)
	_, err = env.Invoices.CreateCustomInvoice(ctx, services.CreateCustomInvoiceParams{
		CompanyID:   company.ID,
		ClientID:    &client.ID,
		IsClient:    true,
		Description: "rescan fee",
		Value:       decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	// Custom invoices stamp the current period at creation time
	sent, failures, err := env.Invoices.RemindUnpaid(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, 2, sent)

	recipients := make([]string, 0, 2)
	for _, msg := range env.email.sent() {
		recipients = append(recipients, msg.To)
	}
	assert.Contains(t, recipients, company.ContactEmail)
	assert.Contains(t, recipients, client.Email)
}
