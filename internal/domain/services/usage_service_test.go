package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
)

func TestRecordUploadRouting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	scanner := env.db.CreateTestUser(t, company, models.RoleScanner)
	client := env.db.CreateTestClient(t, company)

	require.NoError(t, env.Usage.RecordUpload(ctx, actorFor(scanner)))
	require.NoError(t, env.Usage.RecordUpload(ctx, clientActor(client)))

	refreshedCompany, err := env.repos.CompanyRepo.GetByID(ctx, company.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, refreshedCompany.DocumentsUploaded)

	refreshedClient, err := env.repos.ClientRepo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, refreshedClient.DocumentsUploaded)
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	scanner := env.db.CreateTestUser(t, company, models.RoleScanner)
	env.db.CreateTestUser(t, company, models.RoleIndexer)
	env.db.CreateTestClient(t, company)
	tag := env.db.CreateTestTag(t, company)
	env.db.CreateTestDocument(t, company, tag, scanner)
	env.db.CreateTestDocument(t, company, tag, scanner)

	require.NoError(t, env.Usage.RecordShare(ctx, actorFor(scanner)))

	stats, err := env.Usage.DashboardStats(ctx, company.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalDocuments)
	assert.EqualValues(t, 2, stats.DocumentsCreated)
	assert.EqualValues(t, 0, stats.DocumentsPublished)
	assert.EqualValues(t, 1, stats.DocumentsShared)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalClients)

	t.Run("served from cache on repeat", func(t *testing.T) {
		env.db.CreateTestDocument(t, company, tag, scanner)
		cached, err := env.Usage.DashboardStats(ctx, company.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, cached.TotalDocuments)
	})
}
