package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/docuflow/docuflow/internal/infrastructure/repositories/postgresql"
	"github.com/docuflow/docuflow/internal/infrastructure/repositories/postgresql/testutil"
)

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := postgresql.NewDocumentRepository(db.DB)
	ctx := context.Background()

	company := db.CreateTestCompany(t)
	scanner := db.CreateTestUser(t, company, models.RoleScanner)
	tag := db.CreateTestTag(t, company)
	document := db.CreateTestDocument(t, company, tag, scanner)

	found, err := repo.GetByID(ctx, document.ID)
	require.NoError(t, err)
	assert.Equal(t, document.Title, found.Title)
	assert.Equal(t, models.StageCreated, found.ProgressNumber)
	assert.False(t, found.IsPublished)
}

func TestDocumentRepository_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := postgresql.NewDocumentRepository(db.DB)
	ctx := context.Background()

	company := db.CreateTestCompany(t)
	scanner := db.CreateTestUser(t, company, models.RoleScanner)
	indexer := db.CreateTestUser(t, company, models.RoleIndexer)
	tag := db.CreateTestTag(t, company)

	assigned := db.CreateTestDocument(t, company, tag, scanner)
	assigned.IndexerPassedID = &indexer.ID
	assigned.PassedTo = &indexer.ID
	require.NoError(t, repo.Update(ctx, assigned))

	db.CreateTestDocument(t, company, tag, scanner)

	t.Run("by indexer", func(t *testing.T) {
		documents, total, err := repo.List(ctx, company.ID, repositories.DocumentFilters{
			IndexerPassedID: &indexer.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, documents, 1)
		assert.Equal(t, assigned.ID, documents[0].ID)
	})

	t.Run("by adder", func(t *testing.T) {
		_, total, err := repo.List(ctx, company.ID, repositories.DocumentFilters{
			AddedByID: &scanner.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("by stage", func(t *testing.T) {
		stage := models.StageCreated
		_, total, err := repo.List(ctx, company.ID, repositories.DocumentFilters{
			Stage: &stage,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		other := db.CreateTestCompany(t)
		_, total, err := repo.List(ctx, other.ID, repositories.DocumentFilters{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestDocumentRepository_AppendComment(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := postgresql.NewDocumentRepository(db.DB)
	ctx := context.Background()

	company := db.CreateTestCompany(t)
	scanner := db.CreateTestUser(t, company, models.RoleScanner)
	tag := db.CreateTestTag(t, company)
	document := db.CreateTestDocument(t, company, tag, scanner)

	comments := models.CommentList{{
		AuthorID:   scanner.ID,
		AuthorName: scanner.Name,
		AuthorRole: scanner.Role,
		Text:       "looks blurry, rescan page 2",
		CreatedAt:  time.Now().UTC(),
	}}

	require.NoError(t, repo.AppendComment(ctx, document.ID, document.Revision, comments))

	updated, err := repo.GetByID(ctx, document.ID)
	require.NoError(t, err)
	assert.Equal(t, document.Revision+1, updated.Revision)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "looks blurry, rescan page 2", updated.Comments[0].Text)

	t.Run("stale revision rejected", func(t *testing.T) {
		err := repo.AppendComment(ctx, document.ID, document.Revision, comments)
		assert.ErrorIs(t, err, repositories.ErrStaleRevision)
	})
}

func TestDocumentRepository_Counts(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := postgresql.NewDocumentRepository(db.DB)
	ctx := context.Background()

	company := db.CreateTestCompany(t)
	scanner := db.CreateTestUser(t, company, models.RoleScanner)
	tag := db.CreateTestTag(t, company)

	db.CreateTestDocument(t, company, tag, scanner)
	published := db.CreateTestDocument(t, company, tag, scanner)
	published.IsPublished = true
	published.ProgressNumber = models.StageReviewed
	published.Progress = models.ProgressComplete
	require.NoError(t, repo.Update(ctx, published))

	total, err := repo.CountByCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	created, err := repo.CountByStage(ctx, company.ID, models.StageCreated)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created)

	publishedCount, err := repo.CountPublished(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), publishedCount)
}
