package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
)

func TestDocumentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	scanner := env.db.CreateTestUser(t, company, models.RoleScanner)
	indexer := env.db.CreateTestUser(t, company, models.RoleIndexer)
	qa := env.db.CreateTestUser(t, company, models.RoleQA)
	tag := env.db.CreateTestTag(t, company)

	document, err := env.Docs.Create(ctx, actorFor(scanner), services.CreateDocumentParams{
		TagID: tag.ID,
		Title: "contract-0042.pdf",
		URL:   "/uploads/contract-0042.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StageCreated, document.ProgressNumber)
	assert.False(t, document.IsPublished)

	// Properties cloned from the tag schema, values empty, order kept
	require.Len(t, document.Properties, 2)
	assert.Equal(t, "invoice_number", document.Properties[0].Key)
	assert.Empty(t, document.Properties[0].Value)

	// Upload counter bumped on the company
	refreshed, err := env.repos.CompanyRepo.GetByID(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), refreshed.DocumentsUploaded)

	// Scanner hands to the indexer, stage does not advance yet
	document, err = env.Docs.Assign(ctx, actorFor(scanner), document.ID, indexer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageCreated, document.ProgressNumber)
	require.NotNil(t, document.IndexerPassedID)
	assert.Equal(t, indexer.ID, *document.IndexerPassedID)
	require.NotNil(t, document.PassedTo)
	assert.Equal(t, indexer.ID, *document.PassedTo)

	// Indexer hands to QA, stage advances
	document, err = env.Docs.Assign(ctx, actorFor(indexer), document.ID, qa.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageIndexed, document.ProgressNumber)
	require.NotNil(t, document.QAPassedID)
	assert.Equal(t, qa.ID, *document.QAPassedID)

	// QA saves a draft, then publishes
	document, err = env.Docs.SaveDraft(ctx, actorFor(qa), document.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageReviewed, document.ProgressNumber)
	assert.False(t, document.IsPublished)

	document, err = env.Docs.Publish(ctx, actorFor(qa), document.ID)
	require.NoError(t, err)
	assert.True(t, document.IsPublished)
	assert.Equal(t, models.ProgressComplete, document.Progress)

	// Publishing again is a no-op
	again, err := env.Docs.Publish(ctx, actorFor(qa), document.ID)
	require.NoError(t, err)
	assert.True(t, again.IsPublished)

	// Every step left an audit trail
	history, err := env.Docs.History(ctx, actorFor(qa), document.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(history), 5)
}

func TestReassignKeepsLaterStage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	scanner := env.db.CreateTestUser(t, company, models.RoleScanner)
	indexer := env.db.CreateTestUser(t, company, models.RoleIndexer)
	qaA := env.db.CreateTestUser(t, company, models.RoleQA)
	qaB := env.db.CreateTestUser(t, company, models.RoleQA)
	tag := env.db.CreateTestTag(t, company)
	document := env.db.CreateTestDocument(t, company, tag, scanner)

	_, err := env.Docs.Assign(ctx, actorFor(scanner), document.ID, indexer.ID)
	require.NoError(t, err)
	_, err = env.Docs.Assign(ctx, actorFor(indexer), document.ID, qaA.ID)
	require.NoError(t, err)
	_, err = env.Docs.SaveDraft(ctx, actorFor(qaA), document.ID)
	require.NoError(t, err)

	// Handing the reviewed document to a different QA does not roll the
	// stage back to indexed
	updated, err := env.Docs.Assign(ctx, actorFor(indexer), document.ID, qaB.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageReviewed, updated.ProgressNumber)
	require.NotNil(t, updated.QAPassedID)
	assert.Equal(t, qaB.ID, *updated.QAPassedID)
}

func TestDocumentAssignGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	scanner := env.db.CreateTestUser(t, company, models.RoleScanner)
	indexer := env.db.CreateTestUser(t, company, models.RoleIndexer)
	qa := env.db.CreateTestUser(t, company, models.RoleQA)
	tag := env.db.CreateTestTag(t, company)
	document := env.db.CreateTestDocument(t, company, tag, scanner)

	t.Run("scanner cannot skip to qa", func(t *testing.T) {
		_, err := env.Docs.Assign(ctx, actorFor(scanner), document.ID, qa.ID)
		assert.ErrorIs(t, err, services.ErrInvalidAssignee)
	})

	t.Run("qa cannot pass on", func(t *testing.T) {
		_, err := env.Docs.Assign(ctx, actorFor(qa), document.ID, indexer.ID)
		assert.ErrorIs(t, err, services.ErrRoleNotPermitted)
	})

	t.Run("assignee from another tenant rejected", func(t *testing.T) {
		other := env.db.CreateTestCompany(t)
		foreignIndexer := env.db.CreateTestUser(t, other, models.RoleIndexer)
		_, err := env.Docs.Assign(ctx, actorFor(scanner), document.ID, foreignIndexer.ID)
		assert.ErrorIs(t, err, services.ErrInvalidAssignee)
	})

	t.Run("document from another tenant invisible", func(t *testing.T) {
		other := env.db.CreateTestCompany(t)
		outsider := env.db.CreateTestUser(t, other, models.RoleScanner)
		_, err := env.Docs.Get(ctx, actorFor(outsider), document.ID)
		assert.ErrorIs(t, err, services.ErrDocumentNotFound)
	})

	t.Run("publish requires qa", func(t *testing.T) {
		_, err := env.Docs.Publish(ctx, actorFor(scanner), document.ID)
		assert.ErrorIs(t, err, services.ErrRoleNotPermitted)
	})
}

func TestDocumentAddComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	scanner := env.db.CreateTestUser(t, company, models.RoleScanner)
	tag := env.db.CreateTestTag(t, company)
	document := env.db.CreateTestDocument(t, company, tag, scanner)

	updated, err := env.Docs.AddComment(ctx, actorFor(scanner), document.ID, "page 3 is missing")
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "page 3 is missing", updated.Comments[0].Text)
	assert.Equal(t, scanner.Name, updated.Comments[0].AuthorName)
	assert.Equal(t, scanner.ID, updated.Comments[0].AuthorID)

	// Appends survive a concurrent bump because the service re-reads
	updated, err = env.Docs.AddComment(ctx, actorFor(scanner), document.ID, "rescanned")
	require.NoError(t, err)
	require.Len(t, updated.Comments, 2)
	assert.Equal(t, "rescanned", updated.Comments[1].Text)

	_, err = env.Docs.AddComment(ctx, actorFor(scanner), document.ID, "")
	assert.ErrorIs(t, err, services.ErrEmptyComment)
}

func TestDocumentListRoleScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	owner := env.db.CreateTestUser(t, company, models.RoleOwner)
	scanner := env.db.CreateTestUser(t, company, models.RoleScanner)
	otherScanner := env.db.CreateTestUser(t, company, models.RoleScanner)
	indexer := env.db.CreateTestUser(t, company, models.RoleIndexer)
	tag := env.db.CreateTestTag(t, company)

	mine := env.db.CreateTestDocument(t, company, tag, scanner)
	env.db.CreateTestDocument(t, company, tag, otherScanner)

	_, err := env.Docs.Assign(ctx, actorFor(scanner), mine.ID, indexer.ID)
	require.NoError(t, err)

	t.Run("owner sees everything", func(t *testing.T) {
		_, total, err := env.Docs.List(ctx, actorFor(owner), repositories.DocumentFilters{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("scanner sees own uploads", func(t *testing.T) {
		views, total, err := env.Docs.List(ctx, actorFor(scanner), repositories.DocumentFilters{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, views, 1)
		assert.Equal(t, mine.ID, views[0].ID)
	})

	t.Run("indexer sees assigned work", func(t *testing.T) {
		views, total, err := env.Docs.List(ctx, actorFor(indexer), repositories.DocumentFilters{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, views, 1)
		assert.Equal(t, mine.ID, views[0].ID)
		assert.True(t, views[0].ShowMore)
	})
}

func TestDocumentAssignees(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	scanner := env.db.CreateTestUser(t, company, models.RoleScanner)
	indexerA := env.db.CreateTestUser(t, company, models.RoleIndexer)
	indexerB := env.db.CreateTestUser(t, company, models.RoleIndexer)
	qa := env.db.CreateTestUser(t, company, models.RoleQA)

	assignees, err := env.Docs.Assignees(ctx, actorFor(scanner))
	require.NoError(t, err)
	require.Len(t, assignees, 2)
	ids := []interface{}{assignees[0].ID, assignees[1].ID}
	assert.Contains(t, ids, indexerA.ID)
	assert.Contains(t, ids, indexerB.ID)

	assignees, err = env.Docs.Assignees(ctx, actorFor(qa))
	require.NoError(t, err)
	assert.Empty(t, assignees)
}
