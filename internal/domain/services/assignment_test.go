package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
)

func TestNextRole(t *testing.T) {
	tests := []struct {
		actorRole models.Role
		nextRole  models.Role
		ok        bool
	}{
		{models.RoleScanner, models.RoleIndexer, true},
		{models.RoleClient, models.RoleIndexer, true},
		{models.RoleOwner, models.RoleIndexer, true},
		{models.RoleManager, models.RoleIndexer, true},
		{models.RoleIndexer, models.RoleQA, true},
		{models.RoleQA, "", false},
		{models.RoleAdmin, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.actorRole), func(t *testing.T) {
			next, ok := NextRole(tt.actorRole)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.nextRole, next)
		})
	}
}

func TestComputeShowMore(t *testing.T) {
	author := uuid.New()
	indexer := uuid.New()
	qa := uuid.New()
	stranger := uuid.New()

	unassigned := &models.Document{AddedByID: author, AddedByRole: models.RoleScanner}

	t.Run("author sees menu while unassigned", func(t *testing.T) {
		assert.True(t, ComputeShowMore(unassigned, Actor{ID: author, Role: models.RoleScanner}))
	})

	t.Run("manager sees menu while unassigned", func(t *testing.T) {
		assert.True(t, ComputeShowMore(unassigned, Actor{ID: stranger, Role: models.RoleManager}))
	})

	t.Run("stranger never sees menu", func(t *testing.T) {
		assert.False(t, ComputeShowMore(unassigned, Actor{ID: stranger, Role: models.RoleScanner}))
	})

	assigned := &models.Document{
		AddedByID:       author,
		AddedByRole:     models.RoleScanner,
		IndexerPassedID: &indexer,
		PassedTo:        &indexer,
	}

	t.Run("author loses menu once assigned", func(t *testing.T) {
		assert.False(t, ComputeShowMore(assigned, Actor{ID: author, Role: models.RoleScanner}))
	})

	t.Run("current handler sees menu", func(t *testing.T) {
		assert.True(t, ComputeShowMore(assigned, Actor{ID: indexer, Role: models.RoleIndexer}))
	})

	passedOn := &models.Document{
		AddedByID:       author,
		AddedByRole:     models.RoleScanner,
		IndexerPassedID: &indexer,
		QAPassedID:      &qa,
		PassedTo:        &qa,
	}

	t.Run("previous handler loses menu after passing on", func(t *testing.T) {
		assert.False(t, ComputeShowMore(passedOn, Actor{ID: indexer, Role: models.RoleIndexer}))
	})

	t.Run("qa keeps menu until publication", func(t *testing.T) {
		assert.True(t, ComputeShowMore(passedOn, Actor{ID: qa, Role: models.RoleQA}))

		published := *passedOn
		published.IsPublished = true
		assert.False(t, ComputeShowMore(&published, Actor{ID: qa, Role: models.RoleQA}))
	})
}
