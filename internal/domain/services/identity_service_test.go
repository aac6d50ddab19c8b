package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
)

func setPassword(t *testing.T, env *testEnv, record interface{}, password string) {
	t.Helper()
	hash, err := services.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(record).Update("password_hash", hash).Error)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	user := env.db.CreateTestUser(t, company, models.RoleManager)
	setPassword(t, env, user, "manager-pass")
	client := env.db.CreateTestClient(t, company)
	setPassword(t, env, client, "client-pass")

	t.Run("employee", func(t *testing.T) {
		result, err := env.Identity.Login(ctx, user.Email, "manager-pass")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, user.ID, result.PersonID)
		assert.Equal(t, company.ID, result.CompanyID)
		assert.Equal(t, models.RoleManager, result.Role)
	})

	t.Run("client fallback", func(t *testing.T) {
		result, err := env.Identity.Login(ctx, client.Email, "client-pass")
		require.NoError(t, err)
		assert.Equal(t, client.ID, result.PersonID)
		assert.Equal(t, models.RoleClient, result.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.Identity.Login(ctx, user.Email, "nope")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.Identity.Login(ctx, "nobody@example.com", "manager-pass")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		suspended := env.db.CreateTestUser(t, company, models.RoleScanner)
		setPassword(t, env, suspended, "scanner-pass")
		require.NoError(t, env.db.Model(suspended).Update("status", models.StatusInactive).Error)

		_, err := env.Identity.Login(ctx, suspended.Email, "scanner-pass")
		assert.ErrorIs(t, err, services.ErrAccountInactive)
	})

	t.Run("inactive company", func(t *testing.T) {
		dormant := env.db.CreateTestCompany(t)
		owner := env.db.CreateTestUser(t, dormant, models.RoleOwner)
		setPassword(t, env, owner, "owner-pass")
		require.NoError(t, env.db.Model(dormant).Update("status", models.StatusInactive).Error)

		_, err := env.Identity.Login(ctx, owner.Email, "owner-pass")
		assert.ErrorIs(t, err, services.ErrCompanyInactive)
	})
}

func TestLoginSharedEmailPrefersEmployee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	user := env.db.CreateTestUser(t, company, models.RoleIndexer)
	setPassword(t, env, user, "shared-pass")
	client := env.db.CreateTestClient(t, company)
	require.NoError(t, env.db.Model(client).Update("email", user.Email).Error)
	setPassword(t, env, client, "shared-pass")

	result, err := env.Identity.Login(ctx, user.Email, "shared-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.PersonID)
	assert.Equal(t, models.RoleIndexer, result.Role)
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	user := env.db.CreateTestUser(t, company, models.RoleQA)
	setPassword(t, env, user, "qa-pass")

	result, err := env.Identity.Login(ctx, user.Email, "qa-pass")
	require.NoError(t, err)

	actor, err := env.Identity.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, company.ID, actor.CompanyID)
	assert.Equal(t, models.RoleQA, actor.Role)
	assert.Equal(t, user.Name, actor.Name)

	t.Run("garbage token", func(t *testing.T) {
		_, err := env.Identity.Verify("not-a-token")
		assert.ErrorIs(t, err, services.ErrInvalidSession)
	})
}
