package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	plan := env.db.CreateTestPlan(t)

	company, owner, err := env.Tenant.Signup(ctx, services.SignupParams{
		CompanyName:   "Acme Records",
		ContactEmail:  "billing@acme-records.example.com",
		ContactPhone:  "+1-555-0100",
		PlanID:        &plan.ID,
		OwnerName:     "Pat Doe",
		OwnerEmail:    "pat@acme-records.example.com",
		OwnerPassword: "owner-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, company.Status)
	require.NotNil(t, company.PlanID)
	assert.Equal(t, plan.ID, *company.PlanID)
	assert.Equal(t, models.RoleOwner, owner.Role)
	assert.Equal(t, company.ID, owner.CompanyID)
	assert.NotEqual(t, "owner-pass", owner.PasswordHash)

	messages := env.email.sent()
	require.Len(t, messages, 1)
	assert.Equal(t, "billing@acme-records.example.com", messages[0].To)

	t.Run("owner can log in immediately", func(t *testing.T) {
		result, err := env.Identity.Login(ctx, "pat@acme-records.example.com", "owner-pass")
		require.NoError(t, err)
		assert.Equal(t, owner.ID, result.PersonID)
	})

	t.Run("duplicate contact email", func(t *testing.T) {
		_, _, err := env.Tenant.Signup(ctx, services.SignupParams{
			CompanyName:   "Acme Clone",
			ContactEmail:  "billing@acme-records.example.com",
			OwnerName:     "Sam Doe",
			OwnerEmail:    "sam@acme-clone.example.com",
			OwnerPassword: "clone-pass",
		})
		assert.ErrorIs(t, err, services.ErrCompanyEmailTaken)
	})

	t.Run("unknown plan", func(t *testing.T) {
		badPlan := plan.ID
		badPlan[0] ^= 0xff
		_, _, err := env.Tenant.Signup(ctx, services.SignupParams{
			CompanyName:   "No Plan Inc",
			ContactEmail:  "billing@no-plan.example.com",
			PlanID:        &badPlan,
			OwnerName:     "Lee Doe",
			OwnerEmail:    "lee@no-plan.example.com",
			OwnerPassword: "lee-pass",
		})
		assert.ErrorIs(t, err, services.ErrPlanNotFound)
	})
}

func TestDeletePlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	plan := env.db.CreateTestPlan(t)
	company := env.db.CreateTestCompany(t)
	require.NoError(t, env.db.Model(company).Update("plan_id", plan.ID).Error)

	err := env.Tenant.DeletePlan(ctx, plan.ID)
	require.ErrorIs(t, err, services.ErrPlanInUse)

	var inUse *services.PlanInUseError
	require.ErrorAs(t, err, &inUse)
	require.Len(t, inUse.Companies, 1)
	assert.Equal(t, company.ID, inUse.Companies[0].ID)

	require.NoError(t, env.db.Model(company).Update("plan_id", nil).Error)
	require.NoError(t, env.Tenant.DeletePlan(ctx, plan.ID))

	t.Run("already deleted", func(t *testing.T) {
		err := env.Tenant.DeletePlan(ctx, plan.ID)
		assert.ErrorIs(t, err, services.ErrPlanNotFound)
	})
}

func TestDeleteClientPlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company := env.db.CreateTestCompany(t)
	plan := env.db.CreateTestClientPlan(t, company)
	client := env.db.CreateTestClient(t, company)
	require.NoError(t, env.db.Model(client).Update("plan_id", plan.ID).Error)

	err := env.Tenant.DeleteClientPlan(ctx, plan.ID)
	require.ErrorIs(t, err, services.ErrPlanInUse)

	var inUse *services.PlanInUseError
	require.ErrorAs(t, err, &inUse)
	require.Len(t, inUse.Clients, 1)
	assert.Equal(t, client.ID, inUse.Clients[0].ID)

	require.NoError(t, env.db.Model(client).Update("plan_id", nil).Error)
	require.NoError(t, env.Tenant.DeleteClientPlan(ctx, plan.ID))
}
