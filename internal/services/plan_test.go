package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/logging"
	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupPlan(t *testing.T) (*PlanService, *fakeActor) {
	t.Helper()

	db, err := kvstore.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	actor := &fakeActor{user: &models.PublicUser{ID: "u1"}}
	return NewPlanService(kvstore.NewSQLiteStore(db), actor, logging.NopLogger{}), actor
}

func TestPlan_SetAndGet(t *testing.T) {
	plans, _ := setupPlan(t)
	ctx := context.Background()

	require.NoError(t, plans.Set(ctx, models.Plan{MonthlyBudget: 1200, SavingsGoal: 300}))

	plan, err := plans.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, plan.MonthlyBudget)
	assert.Equal(t, 300.0, plan.SavingsGoal)
}

func TestPlan_DefaultIsZero(t *testing.T) {
	plans, _ := setupPlan(t)

	plan, err := plans.Get(context.Background())
	require.NoError(t, err)
	assert.Zero(t, plan.MonthlyBudget)
	assert.Zero(t, plan.SavingsGoal)
}

func TestPlan_NegativeValuesRejected(t *testing.T) {
	plans, _ := setupPlan(t)

	err := plans.Set(context.Background(), models.Plan{MonthlyBudget: -1})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestPlan_RequiresAuth(t *testing.T) {
	plans, actor := setupPlan(t)
	actor.user = nil
	ctx := context.Background()

	require.ErrorIs(t, plans.Set(ctx, models.Plan{}), common.ErrNotAuthenticated)

	_, err := plans.Get(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestPlan_PerUser(t *testing.T) {
	plans, actor := setupPlan(t)
	ctx := context.Background()

	require.NoError(t, plans.Set(ctx, models.Plan{MonthlyBudget: 1000}))

	actor.user = &models.PublicUser{ID: "u2"}
	plan, err := plans.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, plan.MonthlyBudget)
}
