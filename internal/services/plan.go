package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/logging"
	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
	"github.com/go-playground/validator/v10"
)

// PlanService stores each user's monthly budget and savings goal.
type PlanService struct {
	store    kvstore.Store
	actor    actorProvider
	log      logging.Logger
	validate *validator.Validate
}

func NewPlanService(store kvstore.Store, actor actorProvider, log logging.Logger) *PlanService {
	return &PlanService{store: store, actor: actor, log: log, validate: validator.New()}
}

type planInput struct {
	MonthlyBudget float64 `validate:"gte=0"`
	SavingsGoal   float64 `validate:"gte=0"`
}

// Set replaces the current user's plan.
func (s *PlanService) Set(ctx context.Context, plan models.Plan) error {
	user := s.actor.CurrentUser()
	if user == nil {
		return common.ErrNotAuthenticated
	}

	in := planInput{MonthlyBudget: plan.MonthlyBudget, SavingsGoal: plan.SavingsGoal}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, kvstore.PlanKey(user.ID), data); err != nil {
		return err
	}

	s.log.Info(ctx, "plan updated", "user_id", user.ID,
		"monthly_budget", plan.MonthlyBudget, "savings_goal", plan.SavingsGoal)
	return nil
}

// Get returns the current user's plan; a zero Plan when none was set.
func (s *PlanService) Get(ctx context.Context) (models.Plan, error) {
	user := s.actor.CurrentUser()
	if user == nil {
		return models.Plan{}, common.ErrNotAuthenticated
	}

	data, err := s.store.Get(ctx, kvstore.PlanKey(user.ID))
	if err != nil {
		return models.Plan{}, err
	}
	if data == nil {
		return models.Plan{}, nil
	}

	var plan models.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return models.Plan{}, fmt.Errorf("%w: plan for %s: %v", common.ErrStorageCorrupted, user.ID, err)
	}
	return plan, nil
}
