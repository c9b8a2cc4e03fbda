package models

// Plan holds a user's monthly budget ceiling and savings goal.
// A zero value means "not set".
type Plan struct {
	MonthlyBudget float64 `json:"monthly_budget"`
	SavingsGoal   float64 `json:"savings_goal"`
}
