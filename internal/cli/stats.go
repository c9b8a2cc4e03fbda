package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/models"
)

// Stats renders the monthly report for the current month.
func (a *App) Stats(ctx context.Context) error {
	report, err := a.stats.MonthlyReport(ctx, time.Now())
	if err != nil {
		printlnFn("Failed to build report:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("--- %s %d ---", report.Month, report.Year))
	printlnFn(fmt.Sprintf("All time: income %.2f, expenses %.2f, balance %.2f",
		report.Summary.TotalIncome, report.Summary.TotalExpense, report.Summary.Balance))
	printlnFn(fmt.Sprintf("This month: income %.2f, expenses %.2f (%+.1f%% vs last month)",
		report.Current.Income, report.Current.Expense, report.DeltaExpense))

	if len(report.ByCategory) > 0 {
		printlnFn("By category:")
		for _, ct := range report.ByCategory {
			printlnFn(fmt.Sprintf("  %-15s %10.2f  %5.1f%%", ct.Category, ct.Total, ct.Percent))
		}
	}

	printlnFn("Trend:")
	for _, mt := range report.Trend {
		printlnFn(fmt.Sprintf("  %s %d: income %.2f, expenses %.2f", mt.Month, mt.Year, mt.Income, mt.Expense))
	}

	p := report.Progress
	if p.Goal > 0 {
		printlnFn(fmt.Sprintf("Savings: %.2f of %.2f goal (%.1f%%)", p.Saved, p.Goal, p.GoalPercent))
	}
	if p.Budget > 0 {
		printlnFn(fmt.Sprintf("Budget: %.2f spent of %.2f (%.1f%%)", report.Current.Expense, p.Budget, p.BudgetUsedPercent))
	}

	return nil
}

// Plan shows the current budget plan and optionally replaces it.
func (a *App) Plan(ctx context.Context) error {
	current, err := a.plans.Get(ctx)
	if err != nil {
		printlnFn("Failed to load plan:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Current plan: monthly budget %.2f, savings goal %.2f",
		current.MonthlyBudget, current.SavingsGoal))

	answer, err := getSimpleText(a.reader, "Change it? (y/N)", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		return nil
	}

	budget, err := GetAmount(a.reader, "Monthly budget", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	goal, err := GetAmount(a.reader, "Savings goal", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if err := a.plans.Set(ctx, models.Plan{MonthlyBudget: budget, SavingsGoal: goal}); err != nil {
		printlnFn("Failed to save plan:", err.Error())
		return err
	}

	printlnFn("Plan saved")
	return nil
}
