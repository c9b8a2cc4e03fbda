package services

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/models"
)

// Derived aggregates. These are pure functions of the record set and are
// recomputed on every call; nothing here touches storage.

// Summary is the all-time totals of one user.
type Summary struct {
	TotalIncome  float64
	TotalExpense float64
	Balance      float64
}

// CategoryTotal is an amount aggregated by category, with its share of the
// overall spend.
type CategoryTotal struct {
	Category string
	Total    float64
	Percent  float64
}

// MonthTotal is the income/expense total of one calendar month.
type MonthTotal struct {
	Year    int
	Month   time.Month
	Income  float64
	Expense float64
}

// SavingsProgress tracks the month's saved amount against the savings goal
// and the spend against the monthly budget.
type SavingsProgress struct {
	Saved             float64
	Goal              float64
	GoalPercent       float64
	Budget            float64
	BudgetUsedPercent float64
}

// Summarize folds all-time totals out of the two collections.
func Summarize(incomes, expenses []models.Record) Summary {
	var s Summary
	for _, r := range incomes {
		s.TotalIncome += r.Amount
	}
	for _, r := range expenses {
		s.TotalExpense += r.Amount
	}
	s.Balance = s.TotalIncome - s.TotalExpense
	return s
}

// CategoryBreakdown aggregates one month's expenses per category, largest
// first. Percent is the category's share of that month's spend.
func CategoryBreakdown(expenses []models.Record, year int, month time.Month) []CategoryTotal {
	totals := make(map[string]float64)
	var monthTotal float64

	for _, r := range expenses {
		if !inMonth(r.Date, year, month) {
			continue
		}
		totals[r.Category] += r.Amount
		monthTotal += r.Amount
	}

	result := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		ct := CategoryTotal{Category: category, Total: total}
		if monthTotal > 0 {
			ct.Percent = total / monthTotal * 100
		}
		result = append(result, ct)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Category < result[j].Category
	})

	return result
}

// MonthlyTrend returns totals for the last months calendar months ending at
// ref's month, oldest first. Months with no records appear with zeros.
func MonthlyTrend(incomes, expenses []models.Record, months int, ref time.Time) []MonthTotal {
	if months <= 0 {
		return nil
	}

	result := make([]MonthTotal, months)
	index := make(map[[2]int]*MonthTotal, months)

	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := range result {
		m := first.AddDate(0, i, 0)
		result[i] = MonthTotal{Year: m.Year(), Month: m.Month()}
		index[[2]int{m.Year(), int(m.Month())}] = &result[i]
	}

	for _, r := range incomes {
		if mt, ok := index[[2]int{r.Date.Year(), int(r.Date.Month())}]; ok {
			mt.Income += r.Amount
		}
	}
	for _, r := range expenses {
		if mt, ok := index[[2]int{r.Date.Year(), int(r.Date.Month())}]; ok {
			mt.Expense += r.Amount
		}
	}

	return result
}

// MonthDelta is the percentage change from prev to cur. A zero prev yields
// 0 to avoid a meaningless division.
func MonthDelta(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// BuildSavingsProgress compares one month's totals against the plan.
// Saved is income minus expense for the month, floored at zero progress
// percentages when the plan is unset.
func BuildSavingsProgress(month MonthTotal, plan models.Plan) SavingsProgress {
	p := SavingsProgress{
		Saved:  month.Income - month.Expense,
		Goal:   plan.SavingsGoal,
		Budget: plan.MonthlyBudget,
	}
	if plan.SavingsGoal > 0 {
		p.GoalPercent = p.Saved / plan.SavingsGoal * 100
	}
	if plan.MonthlyBudget > 0 {
		p.BudgetUsedPercent = month.Expense / plan.MonthlyBudget * 100
	}
	return p
}

func inMonth(date time.Time, year int, month time.Month) bool {
	return date.Year() == year && date.Month() == month
}

// MonthlyReport is the stats view the CLI renders for one month.
type MonthlyReport struct {
	Year         int
	Month        time.Month
	Summary      Summary
	Current      MonthTotal
	DeltaExpense float64
	ByCategory   []CategoryTotal
	Trend        []MonthTotal
	Progress     SavingsProgress
}

const trendMonths = 6

// StatsService assembles reports from the ledger and the plan for the
// current user.
type StatsService struct {
	ledger *LedgerService
	plans  *PlanService
	now    func() time.Time
}

func NewStatsService(ledger *LedgerService, plans *PlanService) *StatsService {
	return &StatsService{ledger: ledger, plans: plans, now: time.Now}
}

// MonthlyReport computes the report for the month containing ref.
func (s *StatsService) MonthlyReport(ctx context.Context, ref time.Time) (*MonthlyReport, error) {
	incomes, err := s.ledger.List(ctx, models.KindIncome)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ledger.List(ctx, models.KindExpense)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.Get(ctx)
	if err != nil {
		return nil, err
	}

	trend := MonthlyTrend(incomes, expenses, trendMonths, ref)
	current := trend[len(trend)-1]

	report := &MonthlyReport{
		Year:       ref.Year(),
		Month:      ref.Month(),
		Summary:    Summarize(incomes, expenses),
		Current:    current,
		ByCategory: CategoryBreakdown(expenses, ref.Year(), ref.Month()),
		Trend:      trend,
		Progress:   BuildSavingsProgress(current, plan),
	}
	if len(trend) >= 2 {
		report.DeltaExpense = MonthDelta(current.Expense, trend[len(trend)-2].Expense)
	}

	return report, nil
}
