package calculator

import "math"

// DefaultCategory is used for expenses recorded without a category.
const DefaultCategory = "Other"

// Stats summarizes spending over a list of expenses.
type Stats struct {
	TotalExpenses     float64
	ExpenseCount      int
	CategoryBreakdown map[string]float64
	MemberSpending    map[string]float64 // Amount fronted by each payer, not amount consumed
}

// ComputeStats computes totals, a per-category breakdown and how much each
// payer fronted in a single pass. Expenses the balance aggregator would skip
// are not counted here either.
func ComputeStats(expenses []Expense) Stats {
	stats := Stats{
		CategoryBreakdown: make(map[string]float64),
		MemberSpending:    make(map[string]float64),
	}

	for _, e := range expenses {
		if !e.counted() {
			continue
		}

		category := e.Category
		if category == "" {
			category = DefaultCategory
		}

		stats.TotalExpenses += e.Amount
		stats.ExpenseCount++
		stats.CategoryBreakdown[category] += e.Amount
		stats.MemberSpending[e.PaidBy] += e.Amount
	}

	return stats
}

// CategoryShare returns the whole-number percentage of the total spent in
// category.
func (s Stats) CategoryShare(category string) int {
	return percentage(s.CategoryBreakdown[category], s.TotalExpenses)
}

// BudgetUsage compares spending against a trip budget.
type BudgetUsage struct {
	Budget      float64
	Spent       float64
	Remaining   float64 // Negative when over budget
	PercentUsed int
	OverBudget  bool
}

// ComputeBudget reports how much of budget the expenses in stats consumed.
// A trip without a budget (budget <= 0) reports 0 percent used and is never
// over budget.
func ComputeBudget(budget float64, stats Stats) BudgetUsage {
	if budget <= 0 || math.IsNaN(budget) {
		return BudgetUsage{Spent: stats.TotalExpenses}
	}
	return BudgetUsage{
		Budget:      budget,
		Spent:       stats.TotalExpenses,
		Remaining:   budget - stats.TotalExpenses,
		PercentUsed: percentage(stats.TotalExpenses, budget),
		OverBudget:  stats.TotalExpenses > budget,
	}
}

func percentage(value, total float64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(value / total * 100))
}
