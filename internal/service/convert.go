package service

import (
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
	"github.com/mmynk/tripledger/pkg/api"
)

func toAPITrip(t *models.Trip) *api.Trip {
	members := make([]api.Member, len(t.Members))
	for i, m := range t.Members {
		members[i] = api.Member{Name: m.Name, Email: m.Email, Role: string(m.Role)}
	}
	return &api.Trip{
		ID:          t.ID,
		Name:        t.Name,
		Destination: t.Destination,
		Budget:      t.Budget,
		Members:     members,
		Archived:    t.Archived,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func fromAPIMember(m api.Member) models.Member {
	return models.Member{Name: m.Name, Email: m.Email, Role: models.Role(m.Role)}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:                e.ID,
		TripID:            e.TripID,
		Title:             e.Title,
		Amount:            e.Amount,
		PaidBy:            e.PaidBy,
		SplitBetween:      e.SplitBetween,
		MembersAtCreation: e.MembersAtCreation,
		Category:          e.Category,
		Description:       e.Description,
		Date:              e.Date,
		CreatedAt:         e.CreatedAt,
	}
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:        s.ID,
		TripID:    s.TripID,
		From:      s.FromMember,
		To:        s.ToMember,
		Amount:    s.Amount,
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
	}
}

// snapshotOf converts a stored ledger into the calculator's input.
func snapshotOf(l *storage.Ledger) calculator.Snapshot {
	snap := calculator.Snapshot{
		Members:  l.Trip.MemberNames(),
		Expenses: make([]calculator.Expense, len(l.Expenses)),
		Payments: make([]calculator.Transaction, len(l.Settlements)),
	}
	for i, e := range l.Expenses {
		snap.Expenses[i] = calculator.Expense{
			ID:                e.ID,
			Amount:            e.Amount,
			PaidBy:            e.PaidBy,
			SplitBetween:      e.SplitBetween,
			Category:          e.Category,
			Date:              e.Date,
			MembersAtCreation: e.MembersAtCreation,
		}
	}
	for i, s := range l.Settlements {
		snap.Payments[i] = calculator.Transaction{From: s.FromMember, To: s.ToMember, Amount: s.Amount}
	}
	return snap
}

func toAPIBalances(b calculator.Balances) []api.Balance {
	out := make([]api.Balance, len(b))
	for i, mb := range b {
		out[i] = api.Balance{Member: mb.Member, Amount: mb.Amount}
	}
	return out
}

func toAPITransactions(txs []calculator.Transaction) []api.Transaction {
	out := make([]api.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = api.Transaction{From: tx.From, To: tx.To, Amount: tx.Amount}
	}
	return out
}

func toAPIStats(s calculator.Stats) api.Stats {
	return api.Stats{
		TotalExpenses:     s.TotalExpenses,
		ExpenseCount:      s.ExpenseCount,
		CategoryBreakdown: s.CategoryBreakdown,
		MemberSpending:    s.MemberSpending,
	}
}

func toAPIBudget(b calculator.BudgetUsage) api.BudgetUsage {
	return api.BudgetUsage{
		Budget:      b.Budget,
		Spent:       b.Spent,
		Remaining:   b.Remaining,
		PercentUsed: b.PercentUsed,
		OverBudget:  b.OverBudget,
	}
}
