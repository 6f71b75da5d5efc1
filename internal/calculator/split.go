package calculator

import (
	"fmt"
	"math"
	"strings"
)

// Expense represents an expense with the minimal information needed for balance calculations.
type Expense struct {
	ID           string
	Amount       float64
	PaidBy       string
	SplitBetween []string // Empty means "the default split group", see SplitPolicy
	Category     string
	Date         string

	// MembersAtCreation is the trip member list captured when the expense
	// was recorded. Only SplitAtCreation reads it.
	MembersAtCreation []string
}

// counted reports whether the expense takes part in any aggregation.
// Expenses without a payer or with a non-positive (or non-finite) amount
// are skipped entirely.
func (e Expense) counted() bool {
	return e.PaidBy != "" && e.Amount > 0 && !math.IsInf(e.Amount, 1)
}

// SplitPolicy decides who shares an expense whose SplitBetween is empty.
type SplitPolicy int

const (
	// SplitAtEvaluation splits with the trip members at computation time.
	// A member added later retroactively owes a share of older
	// "split with everyone" expenses.
	SplitAtEvaluation SplitPolicy = iota

	// SplitAtCreation splits with the members recorded on the expense when
	// it was created, falling back to the current members when the expense
	// carries no such snapshot.
	SplitAtCreation
)

// String returns the config name of the policy.
func (p SplitPolicy) String() string {
	switch p {
	case SplitAtCreation:
		return "creation"
	default:
		return "evaluation"
	}
}

// ParseSplitPolicy maps a config value onto a SplitPolicy.
func ParseSplitPolicy(s string) (SplitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "evaluation":
		return SplitAtEvaluation, nil
	case "creation":
		return SplitAtCreation, nil
	default:
		return SplitAtEvaluation, fmt.Errorf("unknown split policy %q (want evaluation or creation)", s)
	}
}

// splitters returns the members who share the expense.
func (p SplitPolicy) splitters(e Expense, members []string) []string {
	if len(e.SplitBetween) > 0 {
		return e.SplitBetween
	}
	if p == SplitAtCreation && len(e.MembersAtCreation) > 0 {
		return e.MembersAtCreation
	}
	return members
}
