// Package api defines the wire messages of the tripledger.v1.TripService
// Connect service, its JSON codec, and handler and client constructors.
package api

// Member is a person on a trip.
type Member struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Trip is a trip and its ordered member list.
type Trip struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Destination string   `json:"destination,omitempty"`
	Budget      float64  `json:"budget,omitempty"`
	Members     []Member `json:"members"`
	Archived    bool     `json:"archived,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// Expense is money one member fronted.
type Expense struct {
	ID           string   `json:"id"`
	TripID       string   `json:"tripId"`
	Title        string   `json:"title"`
	Amount       float64  `json:"amount"`
	PaidBy       string   `json:"paidBy"`
	SplitBetween []string `json:"splitBetween,omitempty"`
	// MembersAtCreation is the trip's member list when the expense was
	// recorded. Read-only.
	MembersAtCreation []string `json:"membersAtCreation,omitempty"`
	Category          string   `json:"category"`
	Description       string   `json:"description,omitempty"`
	Date              string   `json:"date,omitempty"`
	CreatedAt         int64    `json:"createdAt"`
}

// Settlement is a recorded payment between members.
type Settlement struct {
	ID        string  `json:"id"`
	TripID    string  `json:"tripId"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
	CreatedAt int64   `json:"createdAt"`
}

// Balance is a member's net position: positive is owed, negative owes.
type Balance struct {
	Member string  `json:"member"`
	Amount float64 `json:"amount"`
}

// Transaction is one suggested payment in a settlement plan.
type Transaction struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Stats summarizes spending.
type Stats struct {
	TotalExpenses     float64            `json:"totalExpenses"`
	ExpenseCount      int                `json:"expenseCount"`
	CategoryBreakdown map[string]float64 `json:"categoryBreakdown"`
	MemberSpending    map[string]float64 `json:"memberSpending"`
}

// BudgetUsage compares spending with the trip budget.
type BudgetUsage struct {
	Budget      float64 `json:"budget"`
	Spent       float64 `json:"spent"`
	Remaining   float64 `json:"remaining"`
	PercentUsed int     `json:"percentUsed"`
	OverBudget  bool    `json:"overBudget"`
}

// Summary is everything derived from one snapshot of a trip's ledger.
type Summary struct {
	TripID      string        `json:"tripId"`
	Fingerprint string        `json:"fingerprint"`
	SplitPolicy string        `json:"splitPolicy"`
	Balances    []Balance     `json:"balances"`
	Settlements []Transaction `json:"settlements"`
	Stats       Stats         `json:"stats"`
	Budget      BudgetUsage   `json:"budget"`
}

type CreateTripRequest struct {
	Name        string   `json:"name"`
	Destination string   `json:"destination,omitempty"`
	Budget      float64  `json:"budget,omitempty"`
	Members     []Member `json:"members"`
}

type CreateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type GetTripRequest struct {
	TripID string `json:"tripId"`
}

type GetTripResponse struct {
	Trip        *Trip        `json:"trip"`
	Expenses    []Expense    `json:"expenses"`
	Settlements []Settlement `json:"settlements"`
}

type ListTripsRequest struct {
	IncludeArchived bool `json:"includeArchived,omitempty"`
}

type ListTripsResponse struct {
	Trips []Trip `json:"trips"`
}

// UpdateTripRequest keeps the current name when Name is empty.
type UpdateTripRequest struct {
	TripID      string  `json:"tripId"`
	Name        string  `json:"name"`
	Destination string  `json:"destination,omitempty"`
	Budget      float64 `json:"budget,omitempty"`
}

type UpdateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type DeleteTripRequest struct {
	TripID string `json:"tripId"`
}

type DeleteTripResponse struct{}

type ArchiveTripRequest struct {
	TripID   string `json:"tripId"`
	Archived bool   `json:"archived"`
}

type ArchiveTripResponse struct {
	Trip *Trip `json:"trip"`
}

type AddMemberRequest struct {
	TripID string `json:"tripId"`
	Member Member `json:"member"`
}

type AddMemberResponse struct {
	Trip *Trip `json:"trip"`
}

type RemoveMemberRequest struct {
	TripID string `json:"tripId"`
	Name   string `json:"name"`
}

type RemoveMemberResponse struct {
	Trip *Trip `json:"trip"`
}

// AddExpenseRequest carries the amount as entered, e.g. "4000" or "12,50".
type AddExpenseRequest struct {
	TripID       string   `json:"tripId"`
	Title        string   `json:"title"`
	Amount       string   `json:"amount"`
	PaidBy       string   `json:"paidBy"`
	SplitBetween []string `json:"splitBetween,omitempty"`
	Category     string   `json:"category,omitempty"`
	Description  string   `json:"description,omitempty"`
	Date         string   `json:"date,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID    string   `json:"expenseId"`
	Title        string   `json:"title"`
	Amount       string   `json:"amount"`
	PaidBy       string   `json:"paidBy"`
	SplitBetween []string `json:"splitBetween,omitempty"`
	Category     string   `json:"category,omitempty"`
	Description  string   `json:"description,omitempty"`
	Date         string   `json:"date,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type RecordSettlementRequest struct {
	TripID string `json:"tripId"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Note   string `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type DeleteSettlementRequest struct {
	TripID       string `json:"tripId"`
	SettlementID string `json:"settlementId"`
}

type DeleteSettlementResponse struct{}

type GetSummaryRequest struct {
	TripID string `json:"tripId"`
}

type GetSummaryResponse struct {
	Summary *Summary `json:"summary"`
}

type WatchTripRequest struct {
	TripID string `json:"tripId"`
}

type WatchTripResponse struct {
	Summary *Summary `json:"summary"`
}
