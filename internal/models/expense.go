package models

// DefaultCategory is assigned to expenses recorded without a category.
const DefaultCategory = "Other"

// Expense represents money one member fronted for the trip.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip this expense belongs to.
	TripID string

	// Title is a short label (e.g., "Dinner at Fisherman's Wharf").
	Title string `validate:"required,max=200"`

	// Amount is the total paid, in the trip's single currency.
	Amount float64 `validate:"gt=0,finite"`

	// PaidBy is the name of the member who paid.
	PaidBy string `validate:"required"`

	// SplitBetween lists the members who share the expense equally.
	// Empty means the trip's default split group.
	SplitBetween []string `validate:"dive,required"`

	// MembersAtCreation is the member list captured when the expense was
	// recorded. Only the creation-time split policy reads it.
	MembersAtCreation []string

	// Category groups expenses in stats (e.g., "Food", "Stay").
	Category string `validate:"max=50"`

	// Description is optional free text.
	Description string `validate:"max=500"`

	// Date is the day the expense happened, formatted YYYY-MM-DD.
	Date string `validate:"omitempty,datetime=2006-01-02"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Normalize fills defaults before the expense is stored.
func (e *Expense) Normalize() {
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if e.Title == "" {
		e.Title = e.Category
	}
}

// Validate checks the expense's own fields. Membership is checked against
// the trip with Trip.CheckExpense.
func (e *Expense) Validate() error {
	return Validate(e)
}
