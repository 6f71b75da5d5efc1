package models

// Settlement represents a payment between trip members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// TripID is the trip this settlement belongs to.
	TripID string

	// FromMember is the member who paid (debtor settling up).
	FromMember string `validate:"required"`

	// ToMember is the member who received payment (creditor being paid).
	ToMember string `validate:"required,nefield=FromMember"`

	// Amount is the payment amount.
	Amount float64 `validate:"gt=0,finite"`

	// Note is an optional description for the settlement.
	Note string `validate:"max=200"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// Validate checks the settlement's fields.
func (s *Settlement) Validate() error {
	return Validate(s)
}
