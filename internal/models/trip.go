package models

import (
	"fmt"
	"strings"
)

// Trip represents a shared trip whose members split expenses.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Goa 2024"). Generated
	// by the store when empty.
	Name string `validate:"max=100"`

	// Destination is optional free text.
	Destination string `validate:"max=100"`

	// Budget is the planned total spend. Zero means no budget.
	Budget float64 `validate:"gte=0,finite"`

	// Members is the ordered member list. Order is preserved by storage and
	// decides the order of balances and settlement payments.
	Members []Member `validate:"dive"`

	// Archived trips are read-only.
	Archived bool

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// MemberNames returns the member names in trip order.
func (t *Trip) MemberNames() []string {
	names := make([]string, len(t.Members))
	for i, m := range t.Members {
		names[i] = m.Name
	}
	return names
}

// HasMember reports whether name is a current member of the trip.
func (t *Trip) HasMember(name string) bool {
	for _, m := range t.Members {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Validate checks field constraints and rejects duplicate member names.
func (t *Trip) Validate() error {
	if err := Validate(t); err != nil {
		return err
	}
	seen := make(map[string]bool, len(t.Members))
	for _, m := range t.Members {
		key := strings.ToLower(m.Name)
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateMember, m.Name)
		}
		seen[key] = true
	}
	return nil
}

// CheckExpense verifies that everyone the expense names is on the trip.
func (t *Trip) CheckExpense(e *Expense) error {
	if !t.HasMember(e.PaidBy) {
		return fmt.Errorf("%w: payer %q", ErrUnknownMember, e.PaidBy)
	}
	for _, name := range e.SplitBetween {
		if !t.HasMember(name) {
			return fmt.Errorf("%w: %q in split", ErrUnknownMember, name)
		}
	}
	return nil
}

// CheckSettlement verifies that both sides of the payment are on the trip.
func (t *Trip) CheckSettlement(s *Settlement) error {
	for _, name := range []string{s.FromMember, s.ToMember} {
		if !t.HasMember(name) {
			return fmt.Errorf("%w: %q", ErrUnknownMember, name)
		}
	}
	return nil
}
