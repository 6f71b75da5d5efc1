// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tripledger/internal/models"
)

// ErrNotFound is returned when a trip, member, expense or settlement does
// not exist.
var ErrNotFound = errors.New("not found")

// ErrArchived is returned by writes to an archived trip.
var ErrArchived = errors.New("trip is archived")

// Ledger is everything recorded for one trip, read consistently.
type Ledger struct {
	Trip        *models.Trip
	Expenses    []*models.Expense    // insertion order
	Settlements []*models.Settlement // insertion order
}

// Store defines the interface for trip ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateTrip persists a new trip with its members.
	// The trip.ID, CreatedAt and UpdatedAt fields are populated by the store.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip and its ordered member list.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTrips returns trips, most recently updated first.
	ListTrips(ctx context.Context, includeArchived bool) ([]*models.Trip, error)

	// UpdateTrip updates name, destination and budget.
	// Writes to an archived trip fail with ErrArchived; this applies to every
	// member, expense and settlement write below as well.
	UpdateTrip(ctx context.Context, trip *models.Trip) error

	// SetArchived archives or unarchives a trip.
	SetArchived(ctx context.Context, tripID string, archived bool) error

	// DeleteTrip removes a trip and everything recorded for it.
	DeleteTrip(ctx context.Context, tripID string) error

	// AddMember appends a member to the end of the trip's member list.
	AddMember(ctx context.Context, tripID string, member *models.Member) error

	// RemoveMember removes a member. Their expenses and settlements stay.
	RemoveMember(ctx context.Context, tripID, name string) error

	// CreateExpense persists a new expense.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces an expense's fields, keeping its position.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpenses returns a trip's expenses in insertion order.
	ListExpenses(ctx context.Context, tripID string) ([]*models.Expense, error)

	// CreateSettlement records a payment between members.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlements returns a trip's recorded payments in insertion order.
	ListSettlements(ctx context.Context, tripID string) ([]*models.Settlement, error)

	// DeleteSettlement removes a recorded payment by ID.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// GetLedger reads the trip, its expenses and its settlements in a single
	// read transaction.
	GetLedger(ctx context.Context, tripID string) (*Ledger, error)

	// Close releases any resources held by the store.
	Close() error
}
