package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
)

// CreateTrip persists a new trip and its members.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	// Generate ID if not set
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if trip.CreatedAt == 0 {
		trip.CreatedAt = now
	}
	trip.UpdatedAt = now
	if trip.Name == "" {
		trip.Name = generateTripName(trip.Destination, trip.MemberNames())
	}

	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO trips (id, name, destination, budget, archived, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			trip.ID, trip.Name, trip.Destination, trip.Budget, trip.Archived, trip.CreatedAt, trip.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip: %w", err)
		}

		for i := range trip.Members {
			m := &trip.Members[i]
			if m.Role == "" {
				m.Role = models.RoleMember
			}
			if m.JoinedAt == 0 {
				m.JoinedAt = now
			}
			if err := insertMember(ctx, tx, trip.ID, i, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTrip retrieves a trip by ID, including its ordered member list.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	return getTrip(ctx, s.db, tripID)
}

func getTrip(ctx context.Context, q querier, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, destination, budget, archived, created_at, updated_at
		 FROM trips WHERE id = ?`,
		tripID,
	).Scan(&trip.ID, &trip.Name, &trip.Destination, &trip.Budget, &trip.Archived, &trip.CreatedAt, &trip.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: trip %s", storage.ErrNotFound, tripID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	members, err := listMembers(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	trip.Members = members

	return trip, nil
}

// ListTrips returns trips, most recently updated first.
func (s *SQLiteStore) ListTrips(ctx context.Context, includeArchived bool) ([]*models.Trip, error) {
	query := "SELECT id FROM trips"
	if !includeArchived {
		query += " WHERE archived = 0"
	}
	query += " ORDER BY updated_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan trip id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	rows.Close()

	trips := make([]*models.Trip, 0, len(ids))
	for _, id := range ids {
		trip, err := s.GetTrip(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between the two reads
			continue
		}
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, nil
}

// UpdateTrip updates a trip's name, destination and budget.
func (s *SQLiteStore) UpdateTrip(ctx context.Context, trip *models.Trip) error {
	trip.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		"UPDATE trips SET name = ?, destination = ?, budget = ?, updated_at = ? WHERE id = ? AND archived = 0",
		trip.Name, trip.Destination, trip.Budget, trip.UpdatedAt, trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	return expectWritable(ctx, s.db, res, trip.ID)
}

// SetArchived archives or unarchives a trip.
func (s *SQLiteStore) SetArchived(ctx context.Context, tripID string, archived bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE trips SET archived = ?, updated_at = ? WHERE id = ?",
		archived, time.Now().Unix(), tripID,
	)
	if err != nil {
		return fmt.Errorf("failed to archive trip: %w", err)
	}
	return expectRow(res, "trip", tripID)
}

// DeleteTrip removes a trip. Members, expenses and settlements cascade.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, tripID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return expectRow(res, "trip", tripID)
}

// GetLedger reads a trip with its expenses and settlements in one
// transaction, so the three lists always describe the same moment.
func (s *SQLiteStore) GetLedger(ctx context.Context, tripID string) (*storage.Ledger, error) {
	ledger := &storage.Ledger{}
	err := s.inTx(ctx, nil, func(tx *sql.Tx) error {
		trip, err := getTrip(ctx, tx, tripID)
		if err != nil {
			return err
		}
		expenses, err := listExpenses(ctx, tx, tripID)
		if err != nil {
			return err
		}
		settlements, err := listSettlements(ctx, tx, tripID)
		if err != nil {
			return err
		}

		ledger.Trip = trip
		ledger.Expenses = expenses
		ledger.Settlements = settlements
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}
