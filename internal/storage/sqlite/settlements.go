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

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		if err := touchTrip(ctx, tx, settlement.TripID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (id, trip_id, from_member, to_member, amount, note, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			settlement.ID, settlement.TripID, settlement.FromMember, settlement.ToMember,
			settlement.Amount, nullString(settlement.Note), settlement.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
		return nil
	})
}

// ListSettlements retrieves all settlements for a trip in the order they were
// recorded.
func (s *SQLiteStore) ListSettlements(ctx context.Context, tripID string) ([]*models.Settlement, error) {
	return listSettlements(ctx, s.db, tripID)
}

func listSettlements(ctx context.Context, q querier, tripID string) ([]*models.Settlement, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, trip_id, from_member, to_member, amount, note, created_at
		 FROM settlements WHERE trip_id = ? ORDER BY rowid`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements := []*models.Settlement{}
	for rows.Next() {
		settlement := &models.Settlement{}
		var note sql.NullString

		if err := rows.Scan(&settlement.ID, &settlement.TripID, &settlement.FromMember, &settlement.ToMember,
			&settlement.Amount, &note, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}

		if note.Valid {
			settlement.Note = note.String
		}

		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		var tripID string
		err := tx.QueryRowContext(ctx, "SELECT trip_id FROM settlements WHERE id = ?", settlementID).Scan(&tripID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: settlement %s", storage.ErrNotFound, settlementID)
		}
		if err != nil {
			return fmt.Errorf("failed to check settlement existence: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID); err != nil {
			return fmt.Errorf("failed to delete settlement: %w", err)
		}
		return touchTrip(ctx, tx, tripID)
	})
}
