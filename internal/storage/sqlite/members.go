package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/tripledger/internal/models"
)

// AddMember appends a member after the trip's current last member.
func (s *SQLiteStore) AddMember(ctx context.Context, tripID string, member *models.Member) error {
	if member.Role == "" {
		member.Role = models.RoleMember
	}
	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}

	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		if err := touchTrip(ctx, tx, tripID); err != nil {
			return err
		}

		var next int
		err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position), -1) + 1 FROM trip_members WHERE trip_id = ?",
			tripID,
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to find member position: %w", err)
		}

		return insertMember(ctx, tx, tripID, next, member)
	})
}

// RemoveMember drops a member from the trip's member list. Expenses they
// paid or shared are left untouched.
func (s *SQLiteStore) RemoveMember(ctx context.Context, tripID, name string) error {
	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM trip_members WHERE trip_id = ? AND name = ?",
			tripID, name,
		)
		if err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		if err := expectRow(res, "member", name); err != nil {
			return err
		}
		return touchTrip(ctx, tx, tripID)
	})
}

func insertMember(ctx context.Context, q querier, tripID string, position int, m *models.Member) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO trip_members (trip_id, name, email, role, position, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tripID, m.Name, nullString(m.Email), string(m.Role), position, m.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

func listMembers(ctx context.Context, q querier, tripID string) ([]models.Member, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name, email, role, joined_at FROM trip_members
		 WHERE trip_id = ? ORDER BY position`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		var email sql.NullString
		var role string
		if err := rows.Scan(&m.Name, &email, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if email.Valid {
			m.Email = email.String
		}
		m.Role = models.Role(role)
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
