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

const (
	kindSplit   = "split"
	kindCreated = "created"
)

// CreateExpense persists a new expense to the database.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	expense.Normalize()

	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		if err := touchTrip(ctx, tx, expense.TripID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, trip_id, title, amount, paid_by, category, description, date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.TripID, expense.Title, expense.Amount, expense.PaidBy,
			expense.Category, nullString(expense.Description), nullString(expense.Date), expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		return insertExpenseMembers(ctx, tx, expense)
	})
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var description, date sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, title, amount, paid_by, category, description, date, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.TripID, &expense.Title, &expense.Amount, &expense.PaidBy,
		&expense.Category, &description, &date, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.Description = description.String
	expense.Date = date.String

	byExpense, err := loadExpenseMembers(ctx, s.db,
		"SELECT expense_id, kind, name FROM expense_members WHERE expense_id = ? ORDER BY kind, position",
		expenseID,
	)
	if err != nil {
		return nil, err
	}
	applyExpenseMembers(expense, byExpense[expenseID])

	return expense, nil
}

// UpdateExpense replaces an expense's fields. The member list captured at
// creation is kept as is.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.Normalize()

	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET title = ?, amount = ?, paid_by = ?, category = ?, description = ?, date = ?
			 WHERE id = ? AND trip_id = ?`,
			expense.Title, expense.Amount, expense.PaidBy, expense.Category,
			nullString(expense.Description), nullString(expense.Date), expense.ID, expense.TripID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if err := expectRow(res, "expense", expense.ID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"DELETE FROM expense_members WHERE expense_id = ? AND kind = ?",
			expense.ID, kindSplit,
		)
		if err != nil {
			return fmt.Errorf("failed to clear expense split: %w", err)
		}
		for i, name := range expense.SplitBetween {
			if err := insertExpenseMember(ctx, tx, expense.ID, kindSplit, i, name); err != nil {
				return err
			}
		}

		return touchTrip(ctx, tx, expense.TripID)
	})
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		var tripID string
		err := tx.QueryRowContext(ctx, "SELECT trip_id FROM expenses WHERE id = ?", expenseID).Scan(&tripID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
		}
		if err != nil {
			return fmt.Errorf("failed to check expense existence: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return touchTrip(ctx, tx, tripID)
	})
}

// ListExpenses returns a trip's expenses in the order they were recorded.
func (s *SQLiteStore) ListExpenses(ctx context.Context, tripID string) ([]*models.Expense, error) {
	return listExpenses(ctx, s.db, tripID)
}

func listExpenses(ctx context.Context, q querier, tripID string) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, trip_id, title, amount, paid_by, category, description, date, created_at
		 FROM expenses WHERE trip_id = ? ORDER BY rowid`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		expense := &models.Expense{}
		var description, date sql.NullString
		if err := rows.Scan(&expense.ID, &expense.TripID, &expense.Title, &expense.Amount, &expense.PaidBy,
			&expense.Category, &description, &date, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.Description = description.String
		expense.Date = date.String
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	byExpense, err := loadExpenseMembers(ctx, q,
		`SELECT em.expense_id, em.kind, em.name FROM expense_members em
		 JOIN expenses e ON e.id = em.expense_id
		 WHERE e.trip_id = ? ORDER BY em.expense_id, em.kind, em.position`,
		tripID,
	)
	if err != nil {
		return nil, err
	}
	for _, expense := range expenses {
		applyExpenseMembers(expense, byExpense[expense.ID])
	}

	return expenses, nil
}

type expenseMembers struct {
	split   []string
	created []string
}

func loadExpenseMembers(ctx context.Context, q querier, query string, arg string) (map[string]*expenseMembers, error) {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense members: %w", err)
	}
	defer rows.Close()

	byExpense := make(map[string]*expenseMembers)
	for rows.Next() {
		var expenseID, kind, name string
		if err := rows.Scan(&expenseID, &kind, &name); err != nil {
			return nil, fmt.Errorf("failed to scan expense member: %w", err)
		}
		em, ok := byExpense[expenseID]
		if !ok {
			em = &expenseMembers{}
			byExpense[expenseID] = em
		}
		switch kind {
		case kindSplit:
			em.split = append(em.split, name)
		case kindCreated:
			em.created = append(em.created, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense members: %w", err)
	}

	return byExpense, nil
}

func applyExpenseMembers(expense *models.Expense, em *expenseMembers) {
	if em == nil {
		return
	}
	expense.SplitBetween = em.split
	expense.MembersAtCreation = em.created
}

func insertExpenseMembers(ctx context.Context, q querier, expense *models.Expense) error {
	for i, name := range expense.SplitBetween {
		if err := insertExpenseMember(ctx, q, expense.ID, kindSplit, i, name); err != nil {
			return err
		}
	}
	for i, name := range expense.MembersAtCreation {
		if err := insertExpenseMember(ctx, q, expense.ID, kindCreated, i, name); err != nil {
			return err
		}
	}
	return nil
}

func insertExpenseMember(ctx context.Context, q querier, expenseID, kind string, position int, name string) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO expense_members (expense_id, kind, position, name) VALUES (?, ?, ?, ?)",
		expenseID, kind, position, name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense member: %w", err)
	}
	return nil
}
