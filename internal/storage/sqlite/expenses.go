package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/colocash/colocash/internal/models"
	"github.com/colocash/colocash/internal/storage"
)

// CreateExpense persists a new expense and its participant rows in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, colocation_id, payer_id, title, description, amount, settled, settled_at, created_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.ColocationID, expense.PayerID, expense.Title, expense.Description,
		expense.Amount.StringFixed(2), expense.Settled, expense.SettledAt, expense.CreatedAt, expense.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateExpense persists the expense guarded by its version and replaces the
// participant rows. A concurrent writer makes the version check miss, which
// surfaces as storage.ErrStaleExpense; the caller decides whether to retry.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET title = ?, description = ?, amount = ?, settled = ?, settled_at = ?, version = ?
		 WHERE id = ? AND version = ?`,
		expense.Title, expense.Description, expense.Amount.StringFixed(2),
		expense.Settled, expense.SettledAt, expense.Version+1,
		expense.ID, expense.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM expenses WHERE id = ?", expense.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check expense existence: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
		}
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrStaleExpense)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_participants WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	expense.Version++
	return nil
}

// DeleteExpense removes the expense; participant rows cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

const expenseColumns = "id, colocation_id, payer_id, title, description, amount, settled, settled_at, created_at, version"

// GetExpense retrieves an expense by ID, including its participants.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)

	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadParticipants(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByColocation returns the expenses of a colocation, newest first.
func (s *SQLiteStore) ListExpensesByColocation(ctx context.Context, colocationID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE colocation_id = ? ORDER BY created_at DESC, id",
		colocationID)
}

// ListExpensesByPayer returns the expenses paid by the member, newest first.
func (s *SQLiteStore) ListExpensesByPayer(ctx context.Context, payerID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE payer_id = ? ORDER BY created_at DESC, id",
		payerID)
}

// ListExpensesByParticipant returns the expenses in which the member holds a
// share, newest first.
func (s *SQLiteStore) ListExpensesByParticipant(ctx context.Context, memberID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT e.id, e.colocation_id, e.payer_id, e.title, e.description, e.amount, e.settled, e.settled_at, e.created_at, e.version
		 FROM expenses e
		 JOIN expense_participants p ON p.expense_id = e.id
		 WHERE p.member_id = ?
		 ORDER BY e.created_at DESC, e.id`,
		memberID)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, query string, args ...any) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		if err := s.loadParticipants(ctx, &expenses[i]); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount string
	err := row.Scan(
		&expense.ID, &expense.ColocationID, &expense.PayerID, &expense.Title, &expense.Description,
		&amount, &expense.Settled, &expense.SettledAt, &expense.CreatedAt, &expense.Version,
	)
	if err != nil {
		return nil, err
	}
	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	return expense, nil
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, member_id, share, payment_method, validated, validated_at, confirmed_by_creator, confirmed_by_creator_at
		 FROM expense_participants WHERE expense_id = ? ORDER BY member_id`,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := models.ExpenseParticipant{ExpenseID: expense.ID}
		var share string
		err := rows.Scan(&p.ID, &p.MemberID, &share, &p.PaymentMethod,
			&p.Validated, &p.ValidatedAt, &p.ConfirmedByCreator, &p.ConfirmedByCreatorAt)
		if err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Share, err = decimal.NewFromString(share)
		if err != nil {
			return fmt.Errorf("corrupt share %q: %w", share, err)
		}
		expense.Participants = append(expense.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Participants {
		p := &expense.Participants[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_participants (id, expense_id, member_id, share, payment_method, validated, validated_at, confirmed_by_creator, confirmed_by_creator_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, expense.ID, p.MemberID, p.Share.StringFixed(2), p.PaymentMethod,
			p.Validated, p.ValidatedAt, p.ConfirmedByCreator, p.ConfirmedByCreatorAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}
