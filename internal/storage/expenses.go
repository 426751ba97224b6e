package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expensebot/internal/common"
	"expensebot/internal/model"
	"expensebot/internal/service"
)

const expenseColumns = `id, user_id, amount, item, category, currency, source, hash, spent_at, created_at`

// SaveExpense persists a single expense. The hash column is UNIQUE, so a
// record whose hash already exists is reported as common.ErrDuplicateEntry
// and nothing is written.
func (s *SQLiteStorage) SaveExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	inserted, err := s.insertExpense(ctx, s.db, expense)
	if err != nil {
		return err
	}
	if !inserted {
		return fmt.Errorf("%w: expense %s", common.ErrDuplicateEntry, expense.ID)
	}
	return nil
}

// SaveExpenses persists a batch in one transaction and returns how many rows
// were actually inserted. Duplicates are skipped, not errors; statement
// imports legitimately overlap previous imports.
func (s *SQLiteStorage) SaveExpenses(ctx context.Context, expenses []model.Expense) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(expenses) == 0 {
		return 0, nil
	}
	for i := range expenses {
		if err := validateExpense(&expenses[i]); err != nil {
			return 0, fmt.Errorf("expense at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var inserted int
	for i := range expenses {
		ok, insErr := s.insertExpense(ctx, tx, &expenses[i])
		if insErr != nil {
			return 0, insErr
		}
		if ok {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit expenses: %w", err)
	}
	return inserted, nil
}

func (s *SQLiteStorage) insertExpense(ctx context.Context, q queryable, expense *model.Expense) (bool, error) {
	if expense.Currency == "" {
		expense.Currency = model.DefaultCurrency
	}
	if expense.Source == "" {
		expense.Source = model.SourceChat
	}
	if expense.Hash == "" {
		expense.Hash = expense.GenerateHash()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}

	res, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		expense.ID,
		expense.UserID,
		expense.Amount,
		expense.Item,
		expense.Category,
		expense.Currency,
		string(expense.Source),
		expense.Hash,
		expense.SpentAt,
		expense.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert expense %s: %w", expense.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}

// ListExpenses returns a user's expenses, newest first, narrowed by the
// filter's date range, category, and limit.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, userID string, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: %v to %v", ErrInvalidDateRange, filter.StartDate, filter.EndDate)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ?`
	args := []any{userID}

	if filter.StartDate != nil {
		query += " AND spent_at >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND spent_at <= ?"
		args = append(args, *filter.EndDate)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}

	query += " ORDER BY spent_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		expense, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// CountExpenses returns the user's total committed expense count.
func (s *SQLiteStorage) CountExpenses(ctx context.Context, userID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// SumByCategory aggregates a user's spend per category inside [start, end].
func (s *SQLiteStorage) SumByCategory(ctx context.Context, userID string, start, end time.Time) (map[string]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %v to %v", ErrInvalidDateRange, start, end)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = ? AND spent_at >= ? AND spent_at <= ?
		GROUP BY category
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum by category: %w", err)
	}
	defer func() { _ = rows.Close() }()

	totals := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals[category] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}

// BiggestExpense returns the user's single largest expense inside
// [start, end], or nil when the period is empty.
func (s *SQLiteStorage) BiggestExpense(ctx context.Context, userID string, start, end time.Time) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %v to %v", ErrInvalidDateRange, start, end)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_id = ? AND spent_at >= ? AND spent_at <= ?
		ORDER BY amount DESC, spent_at DESC
		LIMIT 1
	`, userID, start, end)

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// scanner abstracts *sql.Row and *sql.Rows for expense scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(sc scanner) (model.Expense, error) {
	var expense model.Expense
	var source string
	err := sc.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Amount,
		&expense.Item,
		&expense.Category,
		&expense.Currency,
		&source,
		&expense.Hash,
		&expense.SpentAt,
		&expense.CreatedAt,
	)
	if err != nil {
		return model.Expense{}, fmt.Errorf("failed to scan expense: %w", err)
	}
	expense.Source = model.ExpenseSource(source)
	return expense, nil
}
