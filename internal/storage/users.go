package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expensebot/internal/model"
)

// EnsureUser creates the user row if it does not exist yet. Webhook senders
// are identified only by their phone number, so the ID doubles as the phone.
func (s *SQLiteStorage) EnsureUser(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, phone) VALUES (?, ?)`, userID, userID)
	if err != nil {
		return fmt.Errorf("failed to ensure user %s: %w", userID, err)
	}
	return nil
}

// GetUser returns the stored user record, or nil when unknown.
func (s *SQLiteStorage) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, phone, created_at FROM users WHERE id = ?`, userID).
		Scan(&user.ID, &user.Phone, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}
