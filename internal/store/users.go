package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hollis/gaffer/internal/model"
)

// CreateUser inserts a new user record. A username or email collision returns
// ErrUserExists.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *model.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user insert id: %w", err)
	}
	u.ID = id
	return nil
}

// GetActiveUserByUsername retrieves a user that is active and not
// soft-deleted. Missing, deleted, and deactivated users are all ErrNotFound.
func (s *SQLiteStore) GetActiveUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u := &model.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, is_active, created_at, updated_at
		FROM users WHERE username = ? AND is_active = 1 AND `+aliveClause,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
