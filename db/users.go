package db

import (
	"context"
	"fmt"

	"absensi-server-go/apperrors"
	"absensi-server-go/models"
)

const userColumns = `id, username, password_hash, role`

// GetUserByUsername looks up a login account
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = ?`, username); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("user %s not found", username)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return &u, nil
}

// GetUserByID looks up a login account by id
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("user %d not found", id)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

// EnsureUser inserts the account unless the username already exists. It
// reports whether a new account was created; existing accounts are never
// modified.
func (s *Store) EnsureUser(ctx context.Context, username, passwordHash string, role models.Role) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)
		 ON CONFLICT (username) DO NOTHING`, username, passwordHash, role)
	if err != nil {
		return false, fmt.Errorf("failed to ensure user %s: %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to ensure user %s: %w", username, err)
	}
	return n == 1, nil
}
