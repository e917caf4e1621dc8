package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// CreateUser inserts a new account with an already-hashed password.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, avatar_url, created_at, last_login_at
	`, username, passwordHash)

	return scanUser(row)
}

// GetUserByUsername returns the account matching username, including the
// password hash for credential verification.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, avatar_url, created_at, last_login_at
		FROM users
		WHERE username = $1
	`, username)

	return scanUser(row)
}

// GetUserByID returns the account with the given id.
func (s *Store) GetUserByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, avatar_url, created_at, last_login_at
		FROM users
		WHERE id = $1
	`, id)

	return scanUser(row)
}

// UpdateLastLogin stamps the account's last successful sign-in.
func (s *Store) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET last_login_at = now() WHERE id = $1
	`, id)
	return err
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.AvatarURL, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}
