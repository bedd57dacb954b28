package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/model"
)

// Upsert inserts the identity or, when (provider, user_id) already exists,
// overwrites every profile field. created_at is set to now either way.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (provider, user_id, username, email, avatar, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (provider, user_id) DO UPDATE SET
			username   = excluded.username,
			email      = excluded.email,
			avatar     = excluded.avatar,
			created_at = excluded.created_at`,
		user.Provider,
		user.UserID,
		user.Username,
		user.Email,
		user.Avatar,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s/%s: %w", user.Provider, user.UserID, err)
	}

	return nil
}

// GetUser returns apperror.ErrNotFound if the identity has never logged in.
func (db *DB) GetUser(ctx context.Context, provider, userID string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT provider, user_id, username, email, avatar, created_at
		 FROM users WHERE provider = ? AND user_id = ?`,
		provider, userID,
	).Scan(
		&u.Provider,
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.Avatar,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", provider+"/"+userID)
		}
		return nil, fmt.Errorf("sqlite: getting user %s/%s: %w", provider, userID, err)
	}

	return &u, nil
}
