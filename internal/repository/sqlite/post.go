package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/model"
)

func (db *DB) CreateComment(ctx context.Context, c *model.Comment) error {
	c.ID = xid.New().String()
	c.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_slug, author_user_id, author_provider, author_username, author_avatar, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.PostSlug,
		c.Author.UserID,
		c.Author.Provider,
		c.Author.Username,
		c.Author.Avatar,
		c.Content,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment on %s: %w", c.PostSlug, err)
	}
	return nil
}

func (db *DB) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, post_slug, author_user_id, author_provider, author_username, author_avatar, content, created_at
		 FROM comments WHERE id = ?`,
		id,
	).Scan(
		&c.ID, &c.PostSlug, &c.Author.UserID, &c.Author.Provider,
		&c.Author.Username, &c.Author.Avatar, &c.Content, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return &c, nil
}

// ListComments returns a post's comments oldest first, the order a thread reads in.
func (db *DB) ListComments(ctx context.Context, slug string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_slug, author_user_id, author_provider, author_username, author_avatar, content, created_at
		 FROM comments
		 WHERE post_slug = ?
		 ORDER BY created_at ASC, id ASC`,
		slug,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments on %s: %w", slug, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.PostSlug, &c.Author.UserID, &c.Author.Provider,
			&c.Author.Username, &c.Author.Avatar, &c.Content, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}

// AddLike relies on the (post_slug, provider, user_id) primary key: a second
// like from the same identity inserts nothing and reports a conflict.
func (db *DB) AddLike(ctx context.Context, like *model.Like) error {
	like.CreatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO likes (post_slug, provider, user_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (post_slug, provider, user_id) DO NOTHING`,
		like.PostSlug, like.Provider, like.UserID, like.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding like on %s: %w", like.PostSlug, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.Conflict("like", like.PostSlug)
	}
	return nil
}

func (db *DB) RemoveLike(ctx context.Context, slug, provider, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE post_slug = ? AND provider = ? AND user_id = ?`,
		slug, provider, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing like on %s: %w", slug, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("like", slug)
	}
	return nil
}

func (db *DB) HasLiked(ctx context.Context, slug, provider, userID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_slug = ? AND provider = ? AND user_id = ?`,
		slug, provider, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like on %s: %w", slug, err)
	}
	return count > 0, nil
}

func (db *DB) CountLikes(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_slug = ?`, slug,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes on %s: %w", slug, err)
	}
	return count, nil
}
