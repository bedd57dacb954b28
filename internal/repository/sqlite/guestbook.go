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
	"github.com/rejaka/portfolio/internal/repository"
)

// CreateEntry assigns the entry an xid and a creation time, then inserts it.
//
// xid values are 20 URL-safe chars and sort by creation time, which gives
// ListEntries a stable tie-breaker for entries created in the same instant.
func (db *DB) CreateEntry(ctx context.Context, entry *model.GuestbookEntry) error {
	entry.ID = xid.New().String()
	entry.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO guestbook (id, author_user_id, author_provider, author_username, author_avatar, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Author.UserID,
		entry.Author.Provider,
		entry.Author.Username,
		entry.Author.Avatar,
		entry.Message,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating guestbook entry: %w", err)
	}

	return nil
}

// GetEntry returns apperror.ErrNotFound when no entry has the given id.
func (db *DB) GetEntry(ctx context.Context, id string) (*model.GuestbookEntry, error) {
	var e model.GuestbookEntry

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, author_user_id, author_provider, author_username, author_avatar, message, created_at
		 FROM guestbook
		 WHERE id = ?`,
		id,
	).Scan(
		&e.ID,
		&e.Author.UserID,
		&e.Author.Provider,
		&e.Author.Username,
		&e.Author.Avatar,
		&e.Message,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("guestbook entry", id)
		}
		return nil, fmt.Errorf("sqlite: getting guestbook entry %s: %w", id, err)
	}

	return &e, nil
}

// ListEntries returns entries newest first.
//
// LIMIT/OFFSET pagination: page 3 with 20 per page → LIMIT 20 OFFSET 40.
// The service layer clamps the values; here we only guard against zero.
func (db *DB) ListEntries(ctx context.Context, opts repository.ListOptions) ([]model.GuestbookEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := max(opts.Offset, 0)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, author_user_id, author_provider, author_username, author_avatar, message, created_at
		 FROM guestbook
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing guestbook: %w", err)
	}
	// Unclosed rows pin a pooled connection forever.
	defer rows.Close()

	entries := make([]model.GuestbookEntry, 0, limit)
	for rows.Next() {
		var e model.GuestbookEntry
		if err := rows.Scan(
			&e.ID, &e.Author.UserID, &e.Author.Provider, &e.Author.Username,
			&e.Author.Avatar, &e.Message, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning guestbook row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating guestbook: %w", err)
	}

	return entries, nil
}

// DeleteEntry returns apperror.ErrNotFound if nothing was deleted.
func (db *DB) DeleteEntry(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM guestbook WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting guestbook entry %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("guestbook entry", id)
	}

	return nil
}
