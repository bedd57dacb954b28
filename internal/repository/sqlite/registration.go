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

// CreateRegistration maps the two UNIQUE constraints onto field-tagged
// conflicts so the service can tell a code collision (retry) from a
// duplicate email (reject).
func (db *DB) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	reg.ID = xid.New().String()
	reg.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO registrations (id, code, name, email, institution, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.Code, reg.Name, reg.Email, reg.Institution, reg.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "registrations.email"):
			return &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "this email is already registered",
				Field:   "email",
			}
		case isUniqueViolation(err, "registrations.code"):
			return &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "registration code already in use",
				Field:   "code",
			}
		}
		return fmt.Errorf("sqlite: creating registration: %w", err)
	}
	return nil
}

func (db *DB) GetRegistrationByCode(ctx context.Context, code string) (*model.Registration, error) {
	var r model.Registration
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, code, name, email, institution, created_at
		 FROM registrations WHERE code = ?`,
		code,
	).Scan(&r.ID, &r.Code, &r.Name, &r.Email, &r.Institution, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("registration", code)
		}
		return nil, fmt.Errorf("sqlite: getting registration %s: %w", code, err)
	}
	return &r, nil
}
