package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"NotFound", NotFound("guestbook entry", "abc123"), ErrNotFound, true},
		{"ValidationFailed", ValidationFailed("message", "message is required"), ErrValidation, true},
		{"Conflict", Conflict("registration", "ada@example.com"), ErrConflict, true},
		{"Unauthorized", Unauthorized("sign in to post"), ErrUnauthorized, true},
		{"Forbidden", Forbidden("not your entry"), ErrForbidden, true},
		{"Forbidden is not Unauthorized", Forbidden("not your entry"), ErrUnauthorized, false},
		{"NotFound is not Validation", NotFound("comment", "c1"), ErrValidation, false},
		{"wrapped twice", fmt.Errorf("service: %w", fmt.Errorf("repo: %w", NotFound("like", "x"))), ErrNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  *AppError
		want string
	}{
		{NotFound("guestbook entry", "abc123"), "guestbook entry not found with id abc123"},
		{ValidationFailed("content", "comment is too long"), "comment is too long"},
		{Conflict("registration", "ada@example.com"), "registration already exists for ada@example.com"},
		{Unauthorized("no active session"), "no active session"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestAsRecoversField(t *testing.T) {
	// Repositories tag conflicts with the colliding column; the seminar
	// service reads it back through a wrap.
	err := fmt.Errorf("creating registration: %w", &AppError{
		Err:     ErrConflict,
		Message: "registration code already taken",
		Field:   "code",
	})

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As did not find the AppError")
	}
	if appErr.Field != "code" {
		t.Errorf("Field = %q, want %q", appErr.Field, "code")
	}
	if appErr.Unwrap() != ErrConflict {
		t.Errorf("Unwrap() = %v, want %v", appErr.Unwrap(), ErrConflict)
	}
}
