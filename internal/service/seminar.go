package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/model"
	"github.com/rejaka/portfolio/internal/repository"
)

const (
	// codeAlphabet leaves out 0/O and 1/I, which are easy to misread on a ticket.
	codeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codePrefix      = "SEM-"
	codeLength      = 6
	maxCodeAttempts = 5

	maxNameLength        = 100
	maxInstitutionLength = 150
	maxEmailLength       = 254
)

// NewRegistrationCode returns "SEM-" followed by six characters drawn from
// codeAlphabet with crypto/rand.
func NewRegistrationCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating registration code: %w", err)
	}
	// len(codeAlphabet) is 32, which divides 256: every index is equally likely.
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return codePrefix + string(buf), nil
}

// SeminarService handles seminar seat registrations.
type SeminarService struct {
	repo    repository.RegistrationRepository
	newCode func() (string, error)
	logger  *slog.Logger
}

func NewSeminarService(repo repository.RegistrationRepository, logger *slog.Logger) *SeminarService {
	return &SeminarService{
		repo:    repo,
		newCode: NewRegistrationCode,
		logger:  logger,
	}
}

// Register validates the attendee and stores a registration under a fresh
// code. A code collision is retried with a new code up to maxCodeAttempts
// times; a duplicate email is returned to the caller as a conflict.
func (s *SeminarService) Register(ctx context.Context, name, email, institution string) (*model.Registration, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	institution = strings.TrimSpace(institution)

	if err := validateRegistration(name, email, institution); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}

		reg := &model.Registration{
			Code:        code,
			Name:        name,
			Email:       email,
			Institution: institution,
		}
		err = s.repo.CreateRegistration(ctx, reg)
		if err == nil {
			s.logger.Info("seminar registration created",
				slog.String("code", reg.Code),
				slog.Int("attempt", attempt),
			)
			return reg, nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrConflict) && appErr.Field == "code" {
			s.logger.Warn("registration code collision, retrying",
				slog.String("code", code),
				slog.Int("attempt", attempt),
			)
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("no free registration code after %d attempts", maxCodeAttempts)
}

// Lookup returns the registration for code. Codes are matched
// case-insensitively since attendees type them in by hand.
func (s *SeminarService) Lookup(ctx context.Context, code string) (*model.Registration, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !strings.HasPrefix(code, codePrefix) || len(code) != len(codePrefix)+codeLength {
		return nil, apperror.ValidationFailed("code", "invalid registration code")
	}
	return s.repo.GetRegistrationByCode(ctx, code)
}

func validateRegistration(name, email, institution string) error {
	switch {
	case name == "":
		return apperror.ValidationFailed("name", "name is required")
	case utf8.RuneCountInString(name) > maxNameLength:
		return apperror.ValidationFailed("name", fmt.Sprintf("name must be %d characters or less", maxNameLength))
	case email == "":
		return apperror.ValidationFailed("email", "email is required")
	case len(email) > maxEmailLength:
		return apperror.ValidationFailed("email", "email is too long")
	case institution == "":
		return apperror.ValidationFailed("institution", "institution is required")
	case utf8.RuneCountInString(institution) > maxInstitutionLength:
		return apperror.ValidationFailed("institution",
			fmt.Sprintf("institution must be %d characters or less", maxInstitutionLength))
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperror.ValidationFailed("email", "email is not valid")
	}
	return nil
}
