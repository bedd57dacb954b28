// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes MongoDB or SQLite
//
// Services take repository interfaces, never a concrete store, and return
// apperror values that the handlers translate into status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/model"
	"github.com/rejaka/portfolio/internal/repository"
)

const (
	MaxGuestbookMessageLength = 500
	DefaultListLimit          = 20
	MaxListLimit              = 100
)

// GuestbookService handles messages left by signed-in visitors.
type GuestbookService struct {
	repo   repository.GuestbookRepository
	filter *ProfanityFilter
	logger *slog.Logger
}

func NewGuestbookService(repo repository.GuestbookRepository, filter *ProfanityFilter, logger *slog.Logger) *GuestbookService {
	return &GuestbookService{
		repo:   repo,
		filter: filter,
		logger: logger,
	}
}

// Sign adds a message from user. The author is a snapshot: later profile
// changes do not rewrite old entries.
func (s *GuestbookService) Sign(ctx context.Context, user *model.User, message string) (*model.GuestbookEntry, error) {
	if user == nil {
		return nil, apperror.Unauthorized("sign in to leave a message")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.ValidationFailed("message", "message is required")
	}
	if utf8.RuneCountInString(message) > MaxGuestbookMessageLength {
		return nil, apperror.ValidationFailed("message",
			fmt.Sprintf("message must be %d characters or less", MaxGuestbookMessageLength))
	}
	if s.filter.Contains(message) {
		return nil, apperror.ValidationFailed("message", "message contains inappropriate language")
	}

	entry := &model.GuestbookEntry{
		Author:  model.AuthorOf(user),
		Message: message,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		s.logger.Error("failed to create guestbook entry",
			slog.String("provider", user.Provider),
			slog.String("userId", user.UserID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating guestbook entry: %w", err)
	}

	s.logger.Info("guestbook signed",
		slog.String("id", entry.ID),
		slog.String("provider", user.Provider),
		slog.String("userId", user.UserID),
	)
	return entry, nil
}

// List returns entries newest first. limit is clamped to 1..MaxListLimit
// (0 means DefaultListLimit) and a negative offset is treated as 0.
func (s *GuestbookService) List(ctx context.Context, limit, offset int) ([]model.GuestbookEntry, error) {
	entries, err := s.repo.ListEntries(ctx, clampPage(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("listing guestbook entries: %w", err)
	}
	return entries, nil
}

// Delete removes entry id. Only its author may do that.
func (s *GuestbookService) Delete(ctx context.Context, user *model.User, id string) error {
	if user == nil {
		return apperror.Unauthorized("sign in to delete a message")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "entry ID is required")
	}

	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if !entry.Author.Owns(user) {
		return apperror.Forbidden("you can only delete your own messages")
	}

	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}

	s.logger.Info("guestbook entry deleted", slog.String("id", id))
	return nil
}

func clampPage(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
