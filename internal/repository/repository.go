// Package repository declares the storage interfaces. Two backends implement
// them: repository/mongo (the document database used in production) and
// repository/sqlite (embedded, for local runs and tests).
package repository

import (
	"context"

	"github.com/rejaka/portfolio/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists external identities.
type UserRepository interface {
	// Upsert writes every field of user keyed by (Provider, UserID), setting
	// CreatedAt to now. Logging in twice leaves exactly one record.
	Upsert(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, provider, userID string) (*model.User, error)
}

type GuestbookRepository interface {
	CreateEntry(ctx context.Context, entry *model.GuestbookEntry) error
	GetEntry(ctx context.Context, id string) (*model.GuestbookEntry, error)
	ListEntries(ctx context.Context, opts ListOptions) ([]model.GuestbookEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	ListComments(ctx context.Context, slug string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type LikeRepository interface {
	// AddLike returns apperror.ErrConflict if the identity already liked the post.
	AddLike(ctx context.Context, like *model.Like) error
	// RemoveLike returns apperror.ErrNotFound if there was no like to remove.
	RemoveLike(ctx context.Context, slug, provider, userID string) error
	HasLiked(ctx context.Context, slug, provider, userID string) (bool, error)
	CountLikes(ctx context.Context, slug string) (int64, error)
}

type RegistrationRepository interface {
	// CreateRegistration returns apperror.ErrConflict when the code or the
	// email is already taken; Field on the AppError says which.
	CreateRegistration(ctx context.Context, reg *model.Registration) error
	GetRegistrationByCode(ctx context.Context, code string) (*model.Registration, error)
}

// Store bundles every repository a backend provides.
type Store interface {
	UserRepository
	GuestbookRepository
	CommentRepository
	LikeRepository
	RegistrationRepository
	Close() error
}
