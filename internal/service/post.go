package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/model"
	"github.com/rejaka/portfolio/internal/repository"
)

const MaxCommentLength = 1000

// slugPattern matches blog post slugs as they appear in /blog/{slug}.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const maxSlugLength = 120

// ValidateSlug rejects anything that cannot be a post slug.
func ValidateSlug(slug string) error {
	if slug == "" || len(slug) > maxSlugLength || !slugPattern.MatchString(slug) {
		return apperror.ValidationFailed("slug", "invalid post slug")
	}
	return nil
}

// PostService handles comments and likes on blog posts. Posts themselves
// live in the static site; only the slug is known here.
type PostService struct {
	comments repository.CommentRepository
	likes    repository.LikeRepository
	filter   *ProfanityFilter
	logger   *slog.Logger
}

func NewPostService(
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	filter *ProfanityFilter,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		comments: comments,
		likes:    likes,
		filter:   filter,
		logger:   logger,
	}
}

// =========================================================================
// COMMENTS
// =========================================================================

// Comments returns the thread on slug, oldest first.
func (s *PostService) Comments(ctx context.Context, slug string) ([]model.Comment, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListComments(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

func (s *PostService) AddComment(ctx context.Context, user *model.User, slug, content string) (*model.Comment, error) {
	if user == nil {
		return nil, apperror.Unauthorized("sign in to comment")
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}
	if s.filter.Contains(content) {
		return nil, apperror.ValidationFailed("content", "comment contains inappropriate language")
	}

	comment := &model.Comment{
		PostSlug: slug,
		Author:   model.AuthorOf(user),
		Content:  content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment added",
		slog.String("slug", slug),
		slog.String("id", comment.ID),
		slog.String("provider", user.Provider),
		slog.String("userId", user.UserID),
	)
	return comment, nil
}

// DeleteComment removes comment id from slug. A comment that exists under
// another slug is reported as not found.
func (s *PostService) DeleteComment(ctx context.Context, user *model.User, slug, id string) error {
	if user == nil {
		return apperror.Unauthorized("sign in to delete a comment")
	}
	if err := ValidateSlug(slug); err != nil {
		return err
	}

	comment, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.PostSlug != slug {
		return apperror.NotFound("comment", id)
	}
	if !comment.Author.Owns(user) {
		return apperror.Forbidden("you can only delete your own comments")
	}

	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("comment deleted", slog.String("slug", slug), slog.String("id", id))
	return nil
}

// =========================================================================
// LIKES
// =========================================================================

// Likes returns the like count of slug and whether user (nil for anonymous
// visitors) is among them.
func (s *PostService) Likes(ctx context.Context, slug string, user *model.User) (*model.LikeSummary, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	return s.summary(ctx, slug, user)
}

// ToggleLike likes slug for user, or takes the like back if there was one.
//
// The insert is attempted first and the unique (slug, provider, userId) key
// decides: a conflict means the like already existed, so it is removed.
// Two racing toggles from the same user therefore never produce two likes.
func (s *PostService) ToggleLike(ctx context.Context, user *model.User, slug string) (*model.LikeSummary, error) {
	if user == nil {
		return nil, apperror.Unauthorized("sign in to like a post")
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	err := s.likes.AddLike(ctx, &model.Like{
		PostSlug: slug,
		UserID:   user.UserID,
		Provider: user.Provider,
	})
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrConflict):
		if err := s.likes.RemoveLike(ctx, slug, user.Provider, user.UserID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("removing like: %w", err)
		}
	default:
		return nil, fmt.Errorf("adding like: %w", err)
	}

	return s.summary(ctx, slug, user)
}

func (s *PostService) summary(ctx context.Context, slug string, user *model.User) (*model.LikeSummary, error) {
	count, err := s.likes.CountLikes(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}

	summary := &model.LikeSummary{Count: count}
	if user != nil {
		liked, err := s.likes.HasLiked(ctx, slug, user.Provider, user.UserID)
		if err != nil {
			return nil, fmt.Errorf("checking like: %w", err)
		}
		summary.Liked = liked
	}
	return summary, nil
}
