package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/model"
	"github.com/rejaka/portfolio/internal/repository"
)

// These tests run against mtest's mock deployment: every driver round trip
// consumes one queued server reply, so each case queues exactly what the
// operation under test sends.

func TestUpsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sets createdAt and succeeds", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		user := &model.User{UserID: "80351110224678912", Username: "Nelly", Provider: model.ProviderDiscord}
		before := time.Now().UTC()
		require.NoError(mt, store.Upsert(context.Background(), user))
		assert.False(mt, user.CreatedAt.Before(before), "createdAt should be the login time")
	})

	mt.Run("propagates write errors", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Name:    "ShutdownInProgress",
			Message: "server shutting down",
		}))

		err := store.Upsert(context.Background(), &model.User{UserID: "1", Provider: model.ProviderGitHub})
		assert.Error(mt, err)
	})
}

func TestGetUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "portfolio.users", mtest.FirstBatch, bson.D{
			{Key: "userId", Value: "583231"},
			{Key: "username", Value: "The Octocat"},
			{Key: "email", Value: "octocat@github.com"},
			{Key: "avatar", Value: "https://avatars.githubusercontent.com/u/583231"},
			{Key: "provider", Value: "github"},
		}))

		u, err := store.GetUser(context.Background(), "github", "583231")
		require.NoError(mt, err)
		assert.Equal(mt, "The Octocat", u.Username)
		assert.Equal(mt, "octocat@github.com", u.Email)
	})

	mt.Run("not found", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "portfolio.users", mtest.FirstBatch))

		_, err := store.GetUser(context.Background(), "github", "missing")
		assert.True(mt, errors.Is(err, apperror.ErrNotFound), "got %v", err)
	})
}

func TestListEntries(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes a page", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "portfolio.guestbook", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "b"}, {Key: "message", Value: "newer"}, {Key: "author", Value: bson.D{{Key: "username", Value: "ada"}}}},
			bson.D{{Key: "_id", Value: "a"}, {Key: "message", Value: "older"}},
		))

		entries, err := store.ListEntries(context.Background(), repository.ListOptions{Limit: 2})
		require.NoError(mt, err)
		require.Len(mt, entries, 2)
		assert.Equal(mt, "newer", entries[0].Message)
		assert.Equal(mt, "ada", entries[0].Author.Username)
	})
}

func TestDeleteEntry_NotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("zero deleted", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := store.DeleteEntry(context.Background(), "missing")
		assert.True(mt, errors.Is(err, apperror.ErrNotFound), "got %v", err)
	})
}

func TestAddLike_Duplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key is a conflict", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: portfolio.likes",
		}))

		err := store.AddLike(context.Background(), &model.Like{PostSlug: "hello-world", Provider: "github", UserID: "1"})
		assert.True(mt, errors.Is(err, apperror.ErrConflict), "got %v", err)
	})
}

func TestCountLikes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reads n", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "portfolio.likes", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}},
		))

		n, err := store.CountLikes(context.Background(), "hello-world")
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}

func TestCreateRegistration_DuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("email index", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: portfolio.registrations index: email_unique dup key",
		}))

		err := store.CreateRegistration(context.Background(), &model.Registration{Code: "SEM-AAAAAA", Email: "ada@example.com"})
		var appErr *apperror.AppError
		require.True(mt, errors.As(err, &appErr), "got %v", err)
		assert.Equal(mt, "email", appErr.Field)
	})

	mt.Run("code index", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: portfolio.registrations index: code_unique dup key",
		}))

		err := store.CreateRegistration(context.Background(), &model.Registration{Code: "SEM-AAAAAA", Email: "grace@example.com"})
		var appErr *apperror.AppError
		require.True(mt, errors.As(err, &appErr), "got %v", err)
		assert.Equal(mt, "code", appErr.Field)
	})
}
