// Package mongodb implements the repository interfaces on MongoDB, the
// document database the site runs on in production.
//
// Collections: users, guestbook, comments, likes, registrations.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/repository"
)

const (
	usersCollection         = "users"
	guestbookCollection     = "guestbook"
	commentsCollection      = "comments"
	likesCollection         = "likes"
	registrationsCollection = "registrations"

	registrationCodeIndex  = "code_unique"
	registrationEmailIndex = "email_unique"
)

var _ repository.Store = (*Store)(nil)

// Store holds a database handle. client is nil when the Store was built
// around a caller-owned database (see New).
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings dbName and makes sure the indexes exist.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: connecting: %w", err)
	}

	db := client.Database(dbName)
	var result bson.M
	if err := db.RunCommand(ctx, bson.M{"ping": 1}).Decode(&result); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: pinging %s: %w", dbName, err)
	}

	s := &Store{client: client, db: db}
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps an already connected database. Close is then a no-op.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

// EnsureIndexes creates the unique keys the repositories rely on. Creating an
// index that already exists with the same spec is a no-op on the server.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		guestbookCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "postSlug", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		likesCollection: {
			{
				Keys:    bson.D{{Key: "postSlug", Value: 1}, {Key: "provider", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		registrationsCollection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true).SetName(registrationCodeIndex)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(registrationEmailIndex)},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongodb: creating %s indexes: %w", coll, err)
		}
	}
	return nil
}

// findOne decodes the single document matching filter into out, mapping
// "no documents" onto apperror.NotFound(resource, id).
func (s *Store) findOne(ctx context.Context, coll string, filter any, out any, resource, id string) error {
	err := s.db.Collection(coll).FindOne(ctx, filter).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperror.NotFound(resource, id)
		}
		return fmt.Errorf("mongodb: finding %s %s: %w", resource, id, err)
	}
	return nil
}

// deleteOne maps a zero DeletedCount onto apperror.NotFound.
func (s *Store) deleteOne(ctx context.Context, coll string, filter any, resource, id string) error {
	res, err := s.db.Collection(coll).DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("mongodb: deleting %s %s: %w", resource, id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
