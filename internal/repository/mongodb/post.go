package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/model"
)

func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	c.ID = xid.New().String()
	c.CreatedAt = time.Now().UTC()

	if _, err := s.db.Collection(commentsCollection).InsertOne(ctx, c); err != nil {
		return fmt.Errorf("mongodb: creating comment on %s: %w", c.PostSlug, err)
	}
	return nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := s.findOne(ctx, commentsCollection, bson.M{"_id": id}, &c, "comment", id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListComments(ctx context.Context, slug string) ([]model.Comment, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.db.Collection(commentsCollection).Find(ctx, bson.M{"postSlug": slug}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing comments on %s: %w", slug, err)
	}

	comments := []model.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("mongodb: decoding comments: %w", err)
	}
	return comments, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return s.deleteOne(ctx, commentsCollection, bson.M{"_id": id}, "comment", id)
}

func likeFilter(slug, provider, userID string) bson.M {
	return bson.M{"postSlug": slug, "provider": provider, "userId": userID}
}

// AddLike leans on the unique (postSlug, provider, userId) index.
func (s *Store) AddLike(ctx context.Context, like *model.Like) error {
	like.CreatedAt = time.Now().UTC()

	if _, err := s.db.Collection(likesCollection).InsertOne(ctx, like); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("like", like.PostSlug)
		}
		return fmt.Errorf("mongodb: adding like on %s: %w", like.PostSlug, err)
	}
	return nil
}

func (s *Store) RemoveLike(ctx context.Context, slug, provider, userID string) error {
	return s.deleteOne(ctx, likesCollection, likeFilter(slug, provider, userID), "like", slug)
}

func (s *Store) HasLiked(ctx context.Context, slug, provider, userID string) (bool, error) {
	n, err := s.db.Collection(likesCollection).CountDocuments(ctx,
		likeFilter(slug, provider, userID), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongodb: checking like on %s: %w", slug, err)
	}
	return n > 0, nil
}

func (s *Store) CountLikes(ctx context.Context, slug string) (int64, error) {
	n, err := s.db.Collection(likesCollection).CountDocuments(ctx, bson.M{"postSlug": slug})
	if err != nil {
		return 0, fmt.Errorf("mongodb: counting likes on %s: %w", slug, err)
	}
	return n, nil
}
