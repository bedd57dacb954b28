package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rejaka/portfolio/internal/model"
)

// Upsert sets every field of the identity, including createdAt, in a single
// update with upsert=true keyed by (provider, userId).
func (s *Store) Upsert(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC()

	filter := bson.M{"provider": user.Provider, "userId": user.UserID}
	update := bson.M{"$set": bson.M{
		"userId":    user.UserID,
		"username":  user.Username,
		"email":     user.Email,
		"avatar":    user.Avatar,
		"provider":  user.Provider,
		"createdAt": user.CreatedAt,
	}}

	_, err := s.db.Collection(usersCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb: upserting user %s/%s: %w", user.Provider, user.UserID, err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, provider, userID string) (*model.User, error) {
	var u model.User
	filter := bson.M{"provider": provider, "userId": userID}
	if err := s.findOne(ctx, usersCollection, filter, &u, "user", provider+"/"+userID); err != nil {
		return nil, err
	}
	return &u, nil
}
