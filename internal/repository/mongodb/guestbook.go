package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rejaka/portfolio/internal/model"
	"github.com/rejaka/portfolio/internal/repository"
)

func (s *Store) CreateEntry(ctx context.Context, entry *model.GuestbookEntry) error {
	entry.ID = xid.New().String()
	entry.CreatedAt = time.Now().UTC()

	if _, err := s.db.Collection(guestbookCollection).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("mongodb: creating guestbook entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*model.GuestbookEntry, error) {
	var e model.GuestbookEntry
	if err := s.findOne(ctx, guestbookCollection, bson.M{"_id": id}, &e, "guestbook entry", id); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEntries returns entries newest first; _id (an xid) breaks ties.
func (s *Store) ListEntries(ctx context.Context, opts repository.ListOptions) ([]model.GuestbookEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(max(opts.Offset, 0)))

	cur, err := s.db.Collection(guestbookCollection).Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing guestbook: %w", err)
	}

	entries := make([]model.GuestbookEntry, 0, limit)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("mongodb: decoding guestbook: %w", err)
	}
	return entries, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	return s.deleteOne(ctx, guestbookCollection, bson.M{"_id": id}, "guestbook entry", id)
}
