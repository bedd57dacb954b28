package model

import "time"

// Comment is attached to a blog post identified by its slug.
type Comment struct {
	ID        string    `json:"id"        bson:"_id"`
	PostSlug  string    `json:"postSlug"  bson:"postSlug"`
	Author    Author    `json:"author"    bson:"author"`
	Content   string    `json:"content"   bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Like records that one identity liked one post. At most one per (slug, identity).
type Like struct {
	PostSlug  string    `bson:"postSlug"`
	UserID    string    `bson:"userId"`
	Provider  string    `bson:"provider"`
	CreatedAt time.Time `bson:"createdAt"`
}

// LikeSummary is what the like endpoints return.
type LikeSummary struct {
	Count int64 `json:"count"`
	Liked bool  `json:"liked"` // whether the current session has liked the post
}
