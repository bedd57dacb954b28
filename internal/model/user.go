// Package model defines the data structures used throughout the application.
package model

import "time"

// Provider names. They double as URL segments (/api/auth/{provider}) and as
// the identity namespace for users.
const (
	ProviderDiscord = "discord"
	ProviderGitHub  = "github"
	ProviderGoogle  = "google"
)

// User is one external identity. The same person signing in with GitHub and
// with Google gets two independent records: identities are never merged.
//
// UserID is always a string, even for providers that hand out numeric IDs
// (GitHub), so that (Provider, UserID) is a uniform key across stores.
//
// CreatedAt is refreshed on every login, so in practice it is "last login".
type User struct {
	UserID    string    `json:"userId"              bson:"userId"    db:"user_id"`
	Username  string    `json:"username"            bson:"username"  db:"username"`
	Email     string    `json:"email"               bson:"email"     db:"email"` // empty when the provider withholds it
	Avatar    string    `json:"avatar"              bson:"avatar"    db:"avatar"`
	Provider  string    `json:"provider"            bson:"provider"  db:"provider"`
	CreatedAt time.Time `json:"createdAt,omitzero"  bson:"createdAt" db:"created_at"`
}

// Author is the snapshot of a User embedded in guestbook entries and comments.
type Author struct {
	UserID   string `json:"userId"   bson:"userId"`
	Provider string `json:"provider" bson:"provider"`
	Username string `json:"username" bson:"username"`
	Avatar   string `json:"avatar"   bson:"avatar"`
}

// AuthorOf copies the public identity fields of u.
func AuthorOf(u *User) Author {
	return Author{
		UserID:   u.UserID,
		Provider: u.Provider,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}

// Owns reports whether u is the author a.
func (a Author) Owns(u *User) bool {
	return u != nil && a.UserID == u.UserID && a.Provider == u.Provider
}
