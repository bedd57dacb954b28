package model

import "time"

// GuestbookEntry is a message left on the site's guestbook by a signed-in visitor.
type GuestbookEntry struct {
	ID        string    `json:"id"        bson:"_id"`
	Author    Author    `json:"author"    bson:"author"`
	Message   string    `json:"message"   bson:"message"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
