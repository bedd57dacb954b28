package model

import "time"

// Registration is a seat reserved for the seminar. Code is the human-facing
// ticket code (e.g. "SEM-7KQ2XD") printed on the attendee's ticket.
type Registration struct {
	ID          string    `json:"id"          bson:"_id"`
	Code        string    `json:"code"        bson:"code"`
	Name        string    `json:"name"        bson:"name"`
	Email       string    `json:"email"       bson:"email"`
	Institution string    `json:"institution" bson:"institution"`
	CreatedAt   time.Time `json:"createdAt"   bson:"createdAt"`
}
