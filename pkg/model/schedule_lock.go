package model

import "time"

// ScheduleLock is an advisory lock keyed on (room, date) that serializes
// concurrent create/update attempts on the same slot while the transactional
// conflict check runs.
type ScheduleLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
