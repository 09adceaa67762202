package model

import "time"

// Feedback is a user's rating and comment for a meeting room.
type Feedback struct {
	ID        uint64    `json:"id"`         // feedback.id
	RoomID    uint64    `json:"room_id"`    // feedback.room_id
	UserID    uint64    `json:"user_id"`    // feedback.user_id
	Rating    int       `json:"rating"`     // feedback.rating (1-5)
	Comment   string    `json:"comment"`    // feedback.comment
	CreatedAt time.Time `json:"created_at"` // feedback.created_at
}
