package model

import (
	"fmt"
	"strings"
	"time"
)

// Reservation status values.  Only these two states exist; a
// cancelled reservation keeps its row and can be re-confirmed by an
// admin status update.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Reservation records a booking of one meeting room by one user for
// a time window.  All timestamps are stored in UTC.  Confirmed
// reservations on the same room must never overlap; that invariant
// is enforced by the booking engine, not by this type.
//
// Fields:
//  ID        – primary key identifier.
//  RoomID    – room being reserved.
//  UserID    – user who made the reservation.
//  Title     – meeting title shown in listings.
//  StartTime – window start (inclusive).
//  EndTime   – window end; always after StartTime.
//  Status    – StatusConfirmed or StatusCancelled.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    `json:"id"`         // reservations.id
	RoomID    uint64    `json:"room_id"`    // reservations.room_id
	UserID    uint64    `json:"user_id"`    // reservations.user_id
	Title     string    `json:"title"`      // reservations.title
	StartTime time.Time `json:"start_time"` // reservations.start_time
	EndTime   time.Time `json:"end_time"`   // reservations.end_time
	Status    string    `json:"status"`     // reservations.status
	CreatedAt time.Time `json:"created_at"` // reservations.created_at
	UpdatedAt time.Time `json:"updated_at"` // reservations.updated_at
}

// ParseStatus maps a status token to its canonical value and rejects
// anything other than confirmed/cancelled.
func ParseStatus(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("invalid status: %s", raw)
}
