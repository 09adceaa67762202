// Package queue defines the reservation event payloads exchanged over
// the message broker and the background consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// Event type tokens carried in ReservationEvent.Type.
const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationUpdated   = "reservation.updated"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published on every reservation mutation.  It
// carries enough to log, notify or feed analytics without a query
// back to the primary database.
type ReservationEvent struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id"`
	RoomID        uint64 `json:"room_id"`
	UserID        uint64 `json:"user_id"`
	UserEmail     string `json:"user_email"`
	Title         string `json:"title"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}

// NewReservationEvent builds an event from a reservation snapshot.
// Every event gets a fresh UUID so consumers can deduplicate.
func NewReservationEvent(eventType string, r *model.Reservation, userEmail string) ReservationEvent {
	return ReservationEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		UserID:        r.UserID,
		UserEmail:     userEmail,
		Title:         r.Title,
		StartTime:     r.StartTime.UTC().Format(time.RFC3339),
		EndTime:       r.EndTime.UTC().Format(time.RFC3339),
		Status:        r.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}
