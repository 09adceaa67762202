package model

import "time"

// RoomUsageStats is the per-room usage ledger: a derived aggregate
// maintained incrementally by the booking engine alongside every
// reservation mutation.  Exactly one row exists per room once the
// room has seen its first booking (rooms created through the admin
// API are seeded with a zero row up front).  Reservations remain the
// source of truth; nothing recomputes this ledger from scratch.
//
// Fields:
//  ID            – primary key identifier.
//  RoomID        – room this ledger row aggregates.
//  TotalBookings – running booking count, never below zero.
//  HoursBooked   – running hours total; may carry fractional hours
//                  and is deliberately not clamped at zero.
//  LastUpdated   – timestamp of the last ledger mutation.
type RoomUsageStats struct {
	ID            uint64    `json:"id"`             // room_usage_stats.id
	RoomID        uint64    `json:"room_id"`        // room_usage_stats.room_id
	TotalBookings int       `json:"total_bookings"` // room_usage_stats.total_bookings
	HoursBooked   float64   `json:"hours_booked"`   // room_usage_stats.hours_booked
	LastUpdated   time.Time `json:"last_updated"`   // room_usage_stats.last_updated
}
