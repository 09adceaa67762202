package model

import (
	"fmt"
	"strings"
	"time"
)

// Availability values stored in meeting_rooms.availability.
const (
	RoomAvailable   = "Available"
	RoomUnavailable = "Unavailable"
	RoomMaintenance = "Maintenance"
)

// Office locations a room can belong to.  Stored with underscores so
// the values survive URL path segments and query strings.
const (
	LocationPuneBaner        = "Pune_Baner"
	LocationPuneWadgaonsheri = "Pune_Wadgaonsheri"
	LocationHyderabad        = "Hyderabad"
)

// MeetingRoom mirrors the `meeting_rooms` table.  Capacity and
// location are informational only; conflict detection never looks at
// them.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – human readable room name.
//  Location     – one of the Location* constants.
//  Capacity     – number of seats.
//  Availability – one of the Room* constants.
//  Notes        – free-form notes appended by admins over time.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type MeetingRoom struct {
	ID           uint64    `json:"id"`           // meeting_rooms.id
	Name         string    `json:"name"`         // meeting_rooms.name
	Location     string    `json:"location"`     // meeting_rooms.location
	Capacity     int       `json:"capacity"`     // meeting_rooms.capacity
	Availability string    `json:"availability"` // meeting_rooms.availability
	Notes        string    `json:"notes"`        // meeting_rooms.notes
	CreatedAt    time.Time `json:"created_at"`   // meeting_rooms.created_at
	UpdatedAt    time.Time `json:"updated_at"`   // meeting_rooms.updated_at
}

// ParseLocation normalizes a location token ("Pune Baner" or
// "Pune_Baner") to its canonical constant.  Unknown tokens are an
// error so callers can reject bad input before touching the store.
func ParseLocation(raw string) (string, error) {
	tok := strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")
	for _, loc := range []string{LocationPuneBaner, LocationPuneWadgaonsheri, LocationHyderabad} {
		if strings.EqualFold(tok, loc) {
			return loc, nil
		}
	}
	return "", fmt.Errorf("invalid location: %s", raw)
}

// ParseAvailability normalizes an availability token to its canonical
// constant, rejecting unknown values.
func ParseAvailability(raw string) (string, error) {
	tok := strings.TrimSpace(raw)
	for _, av := range []string{RoomAvailable, RoomUnavailable, RoomMaintenance} {
		if strings.EqualFold(tok, av) {
			return av, nil
		}
	}
	return "", fmt.Errorf("invalid availability status: %s", raw)
}
