// Package booking implements the reservation booking engine: conflict
// detection, status transitions and the per-room usage ledger.  All
// expected failures are surfaced as one of the sentinel errors below
// so callers can branch with errors.Is instead of relying on an
// implicit unwind.  Handlers translate them into HTTP status codes
// (404, 400, 403, 409).
package booking

import (
	"errors"
	"fmt"
	"time"
)

// ErrRoomNotFound is returned when an operation references a room
// that does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when an operation references a
// reservation that does not exist.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrStatsNotFound is returned by Tx.StatsByRoom when no ledger row
// exists yet for a room.  The engine treats it as "create one now".
var ErrStatsNotFound = errors.New("room usage stats not found")

// ErrForbidden is returned when the acting user is neither the owner
// of the reservation nor an admin where admin rights are required.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidInput is returned for bad time ordering, past start
// times and unparseable status tokens.
var ErrInvalidInput = errors.New("invalid input")

// ErrConflict is returned when the requested window overlaps a
// confirmed reservation on the same room.
var ErrConflict = errors.New("room not available")

func conflictErr(roomID uint64, start, end time.Time) error {
	return fmt.Errorf("%w: room %d is booked from %s to %s",
		ErrConflict, roomID, start.Format(time.RFC3339), end.Format(time.RFC3339))
}
