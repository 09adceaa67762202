package booking

import (
	"context"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// Store is the durable backing for the engine.  Every engine
// operation runs inside exactly one WithinTx call: the existence
// check, the conflict check, the reservation write and the ledger
// write either all commit or all roll back.  The store's transaction
// isolation is the engine's only concurrency mechanism; the engine
// holds no in-memory locks.
type Store interface {
	// WithinTx runs fn inside a transaction.  A non-nil error from fn
	// rolls the transaction back and is returned unchanged.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of store operations available inside a transaction.
type Tx interface {
	// RoomForUpdate loads a room and locks its row until the
	// transaction ends, serializing concurrent bookings per room so
	// two overlapping create calls cannot both pass the conflict
	// check.  Returns ErrRoomNotFound when the room does not exist.
	RoomForUpdate(ctx context.Context, roomID uint64) (*model.MeetingRoom, error)

	// ReservationByID returns ErrReservationNotFound on a miss.
	ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)

	// OverlapExists reports whether any confirmed reservation on the
	// room overlaps [start, end] under the inclusive boundary rule
	// (see Overlaps).
	OverlapExists(ctx context.Context, roomID uint64, start, end time.Time) (bool, error)

	// OverlapExistsExcluding is OverlapExists ignoring the given
	// reservation id, used when moving an existing reservation.
	OverlapExistsExcluding(ctx context.Context, reservationID, roomID uint64, start, end time.Time) (bool, error)

	// CreateReservation inserts r and fills in its assigned ID.
	CreateReservation(ctx context.Context, r *model.Reservation) error

	// UpdateReservation persists room/title/window/status changes.
	UpdateReservation(ctx context.Context, r *model.Reservation) error

	// StatsByRoom returns the ledger row for a room, or
	// ErrStatsNotFound when none exists yet.
	StatsByRoom(ctx context.Context, roomID uint64) (*model.RoomUsageStats, error)

	// UpsertStats inserts or updates a ledger row.
	UpsertStats(ctx context.Context, s *model.RoomUsageStats) error
}
