package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// Actor identifies who is invoking an engine operation.  It is
// always passed in explicitly by the caller; the engine never reads
// identity from ambient state.
type Actor struct {
	UserID uint64
	Email  string
	Admin  bool
}

// CreateInput carries the fields for a new reservation.
type CreateInput struct {
	RoomID    uint64
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// UpdateInput carries the desired state of an existing reservation.
// Room and window are re-validated against confirmed reservations
// whenever either changes.
type UpdateInput struct {
	RoomID    uint64
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// Engine validates and executes reservation mutations against a
// Store, keeping the per-room usage ledger in step inside the same
// transaction.
type Engine struct {
	store Store
	now   func() time.Time // injectable clock for tests
}

// NewEngine returns an Engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Overlaps reports whether the windows [s1,e1] and [s2,e2] share at
// least one instant.  Boundaries are inclusive: a meeting ending at
// 11:00 conflicts with one starting at 11:00.  The SQL overlap
// queries mirror this exact rule.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !s2.After(e1)
}

// usageHours converts a window to ledger hours.  Durations are
// truncated to whole minutes before dividing, so 90m30s counts as
// 1.5 hours.
func usageHours(start, end time.Time) float64 {
	return end.Sub(start).Truncate(time.Minute).Minutes() / 60
}

// Create books a room for the actor.  It fails with ErrRoomNotFound,
// ErrInvalidInput (start >= end, start in the past) or ErrConflict;
// nothing is persisted on failure.  On success the reservation is
// stored as confirmed and the room's ledger gains one booking plus
// the window's hours.
func (e *Engine) Create(ctx context.Context, actor Actor, in CreateInput) (*model.Reservation, error) {
	var res *model.Reservation
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		if _, err := tx.RoomForUpdate(ctx, in.RoomID); err != nil {
			return err
		}
		if !in.StartTime.Before(in.EndTime) {
			return fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)
		}
		if in.StartTime.Before(e.now()) {
			return fmt.Errorf("%w: start time cannot be in the past", ErrInvalidInput)
		}
		busy, err := tx.OverlapExists(ctx, in.RoomID, in.StartTime, in.EndTime)
		if err != nil {
			return err
		}
		if busy {
			return conflictErr(in.RoomID, in.StartTime, in.EndTime)
		}
		res = &model.Reservation{
			RoomID:    in.RoomID,
			UserID:    actor.UserID,
			Title:     in.Title,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Status:    model.StatusConfirmed,
		}
		if err := tx.CreateReservation(ctx, res); err != nil {
			return err
		}
		return e.applyUsage(ctx, tx, in.RoomID, in.StartTime, in.EndTime, +1)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Update moves a reservation to a new room, window and/or title.
// Only the owner may update.  When the room changes, the new room is
// checked for conflicts and the ledger hours/count move from the old
// room to the new one.  When only the window changes, the conflict
// check excludes the reservation itself and the ledger is adjusted
// by the delta.  When neither changes, no check and no ledger change
// happen.  Status is never touched here.
func (e *Engine) Update(ctx context.Context, actor Actor, id uint64, in UpdateInput) (*model.Reservation, error) {
	var res *model.Reservation
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		res, err = tx.ReservationByID(ctx, id)
		if err != nil {
			return err
		}
		if res.UserID != actor.UserID {
			return fmt.Errorf("%w: no permission to update this reservation", ErrForbidden)
		}
		if !in.StartTime.Before(in.EndTime) {
			return fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)
		}

		switch {
		case in.RoomID != res.RoomID:
			// Lock both rooms in ascending id order so two concurrent
			// moves between the same pair cannot deadlock.
			if err := lockRooms(ctx, tx, res.RoomID, in.RoomID); err != nil {
				return err
			}
			busy, err := tx.OverlapExists(ctx, in.RoomID, in.StartTime, in.EndTime)
			if err != nil {
				return err
			}
			if busy {
				return conflictErr(in.RoomID, in.StartTime, in.EndTime)
			}
			if err := e.applyUsage(ctx, tx, res.RoomID, res.StartTime, res.EndTime, -1); err != nil {
				return err
			}
			res.RoomID = in.RoomID
			if err := e.applyUsage(ctx, tx, in.RoomID, in.StartTime, in.EndTime, +1); err != nil {
				return err
			}
		case !res.StartTime.Equal(in.StartTime) || !res.EndTime.Equal(in.EndTime):
			if _, err := tx.RoomForUpdate(ctx, res.RoomID); err != nil {
				return err
			}
			busy, err := tx.OverlapExistsExcluding(ctx, res.ID, res.RoomID, in.StartTime, in.EndTime)
			if err != nil {
				return err
			}
			if busy {
				return conflictErr(res.RoomID, in.StartTime, in.EndTime)
			}
			if err := e.applyUsage(ctx, tx, res.RoomID, res.StartTime, res.EndTime, -1); err != nil {
				return err
			}
			if err := e.applyUsage(ctx, tx, res.RoomID, in.StartTime, in.EndTime, +1); err != nil {
				return err
			}
		}

		res.Title = in.Title
		res.StartTime = in.StartTime
		res.EndTime = in.EndTime
		return tx.UpdateReservation(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Cancel marks a reservation cancelled and releases its window from
// the room's ledger.  The owner or an admin may cancel.  Cancelling
// an already-cancelled reservation is a no-op so repeated calls
// cannot double-decrement the ledger.
func (e *Engine) Cancel(ctx context.Context, actor Actor, id uint64) error {
	return e.store.WithinTx(ctx, func(tx Tx) error {
		res, err := tx.ReservationByID(ctx, id)
		if err != nil {
			return err
		}
		if res.UserID != actor.UserID && !actor.Admin {
			return fmt.Errorf("%w: no permission to cancel this reservation", ErrForbidden)
		}
		if res.Status == model.StatusCancelled {
			return nil
		}
		if _, err := tx.RoomForUpdate(ctx, res.RoomID); err != nil {
			return err
		}
		res.Status = model.StatusCancelled
		if err := tx.UpdateReservation(ctx, res); err != nil {
			return err
		}
		return e.applyUsage(ctx, tx, res.RoomID, res.StartTime, res.EndTime, -1)
	})
}

// UpdateStatus is the admin transition between confirmed and
// cancelled.  A confirmed->cancelled move releases the window from
// the ledger, cancelled->confirmed re-adds it, and a same-state
// update leaves the ledger untouched.  Unknown tokens fail with
// ErrInvalidInput.
func (e *Engine) UpdateStatus(ctx context.Context, id uint64, statusToken string) (*model.Reservation, error) {
	newStatus, err := model.ParseStatus(statusToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	var res *model.Reservation
	err = e.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		res, err = tx.ReservationByID(ctx, id)
		if err != nil {
			return err
		}
		if res.Status != newStatus {
			if _, err := tx.RoomForUpdate(ctx, res.RoomID); err != nil {
				return err
			}
			mult := -1
			if newStatus == model.StatusConfirmed {
				mult = +1
			}
			if err := e.applyUsage(ctx, tx, res.RoomID, res.StartTime, res.EndTime, mult); err != nil {
				return err
			}
		}
		res.Status = newStatus
		return tx.UpdateReservation(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// applyUsage folds one reservation window into a room's ledger with
// multiplier +1 (book) or -1 (release).  The ledger row is created
// on first use inside the same transaction.  TotalBookings is
// floored at zero; HoursBooked is not clamped.
func (e *Engine) applyUsage(ctx context.Context, tx Tx, roomID uint64, start, end time.Time, multiplier int) error {
	stats, err := tx.StatsByRoom(ctx, roomID)
	if errors.Is(err, ErrStatsNotFound) {
		stats = &model.RoomUsageStats{RoomID: roomID}
	} else if err != nil {
		return err
	}
	if multiplier > 0 {
		stats.TotalBookings++
	} else if stats.TotalBookings > 0 {
		stats.TotalBookings--
	}
	stats.HoursBooked += usageHours(start, end) * float64(multiplier)
	stats.LastUpdated = e.now().UTC()
	return tx.UpsertStats(ctx, stats)
}

func lockRooms(ctx context.Context, tx Tx, a, b uint64) error {
	if a > b {
		a, b = b, a
	}
	if _, err := tx.RoomForUpdate(ctx, a); err != nil {
		return err
	}
	_, err := tx.RoomForUpdate(ctx, b)
	return err
}
