package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/booking"
	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// BookingStore is the MySQL implementation of booking.Store.  Each
// WithinTx call maps to one database transaction; the per-room
// serialization the engine relies on comes from the FOR UPDATE lock
// taken by RoomForUpdate, so two concurrent bookings for the same
// room queue up behind each other instead of both passing the
// conflict check.
type BookingStore struct{ db *sql.DB }

// NewBookingStore returns a BookingStore bound to the given database.
func NewBookingStore(db *sql.DB) *BookingStore { return &BookingStore{db: db} }

// WithinTx begins a transaction, runs fn, and commits only when fn
// returns nil.  Any error (including the commit's) rolls everything
// back so a reservation write can never outlive a failed ledger
// write.
func (s *BookingStore) WithinTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&bookingTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type bookingTx struct{ tx *sql.Tx }

func (t *bookingTx) RoomForUpdate(ctx context.Context, roomID uint64) (*model.MeetingRoom, error) {
	const q = `SELECT id, name, location, capacity, availability, notes, created_at, updated_at
	           FROM meeting_rooms WHERE id = ? FOR UPDATE`
	var m model.MeetingRoom
	err := t.tx.QueryRowContext(ctx, q, roomID).Scan(
		&m.ID, &m.Name, &m.Location, &m.Capacity, &m.Availability, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *bookingTx) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, room_id, user_id, title, start_time, end_time, status, created_at, updated_at
	           FROM reservations WHERE id = ? FOR UPDATE`
	var r model.Reservation
	err := t.tx.QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.RoomID, &r.UserID, &r.Title, &r.StartTime, &r.EndTime, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Overlap condition matches booking.Overlaps: boundaries inclusive,
// confirmed reservations only.
func (t *bookingTx) OverlapExists(ctx context.Context, roomID uint64, start, end time.Time) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM reservations
	             WHERE room_id = ? AND status = 'confirmed'
	               AND start_time <= ? AND end_time >= ?)`
	var exists bool
	if err := t.tx.QueryRowContext(ctx, q, roomID, end, start).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *bookingTx) OverlapExistsExcluding(ctx context.Context, reservationID, roomID uint64, start, end time.Time) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM reservations
	             WHERE id <> ? AND room_id = ? AND status = 'confirmed'
	               AND start_time <= ? AND end_time >= ?)`
	var exists bool
	if err := t.tx.QueryRowContext(ctx, q, reservationID, roomID, end, start).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *bookingTx) CreateReservation(ctx context.Context, r *model.Reservation) error {
	const q = `INSERT INTO reservations (room_id, user_id, title, start_time, end_time, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := t.tx.ExecContext(ctx, q, r.RoomID, r.UserID, r.Title, r.StartTime.UTC(), r.EndTime.UTC(), r.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	// Read back the defaults the database filled in.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return t.tx.QueryRowContext(ctx, sel, r.ID).Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (t *bookingTx) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	const q = `UPDATE reservations
	           SET room_id = ?, title = ?, start_time = ?, end_time = ?, status = ?
	           WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q, r.RoomID, r.Title, r.StartTime.UTC(), r.EndTime.UTC(), r.Status, r.ID)
	return err
}

func (t *bookingTx) StatsByRoom(ctx context.Context, roomID uint64) (*model.RoomUsageStats, error) {
	const q = `SELECT id, room_id, total_bookings, hours_booked, last_updated
	           FROM room_usage_stats WHERE room_id = ? FOR UPDATE`
	var s model.RoomUsageStats
	err := t.tx.QueryRowContext(ctx, q, roomID).Scan(
		&s.ID, &s.RoomID, &s.TotalBookings, &s.HoursBooked, &s.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrStatsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *bookingTx) UpsertStats(ctx context.Context, s *model.RoomUsageStats) error {
	if s.ID == 0 {
		const ins = `INSERT INTO room_usage_stats (room_id, total_bookings, hours_booked, last_updated)
		             VALUES (?, ?, ?, ?)`
		result, err := t.tx.ExecContext(ctx, ins, s.RoomID, s.TotalBookings, s.HoursBooked, s.LastUpdated.UTC())
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = uint64(id)
		return nil
	}
	const upd = `UPDATE room_usage_stats
	             SET total_bookings = ?, hours_booked = ?, last_updated = ?
	             WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, upd, s.TotalBookings, s.HoursBooked, s.LastUpdated.UTC(), s.ID)
	return err
}
