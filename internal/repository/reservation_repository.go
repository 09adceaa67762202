package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// ReservationRepo is the read-only query layer over reservations.
// Mutations go through the booking engine and its transactional
// store; these lookups run without locks (read-committed is enough).
// Lookup-by-id misses surface as sql.ErrNoRows, which handlers
// translate to 404.
type ReservationRepo struct{ DB *sql.DB }

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationCols = `id, room_id, user_id, title, start_time, end_time, status, created_at, updated_at`

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(&r.ID, &r.RoomID, &r.UserID, &r.Title, &r.StartTime, &r.EndTime, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var r model.Reservation
		if err := rows.Scan(&r.ID, &r.RoomID, &r.UserID, &r.Title, &r.StartTime, &r.EndTime, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListAll returns every reservation ordered newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations ORDER BY start_time DESC`)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// GetByID returns a single reservation or sql.ErrNoRows.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return scanReservation(r.DB.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id))
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE user_id = ? ORDER BY start_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListByUserEmail resolves the user through the users table so
// callers holding only an email (the JWT subject line) can list
// without a prior lookup.
func (r *ReservationRepo) ListByUserEmail(ctx context.Context, email string) ([]model.Reservation, error) {
	const q = `SELECT r.id, r.room_id, r.user_id, r.title, r.start_time, r.end_time, r.status, r.created_at, r.updated_at
	           FROM reservations r
	           JOIN users u ON u.id = r.user_id
	           WHERE u.email = ?
	           ORDER BY r.start_time DESC`
	rows, err := r.DB.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListByRoom returns every reservation on a room, newest first.
func (r *ReservationRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE room_id = ? ORDER BY start_time DESC`, roomID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListByRoomAndRange returns reservations strictly contained in
// [from, to]: start_time >= from AND end_time <= to.  This is a
// containment filter for reporting, intentionally different from the
// engine's overlap test.
func (r *ReservationRepo) ListByRoomAndRange(ctx context.Context, roomID uint64, from, to time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations
	           WHERE room_id = ? AND start_time >= ? AND end_time <= ?
	           ORDER BY start_time`
	rows, err := r.DB.QueryContext(ctx, q, roomID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListByStatus filters on a canonical status value.
func (r *ReservationRepo) ListByStatus(ctx context.Context, status string) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE status = ? ORDER BY start_time DESC`, status)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}
