package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// RoomRepo provides CRUD and browse queries for meeting rooms.
type RoomRepo struct{ DB *sql.DB }

// NewRoomRepo returns a RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomCols = `id, name, location, capacity, availability, notes, created_at, updated_at`

func collectRooms(rows *sql.Rows) ([]model.MeetingRoom, error) {
	defer rows.Close()
	out := make([]model.MeetingRoom, 0)
	for rows.Next() {
		var m model.MeetingRoom
		if err := rows.Scan(&m.ID, &m.Name, &m.Location, &m.Capacity, &m.Availability, &m.Notes, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListAll returns every room ordered by name.
func (r *RoomRepo) ListAll(ctx context.Context) ([]model.MeetingRoom, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+roomCols+` FROM meeting_rooms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// GetByID returns a single room or sql.ErrNoRows.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.MeetingRoom, error) {
	var m model.MeetingRoom
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+roomCols+` FROM meeting_rooms WHERE id = ?`, id).Scan(
		&m.ID, &m.Name, &m.Location, &m.Capacity, &m.Availability, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListAvailable returns rooms whose availability flag is Available.
func (r *RoomRepo) ListAvailable(ctx context.Context) ([]model.MeetingRoom, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+roomCols+` FROM meeting_rooms WHERE availability = ? ORDER BY name`, model.RoomAvailable)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// ListByLocation filters on a canonical location value.
func (r *RoomRepo) ListByLocation(ctx context.Context, location string) ([]model.MeetingRoom, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+roomCols+` FROM meeting_rooms WHERE location = ? ORDER BY name`, location)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// ListByMinCapacity returns rooms seating at least the given number.
func (r *RoomRepo) ListByMinCapacity(ctx context.Context, capacity int) ([]model.MeetingRoom, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+roomCols+` FROM meeting_rooms WHERE capacity >= ? ORDER BY capacity, name`, capacity)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// ListFreeForWindow returns available rooms with no confirmed
// reservation overlapping [start, end].  The overlap condition here
// matches the booking engine's inclusive-boundary rule.
func (r *RoomRepo) ListFreeForWindow(ctx context.Context, start, end time.Time) ([]model.MeetingRoom, error) {
	const q = `SELECT ` + roomCols + ` FROM meeting_rooms m
	           WHERE m.availability = ?
	             AND NOT EXISTS (
	               SELECT 1 FROM reservations res
	               WHERE res.room_id = m.id AND res.status = 'confirmed'
	                 AND res.start_time <= ? AND res.end_time >= ?)
	           ORDER BY m.name`
	rows, err := r.DB.QueryContext(ctx, q, model.RoomAvailable, end.UTC(), start.UTC())
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// Create inserts a room and seeds its zero usage-ledger row in the
// same transaction, so the stats endpoints can always resolve rooms
// created through the admin API.
func (r *RoomRepo) Create(ctx context.Context, m *model.MeetingRoom) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO meeting_rooms (name, location, capacity, availability, notes) VALUES (?, ?, ?, ?, ?)`,
		m.Name, m.Location, m.Capacity, m.Availability, m.Notes)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO room_usage_stats (room_id, total_bookings, hours_booked, last_updated) VALUES (?, 0, 0, ?)`,
		m.ID, time.Now().UTC()); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM meeting_rooms WHERE id = ?`, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update persists name/location/capacity/availability/notes changes.
func (r *RoomRepo) Update(ctx context.Context, m *model.MeetingRoom) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE meeting_rooms SET name = ?, location = ?, capacity = ?, availability = ?, notes = ? WHERE id = ?`,
		m.Name, m.Location, m.Capacity, m.Availability, m.Notes, m.ID)
	return err
}

// Delete removes a room.  Dependent stats rows go with it via the
// foreign key; reservations keep their rows for history.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM meeting_rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
