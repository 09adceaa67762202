package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// StatsRepo reads the room usage ledger for the admin stats
// endpoints.  All writes happen inside booking transactions (see
// BookingStore) or when a room is created.
type StatsRepo struct{ DB *sql.DB }

// NewStatsRepo returns a StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// ListAll returns the ledger rows for every room.
func (r *StatsRepo) ListAll(ctx context.Context) ([]model.RoomUsageStats, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, room_id, total_bookings, hours_booked, last_updated FROM room_usage_stats ORDER BY room_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoomUsageStats, 0)
	for rows.Next() {
		var s model.RoomUsageStats
		if err := rows.Scan(&s.ID, &s.RoomID, &s.TotalBookings, &s.HoursBooked, &s.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByRoom returns the ledger row for one room or sql.ErrNoRows
// when the room has never been booked nor seeded.
func (r *StatsRepo) GetByRoom(ctx context.Context, roomID uint64) (*model.RoomUsageStats, error) {
	var s model.RoomUsageStats
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, room_id, total_bookings, hours_booked, last_updated FROM room_usage_stats WHERE room_id = ?`,
		roomID).Scan(&s.ID, &s.RoomID, &s.TotalBookings, &s.HoursBooked, &s.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
