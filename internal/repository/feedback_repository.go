package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// FeedbackRepo stores user feedback for rooms.
type FeedbackRepo struct{ DB *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{DB: db} }

const feedbackCols = `id, room_id, user_id, rating, comment, created_at`

func collectFeedback(rows *sql.Rows) ([]model.Feedback, error) {
	defer rows.Close()
	out := make([]model.Feedback, 0)
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.RoomID, &f.UserID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Create inserts a feedback entry and fills in its ID.
func (r *FeedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	result, err := r.DB.ExecContext(ctx,
		"INSERT INTO feedback (room_id, user_id, rating, comment) VALUES (?,?,?,?)",
		f.RoomID, f.UserID, f.Rating, f.Comment)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM feedback WHERE id=?", f.ID).Scan(&f.CreatedAt)
}

// ListByRoom returns all feedback for one room, newest first.
func (r *FeedbackRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Feedback, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+feedbackCols+" FROM feedback WHERE room_id=? ORDER BY created_at DESC", roomID)
	if err != nil {
		return nil, err
	}
	return collectFeedback(rows)
}

// ListByUser returns all feedback left by one user, newest first.
func (r *FeedbackRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Feedback, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+feedbackCols+" FROM feedback WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	return collectFeedback(rows)
}

// ListAll returns every feedback entry for the admin screen.
func (r *FeedbackRepo) ListAll(ctx context.Context) ([]model.Feedback, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+feedbackCols+" FROM feedback ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return collectFeedback(rows)
}

// Delete removes a feedback entry (admin operation).
func (r *FeedbackRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM feedback WHERE id=?", id)
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
