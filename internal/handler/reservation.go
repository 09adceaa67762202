package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/booking"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	publisher "github.com/iliyamo/meeting-room-booking/internal/service"
)

// ReservationHandler exposes the booking engine over HTTP.  Reads go
// straight to the query repository; every mutation runs through the
// engine so conflict checks and the usage ledger stay consistent.
type ReservationHandler struct {
	Engine       *booking.Engine
	Reservations *repository.ReservationRepo
}

func NewReservationHandler(e *booking.Engine, r *repository.ReservationRepo) *ReservationHandler {
	return &ReservationHandler{Engine: e, Reservations: r}
}

type reservationReq struct {
	RoomID    uint64    `json:"room_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Create books a room for the authenticated user.
func (h *ReservationHandler) Create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.Create(ctx, actor, booking.CreateInput{
		RoomID:    req.RoomID,
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return bookingError(c, err)
	}

	// Event delivery is best effort; the booking stands either way.
	_ = publisher.PublishReservationEvent(ctx, queue.NewReservationEvent(queue.EventReservationConfirmed, res, actor.Email))

	return c.JSON(http.StatusCreated, res)
}

// Update changes a reservation's room, window or title.
func (h *ReservationHandler) Update(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.Update(ctx, actor, id, booking.UpdateInput{
		RoomID:    req.RoomID,
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return bookingError(c, err)
	}

	_ = publisher.PublishReservationEvent(ctx, queue.NewReservationEvent(queue.EventReservationUpdated, res, actor.Email))

	return c.JSON(http.StatusOK, res)
}

// Cancel marks a reservation cancelled.  Repeating the call on an
// already-cancelled reservation succeeds without further effect.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Engine.Cancel(ctx, actor, id); err != nil {
		return bookingError(c, err)
	}

	if res, err := h.Reservations.GetByID(ctx, id); err == nil {
		_ = publisher.PublishReservationEvent(ctx, queue.NewReservationEvent(queue.EventReservationCancelled, res, actor.Email))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}

// Mine lists the caller's reservations.
func (h *ReservationHandler) Mine(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Reservations.ListByUser(ctx, actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID returns one reservation.  Non-admins only see their own.
func (h *ReservationHandler) GetByID(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.UserID != actor.UserID && !actor.Admin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, res)
}

// ListAll returns every reservation, optionally filtered by status
// or by the booking user's email.  Admin only; the router guards the
// route.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if email := c.QueryParam("email"); email != "" {
		out, err := h.Reservations.ListByUserEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, out)
	}

	if raw := c.QueryParam("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		out, err := h.Reservations.ListByStatus(ctx, status)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, out)
	}

	out, err := h.Reservations.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}
