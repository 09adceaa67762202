// Package router wires handlers, auth middleware, rate limiting and
// the response cache onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Rooms        *handler.RoomHandler
	Reservations *handler.ReservationHandler
	Feedback     *handler.FeedbackHandler
	Admin        *handler.AdminHandler
}

// Register mounts all routes.  Public browse endpoints sit behind the
// response cache; everything under /v1 (except /v1/auth and the room
// browse routes) requires a valid access token, and /v1/admin
// additionally requires the admin role.
func Register(e *echo.Echo, h Handlers, jwtSecret string, limiter, cache echo.MiddlewareFunc) {
	e.Use(limiter)

	e.GET("/healthz", handler.Health)

	// Public room browsing, cached.
	rooms := e.Group("/v1/rooms", cache)
	rooms.GET("", h.Rooms.List)
	rooms.GET("/available", h.Rooms.ListAvailable)
	rooms.GET("/free", h.Rooms.ListFree)
	rooms.GET("/capacity", h.Rooms.ListByMinCapacity)
	rooms.GET("/location/:location", h.Rooms.ListByLocation)
	rooms.GET("/:id", h.Rooms.GetByID)
	rooms.GET("/:id/feedback", h.Feedback.ListByRoom)

	// Session management.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/refresh-access", h.Auth.RefreshAccess)
	auth.POST("/logout", h.Auth.Logout, middleware.JWTAuth(jwtSecret))

	// Authenticated employee surface.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleEmployee, model.RoleAdmin))

	v1.GET("/me", h.Auth.Me)
	v1.PUT("/me", h.Auth.UpdateProfile)

	v1.POST("/reservations", h.Reservations.Create)
	v1.GET("/reservations/mine", h.Reservations.Mine)
	v1.GET("/reservations/:id", h.Reservations.GetByID)
	v1.PUT("/reservations/:id", h.Reservations.Update)
	v1.DELETE("/reservations/:id", h.Reservations.Cancel)

	v1.POST("/feedback", h.Feedback.Create)
	v1.GET("/feedback/mine", h.Feedback.Mine)

	// Admin surface.
	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/users/:id", h.Admin.GetUser)
	admin.PUT("/users/:id/role", h.Admin.UpdateUserRole)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)

	admin.POST("/rooms", h.Admin.CreateRoom)
	admin.PUT("/rooms/:id", h.Admin.UpdateRoom)
	admin.DELETE("/rooms/:id", h.Admin.DeleteRoom)
	admin.GET("/rooms/:id/reservations", h.Admin.ListRoomReservations)

	admin.GET("/reservations", h.Reservations.ListAll)
	admin.PUT("/reservations/:id/status", h.Admin.UpdateReservationStatus)

	admin.GET("/stats", h.Admin.ListStats)
	admin.GET("/stats/rooms/:id", h.Admin.GetRoomStats)

	admin.GET("/feedback", h.Feedback.ListAll)
	admin.DELETE("/feedback/:id", h.Feedback.Delete)
}
