package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-api/internal/middleware"
	"github.com/iliyamo/hotel-booking-api/internal/model"
)

// RegisterBooking registers the signed-in guest endpoints.  Every route
// requires a valid JWT with the USER or ADMIN role; ownership of the
// booking, payment or review is checked inside the handler.
func RegisterBooking(api *echo.Group, h Handlers, jwtSecret string) {
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	}

	api.POST("/bookings", h.Bookings.Create, auth...)
	api.GET("/bookings/:id", h.Bookings.Get, auth...)
	api.PUT("/bookings/:id/cancel", h.Bookings.Cancel, auth...)
	api.GET("/users/:id/bookings", h.Bookings.ListForUser, auth...)

	api.POST("/payments", h.Payments.Process, auth...)
	api.GET("/payments/:id", h.Payments.Get, auth...)

	api.POST("/reviews", h.Reviews.Create, auth...)
	api.POST("/reviews/:id/helpful", h.Reviews.Helpful, auth...)
	api.PUT("/reviews/:id", h.Reviews.Update, auth...)
	api.DELETE("/reviews/:id", h.Reviews.Delete, auth...)
}
