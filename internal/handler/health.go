package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ServiceHandler serves /health and the API index.
type ServiceHandler struct {
	DB      Pinger
	Version string
	Env     string
}

// Health reports liveness and database reachability. It answers 503 when
// the database does not respond within two seconds.
func (h *ServiceHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, dbState, msg := http.StatusOK, "up", "Hotel Booking API is running"
	if err := h.DB.PingContext(ctx); err != nil {
		status, dbState, msg = http.StatusServiceUnavailable, "down", "Database unavailable"
	}
	return c.JSON(status, echo.Map{
		"success":     status == http.StatusOK,
		"message":     msg,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"version":     h.Version,
		"environment": h.Env,
		"database":    dbState,
	})
}

// Index lists the endpoint groups under /api/v1.
func (h *ServiceHandler) Index(c echo.Context) error {
	return respond(c, http.StatusOK, "Hotel Booking API", echo.Map{
		"name":    "Hotel Booking API",
		"version": h.Version,
		"endpoints": echo.Map{
			"auth":             "/api/v1/auth",
			"cities":           "/api/v1/cities",
			"hotels":           "/api/v1/hotels",
			"room_types":       "/api/v1/roomtypes",
			"bookings":         "/api/v1/bookings",
			"user_bookings":    "/api/v1/users/:id/bookings",
			"payments":         "/api/v1/payments",
			"reviews":          "/api/v1/reviews",
			"seasonal_pricing": "/api/v1/seasonal-pricing",
		},
	})
}
