package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-api/internal/middleware"
	"github.com/iliyamo/hotel-booking-api/internal/model"
)

// RegisterAdmin registers endpoints restricted to the ADMIN role: refunds
// and seasonal pricing writes.
func RegisterAdmin(api *echo.Group, h Handlers, jwtSecret string) {
	admin := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	}

	api.POST("/payments/:id/refund", h.Payments.Refund, admin...)

	api.POST("/seasonal-pricing", h.Pricing.Create, admin...)
	api.PUT("/seasonal-pricing/:id", h.Pricing.Update, admin...)
	api.DELETE("/seasonal-pricing/:id", h.Pricing.Delete, admin...)
}
