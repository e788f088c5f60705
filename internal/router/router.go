package router // package router wires middleware and handlers onto the echo instance

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking-api/internal/config"
	"github.com/iliyamo/hotel-booking-api/internal/handler"
	"github.com/iliyamo/hotel-booking-api/internal/middleware"
)

// Handlers groups every resource handler served under /api/v1.
type Handlers struct {
	Service  *handler.ServiceHandler
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Reviews  *handler.ReviewHandler
	Pricing  *handler.PricingHandler
}

// Options carries the cross-cutting pieces built in main.  Cache and
// RateLimit may be nil, in which case the routes are mounted without them.
type Options struct {
	JWTSecret   string
	Dev         bool
	CORSOrigins []string
	Cache       echo.MiddlewareFunc
	RateLimit   echo.MiddlewareFunc
	Metrics     http.Handler
}

// secureHeaders follows the helmet defaults of the Node API this service
// replaces. HSTS is only sent on TLS or X-Forwarded-Proto: https requests.
var secureHeaders = echomw.SecureConfig{
	XSSProtection:         "0",
	ContentTypeNosniff:    "nosniff",
	XFrameOptions:         "SAMEORIGIN",
	HSTSMaxAge:            15552000,
	ContentSecurityPolicy: "default-src 'self';base-uri 'self';font-src 'self' https: data:;form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';upgrade-insecure-requests",
	ReferrerPolicy:        "no-referrer",
}

// New builds the echo instance: global middleware, error rendering and
// every route.
func New(h Handlers, opt Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(opt.Dev)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Metrics())
	// inside the logger so a panic is logged and counted as a 500
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: origins(opt.CORSOrigins)}))
	e.Use(echomw.SecureWithConfig(secureHeaders))
	e.Use(echomw.Gzip())
	e.Use(echomw.BodyLimit("1M"))

	RegisterRoutes(e, h.Service, opt.Metrics)

	api := e.Group("/api/v1")
	if opt.RateLimit != nil {
		api.Use(opt.RateLimit)
	}
	api.GET("", h.Service.Index)

	RegisterAuth(api, h.Auth, opt.JWTSecret)
	RegisterPublic(api, h, opt.Cache)
	RegisterBooking(api, h, opt.JWTSecret)
	RegisterAdmin(api, h, opt.JWTSecret)
	return e
}

// RegisterRoutes mounts the unversioned operational endpoints.
func RegisterRoutes(e *echo.Echo, svc *handler.ServiceHandler, metrics http.Handler) {
	e.GET("/health", svc.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterAuth mounts /auth.  Logout accepts an optional bearer token so
// a client without its refresh token can still end every session.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	g := api.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic mounts the browse endpoints.  Listings that change only
// through admin writes go through the response cache; availability and
// calendar are always read live.
func RegisterPublic(api *echo.Group, h Handlers, cache echo.MiddlewareFunc) {
	var cached []echo.MiddlewareFunc
	if cache != nil {
		cached = append(cached, cache)
	}

	api.GET("/cities", h.Catalog.ListCities, cached...)
	api.GET("/cities/:id/hotels", h.Catalog.ListCityHotels, cached...)
	api.GET("/hotels/:id", h.Catalog.GetHotel, cached...)
	api.GET("/hotels/:id/reviews", h.Catalog.ListHotelReviews, cached...)
	api.GET("/roomtypes/:id/availability", h.Catalog.Availability)
	api.GET("/roomtypes/:id/calendar", h.Catalog.Calendar)

	api.GET("/reviews/recent", h.Reviews.Recent, cached...)
	api.GET("/reviews/:id", h.Reviews.Get)

	api.GET("/seasonal-pricing", h.Pricing.List, cached...)
	api.GET("/seasonal-pricing/:id", h.Pricing.Get)
	api.GET("/seasonal-pricing/room-types/:id/current-price", h.Pricing.CurrentPrice, cached...)
}

func origins(list []string) []string {
	if len(list) == 0 {
		return []string{"*"}
	}
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, strings.TrimRight(o, "/"))
	}
	return out
}

// OptionsFrom copies the relevant parts of config.Config.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		JWTSecret:   cfg.JWTSecret,
		Dev:         cfg.IsDevelopment(),
		CORSOrigins: cfg.CORSOrigins,
	}
}
