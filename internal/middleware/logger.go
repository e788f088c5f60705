package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking-api/internal/observability"
)

// RequestLogger attaches a request scoped logger to the request context
// (retrievable with zerolog.Ctx) and writes one line per request. Errors
// are rendered through the echo error handler here so the logged status
// is the one the client sees.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = req.Header.Get(echo.HeaderXRequestID)
			}

			l := base.With().Str("request_id", rid).Logger()
			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			ev := l.Info()
			switch {
			case status >= 500:
				ev = l.Error().Err(err)
			case status >= 400:
				ev = l.Warn()
			}
			ev.Str("route", routeOf(c)).
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Str("remote", c.RealIP()).
				Str("user", currentUserID(c)).
				Int64("bytes_out", c.Response().Size).
				Msg("http_request")
			return nil
		}
	}
}

// Metrics records request count and latency per route pattern.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			observability.ObserveHTTP(routeOf(c), c.Request().Method, c.Response().Status, time.Since(start))
			return nil
		}
	}
}

// routeOf prefers the matched pattern so ids do not explode label
// cardinality.
func routeOf(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}
