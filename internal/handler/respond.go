package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func respond(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: msg, Data: data})
}

// internalError hides err behind msg. The detail reaches the client only
// in development.
func internalError(err error, msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
}

// ErrorHandler renders every error returned by handlers and middleware as
// an Envelope. dev exposes the wrapped error of 5xx responses.
func ErrorHandler(dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		log := zerolog.Ctx(c.Request().Context())

		var ve *ValidationError
		if errors.As(err, &ve) {
			writeJSON(c, http.StatusBadRequest, Envelope{Message: "Validation failed", Errors: ve.Fields})
			return
		}

		if errors.Is(err, echo.ErrNotFound) {
			writeJSON(c, http.StatusNotFound, echo.Map{
				"success":    false,
				"message":    "Endpoint not found",
				"path":       c.Request().URL.Path,
				"method":     c.Request().Method,
				"suggestion": "Check the API index at /api/v1",
			})
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = internalError(err, "Internal server error")
		}
		env := Envelope{Message: fmt.Sprint(he.Message)}
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Int("status", he.Code).Msg("request failed")
			if dev {
				cause := error(he)
				if he.Internal != nil {
					cause = he.Internal
				}
				env.Error = cause.Error()
			}
		}
		writeJSON(c, he.Code, env)
	}
}

func writeJSON(c echo.Context, status int, body any) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Warn().Err(err).Msg("write error response")
	}
}
