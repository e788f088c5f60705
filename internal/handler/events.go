package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking-api/internal/queue"
)

const publishTimeout = 2 * time.Second

// emit publishes ev after the database work of a request has succeeded.
// A broker failure is logged and never changes the response.
func emit(c echo.Context, pub queue.Publisher, ev queue.Event) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, ev); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event", ev.Type).Str("event_id", ev.ID).Msg("publish event failed")
	}
}
