package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-api/internal/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveHTTP("/api/v1/cities", "GET", 200, 12*time.Millisecond)
	observability.ObserveCache("redis", "hit")
	observability.ObserveEvent("booking.created", nil)
	observability.ObservePayment("CARD", "success", 3*time.Millisecond)

	rr := httptest.NewRecorder()
	observability.MetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, "hotel_http_requests_total")
	assert.Contains(t, out, "hotel_cache_events_total")
	assert.Contains(t, out, `hotel_events_published_total{result="ok",routing_key="booking.created"}`)
	assert.Contains(t, out, "hotel_payment_outcomes_total")
}
