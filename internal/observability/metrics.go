package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotel", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel", Name: "cache_events_total", Help: "Response cache hits/misses/sets."},
		[]string{"cache", "event"}, // event: hit|miss|set
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel", Name: "rate_limited_total", Help: "Requests rejected by the rate limiter."},
		[]string{"backend"}, // redis|local
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel", Name: "events_published_total", Help: "Domain events handed to the broker."},
		[]string{"routing_key", "result"}, // result: ok|error
	)
	PaymentOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel", Name: "payment_outcomes_total", Help: "Gateway charge results."},
		[]string{"method", "result"}, // result: success|declined|error
	)
	GatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotel", Name: "payment_gateway_duration_seconds",
			Help:    "Payment gateway call duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// InitRegistry returns a registry holding every collector above plus the
// Go runtime and process collectors.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency, CacheEvents, RateLimited,
		EventsPublished, PaymentOutcomes, GatewayLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveRateLimited(backend string) {
	RateLimited.WithLabelValues(backend).Inc()
}

func ObserveEvent(routingKey string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(routingKey, result).Inc()
}

func ObservePayment(method, result string, dur time.Duration) {
	PaymentOutcomes.WithLabelValues(method, result).Inc()
	GatewayLatency.WithLabelValues(method).Observe(dur.Seconds())
}
