package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking-api/internal/config"
	"github.com/iliyamo/hotel-booking-api/internal/observability"
)

// cachedResponse is what gets stored under a cache key.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// bodyRecorder tees the response body so it can be stored after the
// handler returns. Recording stops once limit bytes are exceeded.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// NewRedisCache serves repeated public GETs from redis for cfg.TTL. Only
// 200 responses are stored. A nil rdb disables caching.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cr cachedResponse
				if json.Unmarshal(raw, &cr) == nil {
					observability.ObserveCache("response", "hit")
					return replay(c, cr)
				}
			} else if err != redis.Nil {
				log.Warn().Err(err).Msg("response cache read failed")
			}
			observability.ObserveCache("response", "miss")

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}

			payload, err := json.Marshal(cachedResponse{Status: rec.status, Header: storedHeader(c.Response().Header()), Body: rec.buf.Bytes()})
			if err != nil {
				return nil
			}
			// The request context may already be cancelled once the body
			// has been written.
			if err := rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
				log.Warn().Err(err).Msg("response cache write failed")
				return nil
			}
			observability.ObserveCache("response", "set")
			return nil
		}
	}
}

// cacheableHeaders are the response headers owned by the handler. Headers
// added by outer middleware (Content-Encoding and Vary from gzip, CORS,
// X-Request-Id) depend on the request and are recomputed on replay.
var cacheableHeaders = []string{
	echo.HeaderContentType,
	echo.HeaderCacheControl,
	echo.HeaderLastModified,
	"Content-Language",
	"ETag",
}

func storedHeader(h http.Header) http.Header {
	out := http.Header{}
	for _, k := range cacheableHeaders {
		if v := h.Values(k); len(v) > 0 {
			out[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
	return out
}

func replay(c echo.Context, cr cachedResponse) error {
	h := c.Response().Header()
	for k, vals := range storedHeader(cr.Header) {
		h[k] = vals
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(cr.Status)
	_, err := c.Response().Write(cr.Body)
	return err
}

func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var tail string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "path":
		tail = r.URL.Path
	case "method_route_query":
		tail = r.Method + ":" + r.URL.Path + "?" + r.URL.RawQuery
	default: // route_query
		tail = r.URL.Path + "?" + r.URL.RawQuery
	}
	return fmt.Sprintf("%s:%x", cfg.Prefix, sha1.Sum([]byte(tail)))
}
