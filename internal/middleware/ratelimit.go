package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "sync/atomic"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog"
    "golang.org/x/time/rate"

    "github.com/iliyamo/hotel-booking-api/internal/config"
    "github.com/iliyamo/hotel-booking-api/internal/observability"
)

// tokenBucketScript refills in whole intervals and takes one token.  It
// returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])
    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    local elapsed = math.max(0, now_ms - last_refill)
    local intervals = math.floor(elapsed / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + intervals * refill_tokens)
        last_refill = last_refill + intervals * interval_ms
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_after_ms }
`)

// limiter decides per key.  Redis is authoritative when reachable; the
// in-process limiters only cover requests redis could not answer, so the
// budget is per instance while redis is down.  Local entries idle for
// longer than cfg.TTL are swept, at most once per TTL.
type limiter struct {
    cfg   config.RateLimitConfig
    rdb   *redis.Client
    log   zerolog.Logger
    local sync.Map // key -> *localBucket
    now   func() time.Time

    lastSweep atomic.Int64 // unix nanos
}

type localBucket struct {
    lim      *rate.Limiter
    lastSeen atomic.Int64 // unix nanos
}

type verdict struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

// NewTokenBucket limits requests per key (see RATE_LIMIT_KEY_STRATEGY).
// A nil rdb selects the in-process limiter for every request.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    l := newLimiter(cfg, rdb, log)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            v, backend := l.take(c, key)

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if !v.allowed {
                secs := int(math.Ceil(v.retry.Seconds()))
                h.Set("Retry-After", strconv.Itoa(secs))
                observability.ObserveRateLimited(backend)
                return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later.")
            }
            return next(c)
        }
    }
}

func newLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger) *limiter {
    l := &limiter{cfg: cfg, rdb: rdb, log: log, now: time.Now}
    l.lastSweep.Store(l.now().UnixNano())
    return l
}

func (l *limiter) take(c echo.Context, key string) (verdict, string) {
    if l.rdb != nil {
        v, err := l.takeRedis(c, key)
        if err == nil {
            return v, "redis"
        }
        l.log.Warn().Err(err).Str("key", key).Msg("rate limit redis unavailable, using local limiter")
    }
    return l.takeLocal(key), "local"
}

func (l *limiter) takeRedis(c echo.Context, key string) (verdict, error) {
    args := []any{
        time.Now().UnixMilli(),
        l.cfg.Capacity,
        l.cfg.RefillTokens,
        l.cfg.RefillInterval.Milliseconds(),
        int64(l.cfg.TTL / time.Second),
    }
    vals, err := tokenBucketScript.Run(c.Request().Context(), l.rdb, []string{key}, args...).Int64Slice()
    if err != nil {
        return verdict{}, err
    }
    if len(vals) != 3 {
        return verdict{}, fmt.Errorf("unexpected script result %v", vals)
    }
    return verdict{
        allowed:   vals[0] == 1,
        remaining: vals[1],
        retry:     time.Duration(vals[2]) * time.Millisecond,
    }, nil
}

func (l *limiter) takeLocal(key string) verdict {
    now := l.now()
    l.sweep(now)

    v, ok := l.local.Load(key)
    if !ok {
        every := l.cfg.RefillInterval / time.Duration(l.cfg.RefillTokens)
        v, _ = l.local.LoadOrStore(key, &localBucket{lim: rate.NewLimiter(rate.Every(every), l.cfg.Capacity)})
    }
    b := v.(*localBucket)
    b.lastSeen.Store(now.UnixNano())

    r := b.lim.ReserveN(now, 1)
    if d := r.DelayFrom(now); d > 0 {
        r.CancelAt(now)
        return verdict{retry: d}
    }
    remaining := int64(b.lim.TokensAt(now))
    if remaining < 0 {
        remaining = 0
    }
    return verdict{allowed: true, remaining: remaining}
}

// sweep drops local buckets nobody has touched for cfg.TTL.  By then a
// bucket has refilled completely, so dropping it changes no verdict.
func (l *limiter) sweep(now time.Time) {
    last := l.lastSweep.Load()
    if now.UnixNano()-last < int64(l.cfg.TTL) || !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
        return
    }
    cutoff := now.Add(-l.cfg.TTL).UnixNano()
    l.local.Range(func(k, v any) bool {
        if v.(*localBucket).lastSeen.Load() < cutoff {
            l.local.Delete(k)
        }
        return true
    })
}

func (l *limiter) localSize() int {
    n := 0
    l.local.Range(func(_, _ any) bool { n++; return true })
    return n
}

// buildRateKey keys on the client address, optionally split per route.
// The limiter runs before authentication, so there is no user to key on.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    parts := []string{cfg.Prefix, "ip", ip}
    if strings.EqualFold(cfg.KeyStrategy, "ip_route") {
        parts = append(parts, "route", c.Request().Method+" "+c.Path())
    }
    return strings.Join(parts, ":")
}
