package config

import "time"

// RateLimitConfig drives the token bucket in front of /api/v1.
//
// Limits are written as RATE_LIMIT_MAX requests per RATE_LIMIT_WINDOW
// (100 per 15m by default).  The bucket holds Max tokens and earns one back
// every Window/Max, so a client that empties it regains the full allowance
// over one window.  RATE_LIMIT_BURST raises the bucket size without changing
// the refill rate.
type RateLimitConfig struct {
    Enabled        bool
    Max            int
    Window         time.Duration
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets expire after this
    KeyStrategy    string        // ip | ip_route
    Prefix         string
    Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:      envBool("RATE_LIMIT_ENABLED", true),
        Max:          envInt("RATE_LIMIT_MAX", 100),
        Window:       envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
        RefillTokens: 1,
        KeyStrategy:  envStr("RATE_LIMIT_KEY_STRATEGY", "ip"),
        Prefix:       envStr("RATE_LIMIT_PREFIX", "hotel:rl"),
        Debug:        envBool("RATE_LIMIT_DEBUG", false),
    }
    if cfg.Max < 1 {
        cfg.Max = 1
    }
    if cfg.Window < time.Second {
        cfg.Window = time.Second
    }
    cfg.RefillInterval = cfg.Window / time.Duration(cfg.Max)
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Millisecond
    }

    cfg.Capacity = cfg.Max
    if b := envInt("RATE_LIMIT_BURST", 0); b > cfg.Capacity {
        cfg.Capacity = b
    }

    // a bucket must outlive the time it takes to refill, or an idle client
    // would come back to a fresh one early
    full := time.Duration(cfg.Capacity) * cfg.RefillInterval
    cfg.TTL = envDur("RATE_LIMIT_TTL", full)
    if cfg.TTL < full {
        cfg.TTL = full
    }
    return cfg
}
