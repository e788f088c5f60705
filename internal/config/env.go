package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// Optional settings.  A missing or unparsable value yields the default;
// required settings go through must/mustInt instead.

func lookup(k string) (string, bool) {
    v, ok := os.LookupEnv(k)
    v = strings.TrimSpace(v)
    return v, ok && v != ""
}

func envStr(k, d string) string {
    if v, ok := lookup(k); ok {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    v, ok := lookup(k)
    if !ok {
        return d
    }
    switch strings.ToLower(v) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v, ok := lookup(k)
    if !ok {
        return d
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        return d
    }
    return n
}

func envFloat(k string, d float64) float64 {
    v, ok := lookup(k)
    if !ok {
        return d
    }
    f, err := strconv.ParseFloat(v, 64)
    if err != nil {
        return d
    }
    return f
}

func envDur(k string, d time.Duration) time.Duration {
    v, ok := lookup(k)
    if !ok {
        return d
    }
    dur, err := time.ParseDuration(v)
    if err != nil {
        return d
    }
    return dur
}
