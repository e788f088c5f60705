package handler // handler holds the HTTP handlers of the booking API

import (
    "context"  // request scoped deadlines for DB calls
    "errors"   // sentinel for a missing identity
    "math"     // rounding of money amounts
    "net/http" // status codes
    "strconv"  // path and query parsing
    "strings"  // trimming query values
    "time"     // dates and timeouts

    "github.com/labstack/echo/v4" // echo context

    "github.com/iliyamo/hotel-booking-api/internal/middleware" // context keys
    "github.com/iliyamo/hotel-booking-api/internal/model"      // role names
)

const (
    dbTimeout  = 5 * time.Second // upper bound for the queries of one request
    dateLayout = "2006-01-02"    // every date crosses the API as YYYY-MM-DD
)

var errNoIdentity = errors.New("invalid user_id in context")

// dbCtx derives the context handed to repositories.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID extracts the user_id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get(middleware.CtxUserID).(type) {
    case uint64:
        if t != 0 {
            return t, nil
        }
    case int64:
        if t > 0 {
            return uint64(t), nil
        }
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
            return n, nil
        }
    }
    return 0, errNoIdentity
}

// mustUserID is getUserID for routes mounted behind JWTAuth.
func mustUserID(c echo.Context) (uint64, error) {
    id, err := getUserID(c)
    if err != nil {
        return 0, echo.NewHTTPError(http.StatusUnauthorized, "Access token required").SetInternal(err)
    }
    return id, nil
}

func isAdmin(c echo.Context) bool {
    role, _ := c.Get(middleware.CtxRole).(string)
    return role == model.RoleAdmin
}

// canAccess is the owner-or-admin rule shared by bookings, payments and
// reviews.
func canAccess(c echo.Context, ownerID uint64) bool {
    if isAdmin(c) {
        return true
    }
    id, err := getUserID(c)
    return err == nil && id == ownerID
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, param, label string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(param), 10, 64)
    if err != nil || id == 0 {
        return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+label)
    }
    return id, nil
}

// pageQuery reads page and limit.  Missing or malformed values fall back
// to page 1 and def; limit is capped at max.
func pageQuery(c echo.Context, def, max int) (page, limit int) {
    page, limit = 1, def
    if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
        page = n
    }
    if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
        limit = n
    }
    if limit > max {
        limit = max
    }
    return page, limit
}

// today is the current calendar date in UTC.
func today() time.Time {
    return time.Now().UTC().Truncate(24 * time.Hour)
}

func parseDate(s string) (time.Time, error) {
    return time.Parse(dateLayout, strings.TrimSpace(s))
}

// stay validates a check-in/check-out pair and returns the number of
// nights.
func stay(checkIn, checkOut string) (int, error) {
    in, err := parseDate(checkIn)
    if err != nil {
        return 0, echo.NewHTTPError(http.StatusBadRequest, "Valid check_in date required (YYYY-MM-DD)")
    }
    out, err := parseDate(checkOut)
    if err != nil {
        return 0, echo.NewHTTPError(http.StatusBadRequest, "Valid check_out date required (YYYY-MM-DD)")
    }
    if in.Before(today()) {
        return 0, echo.NewHTTPError(http.StatusBadRequest, "Check-in date cannot be in the past")
    }
    if !out.After(in) {
        return 0, echo.NewHTTPError(http.StatusBadRequest, "Check-out date must be after check-in date")
    }
    return int(out.Sub(in).Hours() / 24), nil
}

func round2(v float64) float64 {
    return math.Round(v*100) / 100
}
