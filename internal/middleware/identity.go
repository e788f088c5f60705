package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user for log lines, or "anon"
// when the request carries no identity.
func currentUserID(c echo.Context) string {
    if id, ok := c.Get(CtxUserID).(uint64); ok && id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
