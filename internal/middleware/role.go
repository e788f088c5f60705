package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole lets the request through only when the role stored by
// JWTAuth is one of roles.  It must be mounted after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(CtxRole).(string)
            if !ok {
                return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
            }
            if !allowed[role] {
                return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
            }
            return next(c)
        }
    }
}
