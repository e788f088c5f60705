package middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-api/internal/utils"
)

// Context keys written by JWTAuth and OptionalJWT.  user_id holds a
// uint64, role and email hold strings.
const (
    CtxUserID = "user_id"
    CtxRole   = "role"
    CtxEmail  = "email"
)

// JWTAuth rejects requests without a valid Bearer access token and stores
// the caller's identity in the echo context.  The secret must match the
// one the auth handler signs with.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearer(c)
            if !ok {
                return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token").SetInternal(err)
            }
            setIdentity(c, claims)
            return next(c)
        }
    }
}

// OptionalJWT identifies the caller when a valid token is present and lets
// anonymous or badly authenticated requests through untouched.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw, ok := bearer(c); ok {
                if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
                    setIdentity(c, claims)
                }
            }
            return next(c)
        }
    }
}

func bearer(c echo.Context) (string, bool) {
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if !strings.HasPrefix(auth, "Bearer ") {
        return "", false
    }
    raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    return raw, raw != ""
}

func setIdentity(c echo.Context, claims utils.Claims) {
    // ParseAccessToken already rejected tokens with a non-numeric subject.
    id, _ := claims.UserID()
    c.Set(CtxUserID, id)
    c.Set(CtxRole, claims.Role)
    c.Set(CtxEmail, claims.Email)
}
