// Package utils holds the token and password helpers shared by the auth
// handler and the JWT middleware.
package utils

import (
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by ParseAccessToken for any token that is
// malformed, expired, signed with another key or missing its subject.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload of an access token.  The subject carries the
// numeric user_id as a decimal string; Role is USER or ADMIN.
type Claims struct {
    Role  string `json:"role"`
    Email string `json:"email,omitempty"`
    jwt.RegisteredClaims
}

// UserID decodes the subject claim.
func (c Claims) UserID() (uint64, error) {
    return strconv.ParseUint(c.Subject, 10, 64)
}

// AccessToken is a signed JWT and the moment it stops being accepted.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// RefreshToken is the opaque value handed to the client.  Only
// HashRefreshRaw(Raw) is persisted.
type RefreshToken struct {
    Raw string
    Exp time.Time
}

// NewAccessToken signs an HS256 token for userID valid for ttlMin minutes.
func NewAccessToken(secret string, userID uint64, email, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := Claims{
        Role:  role,
        Email: email,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm and expiry and returns
// the claims.  Every failure collapses into ErrInvalidToken so callers
// cannot leak why a token was refused.
func ParseAccessToken(secret, raw string) (Claims, error) {
    var claims Claims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    if _, err := claims.UserID(); err != nil {
        return Claims{}, ErrInvalidToken
    }
    return claims, nil
}

// NewRefreshToken returns 48 random bytes, hex encoded, valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    buf := make([]byte, 48)
    if _, err := rand.Read(buf); err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: hex.EncodeToString(buf),
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw is the SHA-256 hex digest stored in RefreshToken.token_hash.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
