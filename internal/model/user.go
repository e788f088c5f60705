package model

import "time"

// Role names carried in the JWT "role" claim and the `User`.role column.
const (
    RoleUser  = "USER"
    RoleAdmin = "ADMIN"
)

// User represents a row of the `User` table.  PasswordHash never leaves
// the service; handlers build their own response shapes.
//
// Fields:
//  ID           – primary key (user_id).
//  FullName     – display name given at registration.
//  Email        – unique, lower-cased email address.
//  Phone        – optional contact number.
//  PasswordHash – bcrypt hash.
//  Role         – USER or ADMIN.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    `json:"user_id"`
    FullName     string    `json:"name"`
    Email        string    `json:"email"`
    Phone        *string   `json:"phone,omitempty"`
    PasswordHash string    `json:"-"`
    Role         string    `json:"role"`
    CreatedAt    time.Time `json:"created_at"`
}


// RefreshToken models an entry in the `RefreshToken` table.  Only the
// SHA‑256 hash of the token handed to the client is stored.
type RefreshToken struct {
    ID        uint64     // RefreshToken.token_id
    UserID    uint64     // RefreshToken.user_id
    TokenHash string     // RefreshToken.token_hash
    ExpiresAt time.Time  // RefreshToken.expires_at
    RevokedAt *time.Time // RefreshToken.revoked_at (nullable)
    CreatedAt time.Time  // RefreshToken.created_at
}
