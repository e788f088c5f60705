package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-api/internal/model"
    "github.com/iliyamo/hotel-booking-api/internal/repository"
    "github.com/iliyamo/hotel-booking-api/internal/utils"
)

// UserStore is the slice of repository.UserRepo the auth endpoints need.
type UserStore interface {
    Create(ctx context.Context, u repository.NewUser, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthSettings are the token and hashing parameters from config.Config.
type AuthSettings struct {
    JWTSecret      string
    AccessTTLMin   int
    RefreshTTLDays int
    BcryptCost     int
}

// AuthHandler bundles dependencies for the /auth endpoints.
type AuthHandler struct {
    Cfg    AuthSettings
    Users  UserStore
    Tokens TokenStore
}

func NewAuthHandler(cfg AuthSettings, u UserStore, t TokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

type registerReq struct {
    Name     string `json:"name" validate:"required,min=2,max=100" msg:"Name must be 2-100 characters"`
    Email    string `json:"email" validate:"required,email" msg:"Valid email required"`
    Password string `json:"password" validate:"required,min=6" msg:"Password must be at least 6 characters"`
    Phone    string `json:"phone" validate:"omitempty,max=20" msg:"Phone must be at most 20 characters"`
}

type loginReq struct {
    Email    string `json:"email" validate:"required,email" msg:"Valid email required"`
    Password string `json:"password" validate:"required" msg:"Password is required"`
}

type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

// authData is the session returned by register, login and refresh.
type authData struct {
    UserID       uint64    `json:"user_id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    Role         string    `json:"role"`
    Token        string    `json:"token"`
    RefreshToken string    `json:"refresh_token"`
    ExpiresAt    time.Time `json:"expires_at"`
}

// Register creates a USER account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := bindValid(c, &req); err != nil {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    uid, err := h.Users.Create(ctx, repository.NewUser{
        FullName: req.Name,
        Email:    req.Email,
        Phone:    req.Phone,
        Password: req.Password,
        Role:     model.RoleUser,
    }, h.Cfg.BcryptCost)
    if errors.Is(err, repository.ErrEmailExists) {
        return echo.NewHTTPError(http.StatusConflict, "Email already registered")
    }
    if err != nil {
        return internalError(err, "Registration failed")
    }

    u := model.User{
        ID:       uid,
        FullName: strings.TrimSpace(req.Name),
        Email:    strings.ToLower(strings.TrimSpace(req.Email)),
        Role:     model.RoleUser,
    }
    data, err := h.issue(ctx, u)
    if err != nil {
        return internalError(err, "Registration failed")
    }
    return respond(c, http.StatusCreated, "User registered successfully", data)
}

// Login verifies the password and returns a new session.  Unknown emails
// and wrong passwords are indistinguishable.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bindValid(c, &req); err != nil {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if errors.Is(err, sql.ErrNoRows) || (err == nil && !utils.VerifyPassword(u.PasswordHash, req.Password)) {
        return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
    }
    if err != nil {
        return internalError(err, "Login failed")
    }
    data, err := h.issue(ctx, u)
    if err != nil {
        return internalError(err, "Login failed")
    }
    return respond(c, http.StatusOK, "Login successful", data)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON in request body").SetInternal(err)
    }
    raw := strings.TrimSpace(req.RefreshToken)
    if raw == "" {
        return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
    }
    hash := utils.HashRefreshRaw(raw)

    ctx, cancel := dbCtx(c)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token").SetInternal(err)
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return internalError(err, "Token refresh failed")
    }
    u, err := h.Users.GetByID(ctx, userID)
    if errors.Is(err, sql.ErrNoRows) {
        return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
    }
    if err != nil {
        return internalError(err, "Token refresh failed")
    }
    data, err := h.issue(ctx, u)
    if err != nil {
        return internalError(err, "Token refresh failed")
    }
    return respond(c, http.StatusOK, "Token refreshed", data)
}

// Logout revokes the refresh token in the body.  With an empty body and a
// valid bearer token every session of the caller is revoked instead.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req) // an empty or malformed body means "no refresh token"
    raw := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := dbCtx(c)
    defer cancel()

    if raw != "" {
        hash := utils.HashRefreshRaw(raw)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token").SetInternal(err)
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return internalError(err, "Logout failed")
        }
        return respond(c, http.StatusOK, "Logged out", nil)
    }

    uid, err := getUserID(c)
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "Provide a refresh_token or an Authorization header")
    }
    if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
        return internalError(err, "Logout failed")
    }
    return respond(c, http.StatusOK, "Logged out of all sessions", nil)
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := mustUserID(c)
    if err != nil {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if errors.Is(err, sql.ErrNoRows) {
        return echo.NewHTTPError(http.StatusNotFound, "User not found")
    }
    if err != nil {
        return internalError(err, "Failed to fetch profile")
    }
    return respond(c, http.StatusOK, "", u)
}

func (h *AuthHandler) issue(ctx context.Context, u model.User) (authData, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return authData{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authData{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authData{}, err
    }
    return authData{
        UserID:       u.ID,
        Name:         u.FullName,
        Email:        u.Email,
        Role:         u.Role,
        Token:        access.Token,
        RefreshToken: refresh.Raw,
        ExpiresAt:    access.Exp,
    }, nil
}
