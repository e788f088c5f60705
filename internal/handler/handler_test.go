package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-api/internal/middleware"
	"github.com/iliyamo/hotel-booking-api/internal/model"
	"github.com/iliyamo/hotel-booking-api/internal/queue"
	"github.com/iliyamo/hotel-booking-api/internal/repository"
	"github.com/iliyamo/hotel-booking-api/internal/utils"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(false)
	return e
}

// as plays the part of JWTAuth for handler tests.
func as(uid uint64, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserID, uid)
			c.Set(middleware.CtxRole, role)
			return next(c)
		}
	}
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func daysFromNow(n int) string {
	return today().AddDate(0, 0, n).Format(dateLayout)
}

type recPublisher struct {
	events []queue.Event
	err    error
}

func (p *recPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recPublisher) Close() error { return nil }

func (p *recPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func TestErrorHandler(t *testing.T) {
	e := newTestEcho()
	e.GET("/boom", func(echo.Context) error { return errors.New("disk on fire") })
	e.GET("/conflict", func(echo.Context) error { return echo.NewHTTPError(http.StatusConflict, "taken") })

	rec := do(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Internal server error", env.Message)
	assert.Empty(t, env.Error)

	rec = do(e, http.MethodGet, "/conflict", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "taken", decode(t, rec).Message)

	rec = do(e, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Endpoint not found","path":"/nowhere","method":"GET","suggestion":"Check the API index at /api/v1"}`, rec.Body.String())

	dev := echo.New()
	dev.HTTPErrorHandler = ErrorHandler(true)
	dev.GET("/boom", func(echo.Context) error { return internalError(errors.New("disk on fire"), "Failed") })
	rec = do(dev, http.MethodGet, "/boom", "")
	assert.Equal(t, "disk on fire", decode(t, rec).Error)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := newTestEcho()
	up := &ServiceHandler{DB: fakePinger{}, Version: "1.0.0", Env: "test"}
	down := &ServiceHandler{DB: fakePinger{err: errors.New("refused")}}
	e.GET("/up", up.Health)
	e.GET("/down", down.Health)

	rec := do(e, http.MethodGet, "/up", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"up"`)

	rec = do(e, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

type fakeUsers struct {
	byEmail map[string]model.User
	created []repository.NewUser
}

func (f *fakeUsers) Create(_ context.Context, u repository.NewUser, _ int) (uint64, error) {
	if _, ok := f.byEmail[strings.ToLower(u.Email)]; ok {
		return 0, repository.ErrEmailExists
	}
	f.created = append(f.created, u)
	return uint64(len(f.created) + 10), nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

type fakeTokens struct {
	live       map[string]uint64
	revokedAll []uint64
}

func (f *fakeTokens) StoreRefresh(_ context.Context, uid uint64, hash string, _ time.Time) error {
	f.live[hash] = uid
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	uid, ok := f.live[hash]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return uid, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(f.live, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, uid uint64) error {
	f.revokedAll = append(f.revokedAll, uid)
	return nil
}

func newAuth(t *testing.T) (*echo.Echo, *fakeUsers, *fakeTokens) {
	t.Helper()
	hash, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)
	users := &fakeUsers{byEmail: map[string]model.User{
		"ann@example.com": {ID: 7, FullName: "Ann", Email: "ann@example.com", PasswordHash: hash, Role: model.RoleUser},
	}}
	tokens := &fakeTokens{live: map[string]uint64{}}
	h := NewAuthHandler(AuthSettings{JWTSecret: "k", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}, users, tokens)

	e := newTestEcho()
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.POST("/refresh", h.Refresh)
	e.POST("/logout", h.Logout)
	e.POST("/logout-all", h.Logout, as(7, model.RoleUser))
	e.GET("/me", h.Me, as(7, model.RoleUser))
	return e, users, tokens
}

func TestRegister(t *testing.T) {
	e, users, tokens := newAuth(t)

	rec := do(e, http.MethodPost, "/register", `{"name":"Bob","email":"bob@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data authData
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, model.RoleUser, data.Role)
	assert.NotEmpty(t, data.Token)
	assert.Len(t, tokens.live, 1)
	assert.Len(t, users.created, 1)

	rec = do(e, http.MethodPost, "/register", `{"name":"Ann","email":"ANN@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPost, "/register", `{"name":"B","email":"nope","password":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Len(t, env.Errors, 3)

	rec = do(e, http.MethodPost, "/register", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON in request body", decode(t, rec).Message)
}

func TestLoginRefreshLogout(t *testing.T) {
	e, _, tokens := newAuth(t)

	rec := do(e, http.MethodPost, "/login", `{"email":"ann@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(e, http.MethodPost, "/login", `{"email":"ghost@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode(t, rec).Message)

	rec = do(e, http.MethodPost, "/login", `{"email":"ann@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var first authData
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &first))

	rec = do(e, http.MethodPost, "/refresh", `{"refresh_token":"`+first.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var second authData
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &second))
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// the rotated token is spent
	rec = do(e, http.MethodPost, "/refresh", `{"refresh_token":"`+first.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/logout", `{"refresh_token":"`+second.RefreshToken+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, tokens.live)

	rec = do(e, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/logout-all", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{7}, tokens.revokedAll)

	rec = do(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ann@example.com"`)
	assert.NotContains(t, rec.Body.String(), "password")
}
