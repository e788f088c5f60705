package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-booking-api/internal/model"
	"github.com/iliyamo/hotel-booking-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = "user_id, full_name, email, phone, password_hash, role, created_at"

// NewUser carries the registration fields; Password is hashed by Create.
type NewUser struct {
	FullName string
	Email    string
	Phone    string
	Password string
	Role     string
}

// Create hashes the password, inserts the user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u NewUser, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(u.Password, cost)
	if err != nil {
		return 0, err
	}
	var phone sql.NullString
	if p := strings.TrimSpace(u.Phone); p != "" {
		phone = sql.NullString{String: p, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO `User` (full_name, email, phone, password_hash, role) VALUES (?,?,?,?,?)",
		strings.TrimSpace(u.FullName), email, phone, hash, u.Role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM `User` WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM `User` WHERE user_id=? LIMIT 1", id))
}

// EnsureAdmin creates an ADMIN account for email unless one already exists,
// and promotes an existing account with that email. It reports whether a
// new row was inserted.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, password string, cost int) (bool, error) {
	_, err := r.Create(ctx, NewUser{FullName: "Administrator", Email: email, Password: password, Role: model.RoleAdmin}, cost)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrEmailExists) {
		return false, err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE `User` SET role=? WHERE email=?",
		model.RoleAdmin, strings.ToLower(strings.TrimSpace(email)))
	return false, err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u     model.User
		phone sql.NullString
	)
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if phone.Valid {
		u.Phone = &phone.String
	}
	return u, err
}
