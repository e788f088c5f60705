package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-api/internal/model"
)

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `User`")).
		WithArgs("Ann Lee", "ann@example.com", sql.NullString{}, sqlmock.AnyArg(), model.RoleUser).
		WillReturnResult(sqlmock.NewResult(12, 1))

	id, err := NewUserRepo(db).Create(context.Background(), NewUser{
		FullName: " Ann Lee ", Email: " Ann@Example.com", Password: "secret1", Role: model.RoleUser,
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `User`")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ann@example.com' for key 'email'"})

	_, err = NewUserRepo(db).Create(context.Background(), NewUser{Email: "ann@example.com", Password: "secret1"}, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestEnsureAdminPromotesExistingAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `User`")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `User` SET role=? WHERE email=?")).
		WithArgs(model.RoleAdmin, "root@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := NewUserRepo(db).EnsureAdmin(context.Background(), "Root@example.com", "secret1", 4)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	q := regexp.QuoteMeta("SELECT user_id, expires_at, revoked_at FROM RefreshToken")
	cols := []string{"user_id", "expires_at", "revoked_at"}
	future := time.Now().UTC().Add(time.Hour)

	mock.ExpectQuery(q).WithArgs("live").WillReturnRows(sqlmock.NewRows(cols).AddRow(5, future, nil))
	mock.ExpectQuery(q).WithArgs("revoked").WillReturnRows(sqlmock.NewRows(cols).AddRow(5, future, time.Now()))
	mock.ExpectQuery(q).WithArgs("expired").WillReturnRows(sqlmock.NewRows(cols).AddRow(5, time.Now().Add(-time.Hour), nil))

	repo := NewTokenRepo(db)
	uid, err := repo.ValidateRefresh(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), uid)

	_, err = repo.ValidateRefresh(context.Background(), "revoked")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = repo.ValidateRefresh(context.Background(), "expired")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
