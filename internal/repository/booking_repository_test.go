package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingCreateReloadsNewestBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CALL MakeBooking(?, ?, ?, ?, ?, ?)")).
		WithArgs(uint64(7), uint64(3), "2030-01-10", "2030-01-12", 240.0, "CARD").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT b.booking_id, b.status, rt.name, h.name").
		WithArgs(uint64(7), uint64(3), "2030-01-10").
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "status", "rt", "h", "amount"}).
			AddRow(41, "CONFIRMED", "Deluxe", "Grand", 240.0))

	repo := NewBookingRepo(db)
	rc, err := repo.Create(context.Background(), NewBooking{
		UserID: 7, RoomTypeID: 3, CheckIn: "2030-01-10", CheckOut: "2030-01-12", Total: 240, Method: "CARD",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(41), rc.ID)
	assert.Equal(t, "Grand", rc.HotelName)
	assert.Equal(t, "2030-01-12", rc.CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateClassifiesInventoryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CALL MakeBooking")).
		WillReturnError(signal("Insufficient inventory for the selected dates"))

	_, err = NewBookingRepo(db).Create(context.Background(), NewBooking{UserID: 1, RoomTypeID: 1})
	assert.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestBookingGetStateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT b.booking_id, b.user_id, b.status, p.status").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d", "e", "f"}))

	_, err = NewBookingRepo(db).GetState(context.Background(), 9)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingGetStateNullPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT b.booking_id, b.user_id, b.status, p.status").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d", "e", "f"}).
			AddRow(9, 2, "CONFIRMED", nil, "Std", "Inn"))

	s, err := NewBookingRepo(db).GetState(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, s.PaymentStatus)
	assert.Equal(t, uint64(2), s.UserID)
}

func TestBookingCancelAlreadyCancelled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CALL CancelBooking(?)")).
		WithArgs(uint64(5)).
		WillReturnError(signal("Booking is already cancelled"))

	err = NewBookingRepo(db).Cancel(context.Background(), 5)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestBookingListByUserUppercasesStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM Booking b WHERE b.user_id = ? AND b.status = ?")).
		WithArgs(uint64(4), "CANCELLED").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(11))
	mock.ExpectQuery("FROM Booking b").
		WithArgs(uint64(4), "CANCELLED", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "in", "out", "status", "created", "rt", "h", "rating", "city", "amount", "pstatus",
		}).AddRow(3, "2030-01-01", "2030-01-02", "CANCELLED", time.Now(), "Std", "Inn", 4.2, "Paris", 99.5, "REFUNDED"))

	out, total, err := NewBookingRepo(db).ListByUser(context.Background(), 4, "cancelled", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].TotalAmount)
	assert.Equal(t, 99.5, *out[0].TotalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
